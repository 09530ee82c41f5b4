package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/appgrid/appdex/internal/domain"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedApps(t *testing.T, repo *Repo, names ...string) {
	t.Helper()
	apps := make([]domain.App, len(names))
	for i, n := range names {
		apps[i] = domain.App{Name: n, Category: "SOCIAL"}
	}
	if _, err := repo.InsertApps(context.Background(), apps); err != nil {
		t.Fatalf("InsertApps: %v", err)
	}
}

func TestSnapshot_IDOrder(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "Messenger", "Facebook", "Facebook Lite")

	snap, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("got %d entries, want 3", len(snap))
	}
	for i := 1; i < len(snap); i++ {
		if snap[i].ID <= snap[i-1].ID {
			t.Errorf("snapshot not id-ordered: %v", snap)
		}
	}
	// Insertion order decides ids, not name order.
	if snap[0].Name != "Messenger" {
		t.Errorf("first entry = %q, want Messenger", snap[0].Name)
	}
}

func TestFindByExactName_CaseInsensitive(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "Facebook", "Facebook Lite")

	for _, q := range []string{"Facebook", "facebook", "FACEBOOK"} {
		a, err := repo.FindByExactName(context.Background(), q)
		if err != nil {
			t.Fatalf("FindByExactName(%q): %v", q, err)
		}
		if a.Name != "Facebook" {
			t.Errorf("FindByExactName(%q) = %q", q, a.Name)
		}
	}

	_, err := repo.FindByExactName(context.Background(), "Faceboo")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("partial name: err = %v, want ErrNotFound", err)
	}
}

func TestFindBySubstring_Alphabetical(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "WhatsApp Messenger", "Messenger", "Facebook", "Messenger Kids")

	apps, err := repo.FindBySubstring(context.Background(), "messenger")
	if err != nil {
		t.Fatalf("FindBySubstring: %v", err)
	}
	got := make([]string, len(apps))
	for i, a := range apps {
		got[i] = a.Name
	}
	want := []string{"Messenger", "Messenger Kids", "WhatsApp Messenger"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFindBySubstring_WildcardsAreLiteral(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "100% Quotes", "Percent Calculator")

	apps, err := repo.FindBySubstring(context.Background(), "100%")
	if err != nil {
		t.Fatalf("FindBySubstring: %v", err)
	}
	if len(apps) != 1 || apps[0].Name != "100% Quotes" {
		t.Errorf("LIKE wildcard leaked: %v", apps)
	}
}

func TestAppsByID_PreservesInputOrder(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "Facebook", "Facebook Lite", "Messenger")

	apps, err := repo.AppsByID(context.Background(), []int64{3, 1, 99, 2})
	if err != nil {
		t.Fatalf("AppsByID: %v", err)
	}
	got := make([]int64, len(apps))
	for i, a := range apps {
		got[i] = a.ID
	}
	// Missing id 99 is dropped; the rest keep the input order.
	if want := []int64{3, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAppsByID_Empty(t *testing.T) {
	repo := openTestRepo(t)

	apps, err := repo.AppsByID(context.Background(), nil)
	if err != nil {
		t.Fatalf("AppsByID: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("expected no apps, got %v", apps)
	}
}

func TestInsertApps_SkipsDuplicateNames(t *testing.T) {
	repo := openTestRepo(t)

	n, err := repo.InsertApps(context.Background(), []domain.App{
		{Name: "Facebook"},
		{Name: "Facebook"},
		{Name: "Messenger"},
	})
	if err != nil {
		t.Fatalf("InsertApps: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	total, err := repo.CountApps(context.Background())
	if err != nil {
		t.Fatalf("CountApps: %v", err)
	}
	if total != 2 {
		t.Errorf("CountApps = %d, want 2", total)
	}
}

func TestReviews_Lifecycle(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "Facebook")
	ctx := context.Background()

	times := []int64{100, 200, 300}
	i := 0
	orig := nowUnix
	nowUnix = func() int64 { v := times[i%len(times)]; i++; return v }
	defer func() { nowUnix = orig }()

	var ids []int64
	for _, body := range []string{"old", "middle", "new"} {
		id, err := repo.InsertReview(ctx, domain.Review{AppID: 1, Author: "sam", Body: body})
		if err != nil {
			t.Fatalf("InsertReview: %v", err)
		}
		ids = append(ids, id)
	}

	// Public view hides everything until approval.
	public, err := repo.ReviewsForApp(ctx, 1, false)
	if err != nil {
		t.Fatalf("ReviewsForApp: %v", err)
	}
	if len(public) != 0 {
		t.Errorf("unapproved reviews visible to public: %v", public)
	}

	pending, err := repo.PendingReviews(ctx, 10, 0)
	if err != nil {
		t.Fatalf("PendingReviews: %v", err)
	}
	if len(pending) != 3 || pending[0].Body != "new" {
		t.Errorf("pending newest-first broken: %v", pending)
	}

	if err := repo.ApproveReview(ctx, ids[0]); err != nil {
		t.Fatalf("ApproveReview: %v", err)
	}
	public, err = repo.ReviewsForApp(ctx, 1, false)
	if err != nil {
		t.Fatalf("ReviewsForApp: %v", err)
	}
	if len(public) != 1 || public[0].Body != "old" {
		t.Errorf("approved review missing from public view: %v", public)
	}

	if err := repo.DeleteReview(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	n, err := repo.CountPendingReviews(ctx)
	if err != nil {
		t.Fatalf("CountPendingReviews: %v", err)
	}
	if n != 1 {
		t.Errorf("pending count = %d, want 1", n)
	}

	if err := repo.ApproveReview(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("approve missing: err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteReview(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}
}

func TestAppIDsByName(t *testing.T) {
	repo := openTestRepo(t)
	seedApps(t, repo, "Facebook", "Messenger")

	m, err := repo.AppIDsByName(context.Background())
	if err != nil {
		t.Fatalf("AppIDsByName: %v", err)
	}
	if len(m) != 2 || m["Facebook"] == 0 || m["Messenger"] == 0 {
		t.Errorf("unexpected map: %v", m)
	}
}
