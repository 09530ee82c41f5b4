package review

import (
	"context"
	"errors"
	"testing"

	"github.com/appgrid/appdex/internal/domain"
)

type mockRepo struct {
	apps     map[int64]domain.App
	inserted []domain.Review
	pending  []domain.Review
	approved []int64
	deleted  []int64

	approveErr error
	deleteErr  error
}

func newMockRepo(apps ...domain.App) *mockRepo {
	m := &mockRepo{apps: make(map[int64]domain.App)}
	for _, a := range apps {
		m.apps[a.ID] = a
	}
	return m
}

func (m *mockRepo) AppByID(_ context.Context, id int64) (domain.App, error) {
	a, ok := m.apps[id]
	if !ok {
		return domain.App{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) InsertReview(_ context.Context, rv domain.Review) (int64, error) {
	m.inserted = append(m.inserted, rv)
	return int64(len(m.inserted)), nil
}

func (m *mockRepo) ReviewsForApp(_ context.Context, appID int64, includePending bool) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range m.inserted {
		if rv.AppID != appID {
			continue
		}
		if !rv.Approved && !includePending {
			continue
		}
		out = append(out, rv)
	}
	return out, nil
}

func (m *mockRepo) PendingReviews(_ context.Context, limit, offset int) ([]domain.Review, error) {
	if offset > len(m.pending) {
		offset = len(m.pending)
	}
	end := offset + limit
	if end > len(m.pending) {
		end = len(m.pending)
	}
	return m.pending[offset:end], nil
}

func (m *mockRepo) CountPendingReviews(context.Context) (int, error) {
	return len(m.pending), nil
}

func (m *mockRepo) ApproveReview(_ context.Context, id int64) error {
	if m.approveErr != nil {
		return m.approveErr
	}
	m.approved = append(m.approved, id)
	return nil
}

func (m *mockRepo) DeleteReview(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestSubmit_ForcesPending(t *testing.T) {
	repo := newMockRepo(domain.App{ID: 1, Name: "Facebook"})
	svc := New(repo)

	id, err := svc.Submit(context.Background(), domain.Review{
		AppID:    1,
		Author:   "sam",
		Body:     "Great app",
		Approved: true, // clients cannot self-approve
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if repo.inserted[0].Approved {
		t.Error("submitted review must be stored as pending")
	}
}

func TestSubmit_UnknownApp(t *testing.T) {
	svc := New(newMockRepo())

	_, err := svc.Submit(context.Background(), domain.Review{AppID: 42, Body: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestForApp_HidesPendingFromPublic(t *testing.T) {
	repo := newMockRepo(domain.App{ID: 1, Name: "Facebook"})
	svc := New(repo)

	if _, err := svc.Submit(context.Background(), domain.Review{AppID: 1, Body: "pending one"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	repo.inserted = append(repo.inserted, domain.Review{AppID: 1, Body: "approved one", Approved: true})

	public, err := svc.ForApp(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("ForApp: %v", err)
	}
	if len(public) != 1 || public[0].Body != "approved one" {
		t.Errorf("public view = %v, want only the approved review", public)
	}

	moderator, err := svc.ForApp(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("ForApp: %v", err)
	}
	if len(moderator) != 2 {
		t.Errorf("moderator view has %d reviews, want 2", len(moderator))
	}
}

func TestPending_Pagination(t *testing.T) {
	repo := newMockRepo()
	for i := 0; i < 5; i++ {
		repo.pending = append(repo.pending, domain.Review{ID: int64(i + 1), AppID: 1})
	}
	svc := New(repo)

	reviews, total, err := svc.Pending(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(reviews) != 2 || reviews[0].ID != 3 || reviews[1].ID != 4 {
		t.Errorf("page 2 = %v, want ids [3 4]", reviews)
	}
}

func TestModerate_Approve(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo)

	if err := svc.Moderate(context.Background(), 7, ActionApprove); err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if len(repo.approved) != 1 || repo.approved[0] != 7 {
		t.Errorf("approved = %v, want [7]", repo.approved)
	}
	if len(repo.deleted) != 0 {
		t.Errorf("nothing should be deleted on approve, got %v", repo.deleted)
	}
}

func TestModerate_RejectDeletes(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo)

	if err := svc.Moderate(context.Background(), 7, ActionReject); err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 7 {
		t.Errorf("deleted = %v, want [7]", repo.deleted)
	}
}

func TestModerate_UnknownAction(t *testing.T) {
	svc := New(newMockRepo())

	err := svc.Moderate(context.Background(), 7, "promote")
	if !errors.Is(err, domain.ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}

func TestModerate_NotFoundSurfaces(t *testing.T) {
	repo := newMockRepo()
	repo.approveErr = domain.ErrNotFound
	svc := New(repo)

	err := svc.Moderate(context.Background(), 99, ActionApprove)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
