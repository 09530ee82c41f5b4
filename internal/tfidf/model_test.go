package tfidf

import (
	"testing"

	"github.com/appgrid/appdex/internal/domain"
)

func snapshot() domain.Snapshot {
	return domain.Snapshot{
		{ID: 1, Name: "Facebook"},
		{ID: 2, Name: "Facebook Lite"},
		{ID: 3, Name: "Messenger"},
	}
}

func TestBuild_EmptySnapshot(t *testing.T) {
	if m := Build(nil); m != nil {
		t.Errorf("expected nil model for empty snapshot, got %v", m)
	}
	if m := Build(domain.Snapshot{}); m != nil {
		t.Errorf("expected nil model for empty snapshot, got %v", m)
	}
}

func TestBuild_RowsMatchSnapshotOrder(t *testing.T) {
	m := Build(snapshot())

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	for i, want := range []int64{1, 2, 3} {
		if m.RowToID[i] != want {
			t.Errorf("RowToID[%d] = %d, want %d", i, m.RowToID[i], want)
		}
	}
}

func TestRank_ScoreOrderAndThreshold(t *testing.T) {
	m := Build(snapshot())

	matches, err := m.Rank("facebook", 0.001)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	// "Facebook" is a perfect match; "Facebook Lite" is diluted by "lite".
	if matches[0].AppID != 1 || matches[1].AppID != 2 {
		t.Errorf("order = [%d %d], want [1 2]", matches[0].AppID, matches[1].AppID)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not descending: %v", matches)
	}
}

func TestRank_NoVocabularyOverlap(t *testing.T) {
	m := Build(snapshot())

	matches, err := m.Rank("zzz", 0.001)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestRank_TiesBreakByAscendingID(t *testing.T) {
	// Two distinct apps with the same name score identically.
	m := Build(domain.Snapshot{
		{ID: 9, Name: "Solitaire"},
		{ID: 4, Name: "Solitaire"},
		{ID: 7, Name: "Chess"},
	})

	matches, err := m.Rank("solitaire", 0.001)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	if matches[0].AppID != 4 || matches[1].AppID != 9 {
		t.Errorf("tie order = [%d %d], want [4 9]", matches[0].AppID, matches[1].AppID)
	}
}

func TestRank_ThresholdIsStrict(t *testing.T) {
	m := Build(snapshot())

	matches, err := m.Rank("facebook", 0)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	// Messenger shares no terms with the query: similarity is exactly 0
	// and must not pass a strict > 0 threshold.
	for _, match := range matches {
		if match.AppID == 3 {
			t.Errorf("zero-similarity document passed strict threshold: %v", matches)
		}
	}
}

func TestRank_RowIDMismatch(t *testing.T) {
	m := Build(snapshot())
	m.RowToID = m.RowToID[:2]

	if _, err := m.Rank("facebook", 0.001); err == nil {
		t.Error("expected error for row/id length mismatch")
	}
}
