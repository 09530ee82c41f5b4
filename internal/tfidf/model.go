package tfidf

import (
	"fmt"
	"sort"

	"github.com/appgrid/appdex/internal/domain"
)

// Model is the complete fitted artifact: the vectorizer, one normalized
// row per corpus document, and the row-to-id mapping frozen at build
// time. A Model is immutable; rebuilds produce a brand-new value.
type Model struct {
	Vectorizer *Vectorizer
	Rows       []SparseVector
	RowToID    []int64
}

// Build fits a model from a corpus snapshot. A nil model is returned for
// an empty snapshot: dependents treat that as "TF-IDF unavailable" and
// fall back to substring search.
func Build(snapshot domain.Snapshot) *Model {
	if len(snapshot) == 0 {
		return nil
	}
	names := make([]string, len(snapshot))
	for i, e := range snapshot {
		names[i] = e.Name
	}
	vec := Fit(names)

	m := &Model{
		Vectorizer: vec,
		Rows:       make([]SparseVector, len(snapshot)),
		RowToID:    make([]int64, len(snapshot)),
	}
	for i, e := range snapshot {
		m.Rows[i] = vec.Transform(e.Name)
		m.RowToID[i] = e.ID
	}
	return m
}

// Rank scores the query against every document row and returns matches
// with similarity strictly above threshold, ordered by similarity
// descending with ties broken by ascending app id.
func (m *Model) Rank(query string, threshold float64) ([]domain.ScoredMatch, error) {
	if len(m.Rows) != len(m.RowToID) {
		return nil, fmt.Errorf("model row/id length mismatch: %d rows, %d ids", len(m.Rows), len(m.RowToID))
	}

	queryVec := m.Vectorizer.Transform(query)
	if len(queryVec.Indices) == 0 {
		return nil, nil
	}

	var matches []domain.ScoredMatch
	for i, row := range m.Rows {
		if sim := Dot(queryVec, row); sim > threshold {
			matches = append(matches, domain.ScoredMatch{AppID: m.RowToID[i], Score: sim})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].AppID < matches[j].AppID
	})
	return matches, nil
}

// Len returns the number of document rows.
func (m *Model) Len() int {
	return len(m.Rows)
}
