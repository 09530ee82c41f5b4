// Package tfidf implements the fitted vector model used for app-name
// ranking: a TF-IDF vectorizer, an L2-normalized sparse document matrix,
// and cosine scoring of queries against every row.
package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer holds a fitted TF-IDF vocabulary and per-term idf weights.
// Fields are exported for gob serialization; a Vectorizer is immutable
// after Fit and safe for unbounded concurrent readers.
type Vectorizer struct {
	Vocabulary map[string]int // term -> column index
	IDF        []float64      // per-column inverse document frequency
	DocCount   int
}

// SparseVector is a document or query vector holding only non-zero
// columns. Indices are strictly ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Tokenize splits text into lowercase terms. Terms are runs of letters
// and digits; single-character tokens are discarded. The same function
// is used at fit time and at query time — the two must never diverge or
// query vectors stop lining up with the fitted vocabulary.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, t := range fields {
		if len(t) >= 2 {
			terms = append(terms, t)
		}
	}
	return terms
}

// Fit builds the vocabulary and idf weights from the corpus documents.
// idf uses the smoothed convention ln((1+n)/(1+df)) + 1, which keeps
// weights finite even for terms present in every document.
func Fit(documents []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, t := range Tokenize(doc) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// Deterministic column order: sorted terms. Insertion order of the
	// df map must not leak into the artifact.
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		DocCount:   len(documents),
	}
	n := float64(len(documents))
	for i, t := range terms {
		v.Vocabulary[t] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Transform converts text into an L2-normalized TF-IDF vector over the
// fitted vocabulary. Terms outside the vocabulary are ignored. The zero
// vector is returned (empty indices) when nothing matches.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, t := range Tokenize(text) {
		if col, ok := v.Vocabulary[t]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	cols := make([]int, 0, len(counts))
	for col := range counts {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	vec := SparseVector{
		Indices: cols,
		Values:  make([]float64, len(cols)),
	}
	var norm float64
	for i, col := range cols {
		w := counts[col] * v.IDF[col]
		vec.Values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// Dot returns the dot product of two sparse vectors. Both sides are
// L2-normalized by Transform, so this is their cosine similarity.
func Dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		}
	}
	return sum
}
