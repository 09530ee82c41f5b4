package tfidf

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Facebook Lite", []string{"facebook", "lite"}},
		{"WhatsApp Messenger", []string{"whatsapp", "messenger"}},
		{"U-Dictionary: Translate Now", []string{"dictionary", "translate", "now"}},
		{"A B C", nil},
		{"", nil},
		{"  2048  ", []string{"2048"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFit_VocabularyDeterministic(t *testing.T) {
	docs := []string{"Facebook", "Facebook Lite", "Messenger"}

	a := Fit(docs)
	b := Fit(docs)

	if !reflect.DeepEqual(a.Vocabulary, b.Vocabulary) {
		t.Errorf("vocabulary not deterministic: %v vs %v", a.Vocabulary, b.Vocabulary)
	}
	if !reflect.DeepEqual(a.IDF, b.IDF) {
		t.Errorf("idf not deterministic: %v vs %v", a.IDF, b.IDF)
	}
	// Columns are sorted terms
	if a.Vocabulary["facebook"] != 0 || a.Vocabulary["lite"] != 1 || a.Vocabulary["messenger"] != 2 {
		t.Errorf("unexpected column order: %v", a.Vocabulary)
	}
}

func TestFit_IDFWeighting(t *testing.T) {
	// "facebook" appears in 2 of 3 docs, "lite" in 1
	v := Fit([]string{"Facebook", "Facebook Lite", "Messenger"})

	idf := func(df int) float64 {
		return math.Log(4.0/float64(1+df)) + 1
	}
	if got, want := v.IDF[v.Vocabulary["facebook"]], idf(2); math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(facebook) = %f, want %f", got, want)
	}
	if got, want := v.IDF[v.Vocabulary["lite"]], idf(1); math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(lite) = %f, want %f", got, want)
	}
	// Rarer term weighs more
	if v.IDF[v.Vocabulary["lite"]] <= v.IDF[v.Vocabulary["facebook"]] {
		t.Error("expected rarer term to carry higher idf")
	}
}

func TestTransform_L2Normalized(t *testing.T) {
	v := Fit([]string{"Facebook", "Facebook Lite", "Messenger"})

	vec := v.Transform("facebook lite")
	var norm float64
	for _, val := range vec.Values {
		norm += val * val
	}
	if math.Abs(norm-1) > 1e-12 {
		t.Errorf("expected unit norm, got %f", math.Sqrt(norm))
	}
}

func TestTransform_UnknownTermsIgnored(t *testing.T) {
	v := Fit([]string{"Facebook", "Messenger"})

	vec := v.Transform("zzz qqq")
	if len(vec.Indices) != 0 {
		t.Errorf("expected zero vector for out-of-vocabulary query, got %v", vec)
	}
}

func TestDot_IdenticalVectors(t *testing.T) {
	v := Fit([]string{"Facebook", "Facebook Lite", "Messenger"})

	a := v.Transform("Facebook Lite")
	b := v.Transform("facebook lite")
	if got := Dot(a, b); math.Abs(got-1) > 1e-12 {
		t.Errorf("cosine of identical texts = %f, want 1", got)
	}
}

func TestDot_Disjoint(t *testing.T) {
	v := Fit([]string{"Facebook", "Messenger"})

	a := v.Transform("facebook")
	b := v.Transform("messenger")
	if got := Dot(a, b); got != 0 {
		t.Errorf("cosine of disjoint texts = %f, want 0", got)
	}
}
