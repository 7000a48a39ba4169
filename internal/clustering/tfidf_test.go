package clustering

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lowercases", "Running Shoes", []string{"running", "shoes"}},
		{"drops stop words", "the best of the web", []string{"best", "web"}},
		{"drops single chars", "a b seo x", []string{"seo"}},
		{"splits punctuation", "seo-tools, 2024!", []string{"seo", "tools", "2024"}},
		{"keeps underscores", "meta_description", []string{"meta_description"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenize(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTerms_BigramsSkipStopWords(t *testing.T) {
	got := terms("shoes for running trails")
	want := []string{"shoes", "running", "trails", "shoes running", "running trails"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms() = %v, want %v", got, want)
	}
}

func TestFitTransform(t *testing.T) {
	vectors, vocab := fitTransform([]string{"running shoes", "running", "the"})

	if vocab.size() != 3 {
		t.Fatalf("vocab size = %d, want 3 (running, running shoes, shoes)", vocab.size())
	}

	for i, v := range vectors[:2] {
		if n := v.norm2(); math.Abs(n-1) > 1e-9 {
			t.Errorf("vector %d squared norm = %v, want 1", i, n)
		}
	}
	if len(vectors[2].indices) != 0 {
		t.Errorf("stop-word text produced terms: %v", vectors[2].indices)
	}

	// "running" appears in two of three documents, so it has the lower idf.
	if vocab.idf[vocab.index["running"]] >= vocab.idf[vocab.index["shoes"]] {
		t.Errorf("idf(running) = %v should be below idf(shoes) = %v",
			vocab.idf[vocab.index["running"]], vocab.idf[vocab.index["shoes"]])
	}
	wantIDF := math.Log(4.0/3.0) + 1
	if got := vocab.idf[vocab.index["running"]]; math.Abs(got-wantIDF) > 1e-9 {
		t.Errorf("idf(running) = %v, want %v", got, wantIDF)
	}
}

func TestCosine(t *testing.T) {
	v := vector{indices: []int{0, 2}, values: []float64{0.6, 0.8}}
	if got := cosine(v, []float64{0.6, 0, 0.8}); math.Abs(got-1) > 1e-9 {
		t.Errorf("cosine() = %v, want 1", got)
	}
	if got := cosine(v, []float64{0, 1, 0}); got != 0 {
		t.Errorf("cosine() = %v, want 0", got)
	}
	if got := cosine(vector{}, []float64{1, 0, 0}); got != 0 {
		t.Errorf("cosine() of empty vector = %v, want 0", got)
	}
}
