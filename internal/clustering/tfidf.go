package clustering

import (
	"math"
	"sort"
)

// vector is a sparse, L2-normalized term vector with indices in ascending order.
type vector struct {
	indices []int
	values  []float64
}

func (v vector) norm2() float64 {
	var sum float64
	for _, x := range v.values {
		sum += x * x
	}
	return sum
}

func (v vector) dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.indices {
		sum += v.values[i] * dense[idx]
	}
	return sum
}

// vocabulary maps terms to column indices and holds their idf weights.
type vocabulary struct {
	index map[string]int
	idf   []float64
}

func (v *vocabulary) size() int {
	return len(v.idf)
}

// fitTransform builds a tf-idf vocabulary over texts and returns one vector per text.
//
// idf uses smoothing: ln((1+n)/(1+df)) + 1. Term frequencies are raw counts.
func fitTransform(texts []string) ([]vector, *vocabulary) {
	docTerms := make([][]string, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		docTerms[i] = terms(text)
		seen := make(map[string]struct{}, len(docTerms[i]))
		for _, term := range docTerms[i] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	// Sorted vocabulary keeps column order independent of map iteration.
	names := make([]string, 0, len(df))
	for term := range df {
		names = append(names, term)
	}
	sort.Strings(names)

	vocab := &vocabulary{index: make(map[string]int, len(names)), idf: make([]float64, len(names))}
	n := float64(len(texts))
	for i, term := range names {
		vocab.index[term] = i
		vocab.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]vector, len(texts))
	for i, dt := range docTerms {
		counts := make(map[int]float64, len(dt))
		for _, term := range dt {
			counts[vocab.index[term]]++
		}

		v := vector{indices: make([]int, 0, len(counts)), values: make([]float64, 0, len(counts))}
		for idx := range counts {
			v.indices = append(v.indices, idx)
		}
		sort.Ints(v.indices)

		var norm float64
		for _, idx := range v.indices {
			w := counts[idx] * vocab.idf[idx]
			v.values = append(v.values, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range v.values {
				v.values[j] /= norm
			}
		}
		vectors[i] = v
	}

	return vectors, vocab
}
