package matching

import "math"

// Similarity is the cosine similarity of the term-frequency vectors of two
// token sequences over their joint vocabulary. It is symmetric, lies in
// [0, 1], and is 0 when either side has no tokens.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	tfA := termFrequencies(a)
	tfB := termFrequencies(b)

	var dot, normA, normB float64
	for term, ca := range tfA {
		normA += ca * ca
		if cb, ok := tfB[term]; ok {
			dot += ca * cb
		}
	}
	for _, cb := range tfB {
		normB += cb * cb
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	// Counts are integral, so every sum above is exact and the result does not
	// depend on map iteration order.
	sim := dot / math.Sqrt(normA*normB)
	return clampUnit(sim)
}

func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
