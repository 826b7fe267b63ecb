package reembed

import "math"

// NormalizeVector scales a vector to unit length so stored embeddings
// stay comparable under dot-product similarity. Returns a new slice; a
// zero vector comes back as a zero vector of the same length.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	out := make([]float32, len(v))
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return out
	}

	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
