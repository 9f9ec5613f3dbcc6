package services

import "math"

// normalise returns a unit-length copy of v. A zero vector stays zero, so
// its cosine similarity to anything is 0.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// cosineMatrix returns the symmetric pairwise cosine similarity of vectors.
func cosineMatrix(vectors [][]float32) [][]float64 {
	unit := make([][]float32, len(vectors))
	for i, v := range vectors {
		unit[i] = normalise(v)
	}

	n := len(unit)
	sims := make([][]float64, n)
	for i := range sims {
		sims[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		sims[i][i] = clampSimilarity(dot(unit[i], unit[i]))
		for j := i + 1; j < n; j++ {
			s := clampSimilarity(dot(unit[i], unit[j]))
			sims[i][j] = s
			sims[j][i] = s
		}
	}
	return sims
}

// clampSimilarity absorbs float rounding that pushes a cosine past ±1.
func clampSimilarity(s float64) float64 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return s
	}
}
