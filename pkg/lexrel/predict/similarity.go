package predict

import (
	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/lexrel/pkg/lexrel/cooc"
)

// Similarity computes the cosine similarity between a seed profile and a
// candidate profile, both scored word lists. The computation is
// asymmetric: only the first NumFeatures entries of the seed profile
// span the vector space, candidate dimensions outside that support are
// ignored. Returns a value in [0,1]; zero when either restricted vector
// has zero norm.
func Similarity(seed, candidate []cooc.WordScore) float64 {
	if len(seed) > NumFeatures {
		seed = seed[:NumFeatures]
	}
	candScores := make(map[string]float64, len(candidate))
	for _, ws := range candidate {
		candScores[ws.Word] = ws.Score
	}

	seedVec := make([]float64, len(seed))
	candVec := make([]float64, len(seed))
	for i, ws := range seed {
		seedVec[i] = ws.Score
		candVec[i] = candScores[ws.Word]
	}

	seedNorm := floats.Norm(seedVec, 2)
	candNorm := floats.Norm(candVec, 2)
	if seedNorm == 0 || candNorm == 0 {
		return 0
	}
	score := floats.Dot(seedVec, candVec) / (seedNorm * candNorm)
	if score >= 0.99999 {
		// Absorb floating-point drift on near-identical profiles.
		return 1.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
