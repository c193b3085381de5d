package flow

// DetectPlateau reports whether refinement has stopped helping: the two
// most recent score improvements both fall below threshold. A single small
// improvement can be noise; two consecutive small improvements indicate
// genuine diminishing returns.
//
// With fewer than three scores the prior improvement is treated as large,
// so a plateau is never flagged on the first two evaluations.
func DetectPlateau(scores []float64, threshold float64) bool {
	if len(scores) < 3 {
		return false
	}
	n := len(scores)
	recent := scores[n-1] - scores[n-2]
	prior := scores[n-2] - scores[n-3]
	return recent < threshold && prior < threshold
}
