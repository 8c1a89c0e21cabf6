package fight

import "math"

// ScoreDeltas returns the score change of each fighter, Elo style: the
// expected result of fighter 0 is 1 / (1 + 10^((s1-s0)/400)) and each delta
// is k times the difference between actual and expected result. A ranked
// winner always gains at least 1. Friendly fights exchange nothing.
//
// Postcondition: deltas[0] == -deltas[1]; both are zero when friendly or k == 0.
func ScoreDeltas(winner int, friendly bool, scores [2]int, k int) [2]int {
	if friendly || k == 0 {
		return [2]int{}
	}
	expected0 := 1 / (1 + math.Pow(10, float64(scores[1]-scores[0])/400))
	var actual0 float64
	switch winner {
	case 0:
		actual0 = 1
	case 1:
		actual0 = 0
	default:
		actual0 = 0.5
	}
	d := int(math.Round(float64(k) * (actual0 - expected0)))
	switch {
	case winner == 0 && d < 1:
		d = 1
	case winner == 1 && d > -1:
		d = -1
	}
	return [2]int{d, -d}
}

// TallyActions counts how often each action ID appears in history.
func TallyActions(history []string) map[string]int {
	out := make(map[string]int, len(history))
	for _, id := range history {
		out[id]++
	}
	return out
}
