package dedup

// Ratio returns a normalized similarity measure in [0, 1] between two
// strings: 2*LCS / (len(a) + len(b)), computed over runes, where LCS is the
// length of the longest common subsequence. Identical strings score 1.0,
// strings with no characters in common score 0.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Two-row LCS dynamic program.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return 2 * float64(prev[len(rb)]) / float64(total)
}
