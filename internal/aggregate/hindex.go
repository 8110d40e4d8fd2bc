// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

// HIndex returns the largest h such that h of the publications have at
// least h citations each. Counts are bucketed, with everything at or above
// len(citations) sharing the top bucket, so the cost is linear.
func HIndex(citations []int) int {
	n := len(citations)
	buckets := make([]int, n+1)
	for _, c := range citations {
		switch {
		case c < 0:
			buckets[0]++
		case c >= n:
			buckets[n]++
		default:
			buckets[c]++
		}
	}

	total := 0
	for h := n; h > 0; h-- {
		total += buckets[h]
		if total >= h {
			return h
		}
	}
	return 0
}
