// SPDX-License-Identifier: MIT

// Package search implements the approximate country name matching used by
// the dashboard search box.
package search

import "strings"

// Match scores how well pattern matches text:
//   - substring: 100
//   - in-order subsequence: 10 per matched rune plus 5 per preceding
//     consecutive match
//   - otherwise an edit distance of at most len(pattern)/2 scores
//     max(0, 50-10*distance)
//
// Comparison is case-insensitive.
func Match(text, pattern string) (int, bool) {
	if text == "" || pattern == "" {
		return 0, false
	}
	text = strings.ToLower(text)
	pattern = strings.ToLower(pattern)

	if strings.Contains(text, pattern) {
		return 100, true
	}

	tr, pr := []rune(text), []rune(pattern)
	pi, score, consecutive := 0, 0, 0
	for i := 0; i < len(tr) && pi < len(pr); i++ {
		if tr[i] == pr[pi] {
			score += 10 + consecutive*5
			consecutive++
			pi++
		} else {
			consecutive = 0
		}
	}
	if pi == len(pr) {
		return score, true
	}

	if d := Levenshtein(text, pattern); d <= len(pr)/2 {
		return max(0, 50-d*10), true
	}
	return 0, false
}

// Levenshtein returns the rune-wise edit distance of a and b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	lenA, lenB := len(ra), len(rb)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	dp := make([][]int, lenA+1)
	for i := range dp {
		dp[i] = make([]int, lenB+1)
		dp[i][0] = i
	}
	for j := 0; j <= lenB; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= lenA; i++ {
		for j := 1; j <= lenB; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			dp[i][j] = min(
				dp[i-1][j]+1,      // deletion
				dp[i][j-1]+1,      // insertion
				dp[i-1][j-1]+cost, // substitution
			)
		}
	}
	return dp[lenA][lenB]
}
