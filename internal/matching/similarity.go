// Package matching implements the pure scoring pipeline of spec.md
// §4.B-§4.F: similarity, date proximity, ambiguity penalty, confidence
// combination, and the matcher that orchestrates them. None of it
// performs I/O; given identical inputs it is reproducible bit-for-bit
// (§8 property 1).
package matching

import (
	"math"
	"sort"
	"strings"
)

// Similarity returns the Jaro-Winkler similarity of a and b scaled to
// [0, 100], taking the maximum of the direct score and the score on
// token-sorted variants so that whole-word reordering does not change
// the result (§4.B). Identical strings score 100; either empty scores 0.
func Similarity(a, b string) float64 {
	direct := jaroWinkler(a, b)
	sorted := jaroWinkler(tokenSort(a), tokenSort(b))
	return math.Max(direct, sorted)
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// jaroWinkler computes the classic Jaro-Winkler distance on raw
// strings, scaled to 0-100. Inputs are expected to already be
// normalized (uppercase, token-joined) by the caller.
func jaroWinkler(s1, s2 string) float64 {
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}
	if s1 == s2 {
		return 100.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	len1 := len(r1)
	len2 := len(r2)

	matchWindow := int(math.Max(float64(len1), float64(len2))/2.0) - 1
	if matchWindow < 1 {
		matchWindow = 1
	}

	s1Matches := make([]bool, len1)
	s2Matches := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := int(math.Max(0, float64(i-matchWindow)))
		end := int(math.Min(float64(len2), float64(i+matchWindow+1)))

		for j := start; j < end; j++ {
			if s2Matches[j] || r1[i] != r2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !s1Matches[i] {
			continue
		}
		for !s2Matches[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	jaro := (float64(matches)/float64(len1) +
		float64(matches)/float64(len2) +
		float64(matches-transpositions/2)/float64(matches)) / 3.0

	prefixLen := 0
	maxPrefix := int(math.Min(4, math.Min(float64(len1), float64(len2))))
	for i := 0; i < maxPrefix; i++ {
		if r1[i] == r2[i] {
			prefixLen++
		} else {
			break
		}
	}

	winkler := jaro + (0.1 * float64(prefixLen) * (1.0 - jaro))

	return round2(winkler * 100.0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
