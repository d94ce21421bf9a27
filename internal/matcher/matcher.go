// Package matcher implements the string comparison strategies used to
// judge extracted screen text against expected localized strings. Each
// strategy reports a boolean match and a confidence in [0,1]; strategies
// compose through the any-pass/all-pass Composite.
package matcher

// Outcome is the verdict of one comparison.
type Outcome struct {
	Match      bool
	Confidence float64
}

// Matcher compares an expected string against text extracted from a
// screenshot region.
type Matcher interface {
	Compare(expected, actual string) Outcome
	Name() string
}

// Levenshtein returns the edit distance between a and b in runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = minInt(del, minInt(ins, sub))
		}
		copy(prev, cur)
	}
	return prev[len(rb)]
}

// Similarity returns the normalized edit similarity of a and b: 1 minus
// the edit distance divided by the longer rune length. Two empty strings
// are fully similar.
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
