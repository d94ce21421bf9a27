package matcher

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Exact matches when expected and actual are identical after trimming,
// ignoring case unless CaseSensitive is set.
type Exact struct {
	CaseSensitive bool
}

// NewExact creates a case-insensitive exact matcher.
func NewExact() *Exact {
	return &Exact{}
}

func (m *Exact) Compare(expected, actual string) Outcome {
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)
	if !m.CaseSensitive {
		expected = strings.ToLower(expected)
		actual = strings.ToLower(actual)
	}
	if expected == actual {
		return Outcome{Match: true, Confidence: 1.0}
	}
	return Outcome{}
}

func (m *Exact) Name() string { return "exact" }

// Fuzzy matches on edit similarity against a configurable threshold.
type Fuzzy struct {
	Threshold     float64
	CaseSensitive bool
}

// NewFuzzy creates a fuzzy matcher. The threshold must lie in [0,1].
func NewFuzzy(threshold float64) (*Fuzzy, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return nil, fmt.Errorf("fuzzy threshold %v outside [0,1]", threshold)
	}
	return &Fuzzy{Threshold: threshold}, nil
}

func (m *Fuzzy) Compare(expected, actual string) Outcome {
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)
	if !m.CaseSensitive {
		expected = strings.ToLower(expected)
		actual = strings.ToLower(actual)
	}
	sim := Similarity(expected, actual)
	return Outcome{Match: sim >= m.Threshold, Confidence: sim}
}

func (m *Fuzzy) Name() string { return "fuzzy" }

// Normalized matches on edit similarity after aggressive cleanup: NFC
// normalization, whitespace collapsing, and punctuation removal. OCR
// output frequently drops or mangles punctuation; normalization keeps
// such noise from failing otherwise correct text.
type Normalized struct {
	Threshold            float64
	NormalizeWhitespace  bool
	NormalizePunctuation bool
	CaseSensitive        bool
}

// NewNormalized creates a normalized matcher with whitespace and
// punctuation normalization enabled. The threshold must lie in [0,1].
func NewNormalized(threshold float64) (*Normalized, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return nil, fmt.Errorf("normalized threshold %v outside [0,1]", threshold)
	}
	return &Normalized{
		Threshold:            threshold,
		NormalizeWhitespace:  true,
		NormalizePunctuation: true,
	}, nil
}

func (m *Normalized) Compare(expected, actual string) Outcome {
	sim := Similarity(m.normalize(expected), m.normalize(actual))
	return Outcome{Match: sim >= m.Threshold, Confidence: sim}
}

func (m *Normalized) Name() string { return "normalized" }

var whitespaceRe = regexp.MustCompile(`\s+`)

func (m *Normalized) normalize(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if !m.CaseSensitive {
		s = strings.ToLower(s)
	}
	if m.NormalizeWhitespace {
		s = whitespaceRe.ReplaceAllString(s, " ")
	}
	if m.NormalizePunctuation {
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
				b.WriteRune(r)
			}
		}
		s = b.String()
	}
	return strings.TrimSpace(s)
}

// Contains matches when the expected text appears anywhere inside the
// extracted text. Confidence is the length ratio of expected to actual.
type Contains struct {
	CaseSensitive bool
}

// NewContains creates a case-insensitive containment matcher.
func NewContains() *Contains {
	return &Contains{}
}

func (m *Contains) Compare(expected, actual string) Outcome {
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)
	if !m.CaseSensitive {
		expected = strings.ToLower(expected)
		actual = strings.ToLower(actual)
	}
	if !strings.Contains(actual, expected) {
		return Outcome{}
	}
	confidence := 0.0
	if expected != "" && actual != "" {
		confidence = float64(len([]rune(expected))) / float64(len([]rune(actual)))
		if confidence > 1.0 {
			confidence = 1.0
		}
	}
	return Outcome{Match: true, Confidence: confidence}
}

func (m *Contains) Name() string { return "contains" }

// Regex treats the expected string as a regular expression searched
// within the extracted text. Invalid patterns fall back to exact
// matching with a warning.
type Regex struct {
	CaseSensitive bool
}

// NewRegex creates a case-insensitive regex matcher.
func NewRegex() *Regex {
	return &Regex{}
}

func (m *Regex) Compare(expected, actual string) Outcome {
	pattern := strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)
	if !m.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		slog.Warn("Invalid regex pattern, falling back to exact matching",
			"pattern", expected, "error", err)
		exact := Exact{CaseSensitive: m.CaseSensitive}
		return exact.Compare(expected, actual)
	}

	matched := re.FindString(actual)
	if matched == "" && !re.MatchString(actual) {
		return Outcome{}
	}
	confidence := 0.0
	if actual != "" {
		confidence = float64(len([]rune(matched))) / float64(len([]rune(actual)))
		if confidence > 1.0 {
			confidence = 1.0
		}
	}
	return Outcome{Match: true, Confidence: confidence}
}

func (m *Regex) Name() string { return "regex" }
