package matcher

import (
	"fmt"
)

// Composite applies several strategies to one comparison. In any-pass
// mode (the default) the comparison matches when at least one child
// matches, and the confidence is the maximum among matching children. In
// require-all mode every child must match, and the confidence is the
// minimum across all children.
type Composite struct {
	Matchers   []Matcher
	RequireAll bool
}

// NewComposite creates an any-pass composite over the given matchers.
func NewComposite(matchers ...Matcher) (*Composite, error) {
	if len(matchers) == 0 {
		return nil, fmt.Errorf("composite matcher needs at least one strategy")
	}
	return &Composite{Matchers: matchers}, nil
}

func (m *Composite) Compare(expected, actual string) Outcome {
	outcomes := make([]Outcome, len(m.Matchers))
	for i, child := range m.Matchers {
		outcomes[i] = child.Compare(expected, actual)
	}

	if m.RequireAll {
		confidence := 1.0
		for _, o := range outcomes {
			if !o.Match {
				return Outcome{}
			}
			if o.Confidence < confidence {
				confidence = o.Confidence
			}
		}
		return Outcome{Match: true, Confidence: confidence}
	}

	best := Outcome{}
	for _, o := range outcomes {
		if o.Match && (!best.Match || o.Confidence > best.Confidence) {
			best = Outcome{Match: true, Confidence: o.Confidence}
		}
	}
	return best
}

func (m *Composite) Name() string { return "composite" }

// normalizedThreshold is the fixed acceptance bar of the normalized
// strategy inside the default composite.
const normalizedThreshold = 0.9

// Default builds the standard comparison stack: exact, normalized, and
// fuzzy matching composed any-pass. fuzzyThreshold must lie in [0,1].
func Default(fuzzyThreshold float64) (Matcher, error) {
	normalized, err := NewNormalized(normalizedThreshold)
	if err != nil {
		return nil, err
	}
	fuzzy, err := NewFuzzy(fuzzyThreshold)
	if err != nil {
		return nil, err
	}
	return NewComposite(NewExact(), normalized, fuzzy)
}

// ForName builds a single strategy by its configuration name. Threshold
// applies to the fuzzy and normalized strategies; the remaining
// strategies ignore it.
func ForName(name string, threshold float64) (Matcher, error) {
	switch name {
	case "exact":
		return NewExact(), nil
	case "fuzzy":
		return NewFuzzy(threshold)
	case "normalized":
		return NewNormalized(threshold)
	case "contains":
		return NewContains(), nil
	case "regex":
		return NewRegex(), nil
	case "composite", "default", "":
		return Default(threshold)
	default:
		return nil, fmt.Errorf("unsupported comparison strategy: %s", name)
	}
}
