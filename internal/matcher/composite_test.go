package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMatcher returns a fixed outcome regardless of input.
type stubMatcher struct {
	name string
	out  Outcome
}

func (s stubMatcher) Compare(_, _ string) Outcome { return s.out }
func (s stubMatcher) Name() string                { return s.name }

func TestCompositeRequiresAtLeastOneMatcher(t *testing.T) {
	_, err := NewComposite()
	require.Error(t, err)
}

func TestCompositeAnyPassUsesMaxPassingConfidence(t *testing.T) {
	m, err := NewComposite(
		stubMatcher{"a", Outcome{Match: false, Confidence: 0.99}},
		stubMatcher{"b", Outcome{Match: true, Confidence: 0.7}},
		stubMatcher{"c", Outcome{Match: true, Confidence: 0.85}},
	)
	require.NoError(t, err)

	out := m.Compare("x", "y")
	assert.True(t, out.Match)
	assert.InDelta(t, 0.85, out.Confidence, 1e-9)
}

func TestCompositeAnyPassNoWinner(t *testing.T) {
	m, err := NewComposite(
		stubMatcher{"a", Outcome{Match: false, Confidence: 0.5}},
		stubMatcher{"b", Outcome{Match: false, Confidence: 0.6}},
	)
	require.NoError(t, err)

	out := m.Compare("x", "y")
	assert.False(t, out.Match)
	assert.InDelta(t, 0.0, out.Confidence, 1e-9)
}

func TestCompositeRequireAllUsesMinConfidence(t *testing.T) {
	m, err := NewComposite(
		stubMatcher{"a", Outcome{Match: true, Confidence: 0.9}},
		stubMatcher{"b", Outcome{Match: true, Confidence: 0.6}},
	)
	require.NoError(t, err)
	m.RequireAll = true

	out := m.Compare("x", "y")
	assert.True(t, out.Match)
	assert.InDelta(t, 0.6, out.Confidence, 1e-9)

	m.Matchers = append(m.Matchers, stubMatcher{"c", Outcome{Match: false, Confidence: 1.0}})
	out = m.Compare("x", "y")
	assert.False(t, out.Match)
	assert.InDelta(t, 0.0, out.Confidence, 1e-9)
}

func TestDefaultMatcher(t *testing.T) {
	m, err := Default(0.8)
	require.NoError(t, err)

	// Identical text wins through the exact strategy at full confidence.
	out := m.Compare("Hello", "Hello")
	assert.True(t, out.Match)
	assert.InDelta(t, 1.0, out.Confidence, 1e-9)

	// Light OCR noise is accepted by the fuzzy strategy.
	out = m.Compare("Welcome back", "Welcorne back")
	assert.True(t, out.Match)
	assert.Greater(t, out.Confidence, 0.8)

	// Unrelated text is rejected by every strategy.
	out = m.Compare("Sign out", "Delete account")
	assert.False(t, out.Match)
}

func TestDefaultMatcherRejectsBadThreshold(t *testing.T) {
	_, err := Default(1.5)
	require.Error(t, err)
}

func TestForName(t *testing.T) {
	for _, name := range []string{"exact", "fuzzy", "normalized", "contains", "regex", "composite", ""} {
		m, err := ForName(name, 0.8)
		require.NoError(t, err, name)
		require.NotNil(t, m, name)
	}

	m, err := ForName("fuzzy", 0.8)
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", m.Name())

	_, err = ForName("soundex", 0.8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported comparison strategy")
}
