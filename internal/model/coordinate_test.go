package model

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateDerivedValues(t *testing.T) {
	c := Coordinate{Left: 10, Top: 20, Right: 110, Bottom: 50}
	assert.Equal(t, 100, c.Width())
	assert.Equal(t, 30, c.Height())
	assert.Equal(t, 3000, c.Area())
	assert.Equal(t, image.Rect(10, 20, 110, 50), c.Rect())
}

func TestCoordinateValidate(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinate
		ok   bool
	}{
		{"valid", Coordinate{0, 0, 10, 10}, true},
		{"negative left", Coordinate{-1, 0, 10, 10}, false},
		{"left equals right", Coordinate{10, 0, 10, 10}, false},
		{"left beyond right", Coordinate{20, 0, 10, 10}, false},
		{"top equals bottom", Coordinate{0, 10, 10, 10}, false},
		{"top beyond bottom", Coordinate{0, 20, 10, 10}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestCoordinateKeyString(t *testing.T) {
	k := CoordinateKey{StepID: "S1", ScreenID: "ScreenA", StringID: "greeting"}
	assert.Equal(t, "(S1, ScreenA, greeting)", k.String())
}

func TestCoordinateIndexLookup(t *testing.T) {
	idx := CoordinateIndex{
		{StepID: "S1", ScreenID: "A", StringID: "x"}: {Left: 1, Top: 2, Right: 3, Bottom: 4},
	}

	c, ok := idx.Lookup(CoordinateKey{StepID: "S1", ScreenID: "A", StringID: "x"})
	require.True(t, ok)
	assert.Equal(t, Coordinate{Left: 1, Top: 2, Right: 3, Bottom: 4}, c)

	_, ok = idx.Lookup(CoordinateKey{StepID: "S2", ScreenID: "A", StringID: "x"})
	assert.False(t, ok)
}
