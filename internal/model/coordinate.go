package model

import (
	"fmt"
	"image"
)

// Coordinate is an axis-aligned bounding box in image pixel space.
// Valid boxes satisfy Left < Right and Top < Bottom with all values
// non-negative.
type Coordinate struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal extent of the box.
func (c Coordinate) Width() int {
	return c.Right - c.Left
}

// Height returns the vertical extent of the box.
func (c Coordinate) Height() int {
	return c.Bottom - c.Top
}

// Area returns the number of pixels covered by the box.
func (c Coordinate) Area() int {
	return c.Width() * c.Height()
}

// Rect converts the box to an image.Rectangle for cropping.
func (c Coordinate) Rect() image.Rectangle {
	return image.Rect(c.Left, c.Top, c.Right, c.Bottom)
}

// Validate checks the box invariants.
func (c Coordinate) Validate() error {
	if c.Left < 0 || c.Top < 0 || c.Right < 0 || c.Bottom < 0 {
		return fmt.Errorf("negative coordinate values: %v", c)
	}
	if c.Left >= c.Right {
		return fmt.Errorf("left %d must be less than right %d", c.Left, c.Right)
	}
	if c.Top >= c.Bottom {
		return fmt.Errorf("top %d must be less than bottom %d", c.Top, c.Bottom)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", c.Left, c.Top, c.Right, c.Bottom)
}

// CoordinateKey is the composite key correlating a protocol step with its
// annotated region: (step, screen, string) must match all three.
type CoordinateKey struct {
	StepID   string `json:"step_id"`
	ScreenID string `json:"screen_id"`
	StringID string `json:"string_id"`
}

func (k CoordinateKey) String() string {
	return fmt.Sprintf("(%s, %s, %s)", k.StepID, k.ScreenID, k.StringID)
}

// CoordinateIndex maps composite keys to region boxes. Duplicate keys
// during load resolve last-write-wins.
type CoordinateIndex map[CoordinateKey]Coordinate

// Lookup returns the box annotated for the given key.
func (idx CoordinateIndex) Lookup(key CoordinateKey) (Coordinate, bool) {
	c, ok := idx[key]
	return c, ok
}
