// Package model defines the shared data contracts for screenshot string
// validation: test protocol steps, region coordinates, expected-string
// tables, and per-step validation results.
package model

import (
	"fmt"
	"strings"
)

// TestStep identifies one unit of validation: which screen to inspect and
// which localized string is expected there. Instances are created at
// dataset-load time and treated as read-only afterwards.
type TestStep struct {
	StepID           string `json:"step_id"`
	ScreenID         string `json:"screen_id"`
	ExpectedStringID string `json:"expected_string_id"`
}

// Key returns the composite lookup key used by the coordinate index.
func (s TestStep) Key() CoordinateKey {
	return CoordinateKey{
		StepID:   s.StepID,
		ScreenID: s.ScreenID,
		StringID: s.ExpectedStringID,
	}
}

// Validate reports whether all identifiers are non-empty after trimming.
func (s TestStep) Validate() error {
	if strings.TrimSpace(s.StepID) == "" {
		return fmt.Errorf("test step missing step id")
	}
	if strings.TrimSpace(s.ScreenID) == "" {
		return fmt.Errorf("test step %s missing screen id", s.StepID)
	}
	if strings.TrimSpace(s.ExpectedStringID) == "" {
		return fmt.Errorf("test step %s missing expected string id", s.StepID)
	}
	return nil
}

func (s TestStep) String() string {
	return fmt.Sprintf("%s/%s/%s", s.StepID, s.ScreenID, s.ExpectedStringID)
}

// ExpectedStrings maps string identifiers to localized expected text for
// one language partition.
type ExpectedStrings map[string]string

// Lookup returns the expected text for id. An entry whose value is empty
// is reported as absent, the same as a missing key.
func (m ExpectedStrings) Lookup(id string) (string, bool) {
	text, ok := m[id]
	if !ok || text == "" {
		return "", false
	}
	return text, true
}
