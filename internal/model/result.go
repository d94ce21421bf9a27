package model

// MatchResult classifies the outcome of validating one test step. The set
// is closed: every result carries exactly one of the five values.
type MatchResult string

const (
	// MatchPass indicates the extracted text matched the expected text.
	MatchPass MatchResult = "PASS"
	// MatchFail indicates extraction succeeded but no comparison strategy
	// accepted the text.
	MatchFail MatchResult = "FAIL"
	// MatchError indicates the step could not be evaluated (missing
	// expected string, extraction failure, or unexpected error).
	MatchError MatchResult = "ERROR"
	// MatchMissingImage indicates the screenshot file was absent.
	MatchMissingImage MatchResult = "MISSING_IMAGE"
	// MatchMissingCoordinates indicates no region annotation existed for
	// the step's composite key.
	MatchMissingCoordinates MatchResult = "MISSING_COORDINATES"
)

// Valid reports whether r is one of the five defined classifications.
func (r MatchResult) Valid() bool {
	switch r {
	case MatchPass, MatchFail, MatchError, MatchMissingImage, MatchMissingCoordinates:
		return true
	}
	return false
}

// ValidationResult is the outcome of validating one test step. Confidence
// and DurationMS are nil when the step never reached the corresponding
// measurement. Results are created once by the engine and not mutated
// afterwards.
type ValidationResult struct {
	Step          TestStep    `json:"step"`
	ExpectedText  string      `json:"expected_text"`
	ExtractedText string      `json:"extracted_text"`
	Result        MatchResult `json:"match_result"`
	Confidence    *float64    `json:"confidence_score,omitempty"`
	DurationMS    *float64    `json:"processing_time_ms,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`
}

// Passed reports whether the step validated successfully.
func (r ValidationResult) Passed() bool {
	return r.Result == MatchPass
}

// ValidationSummary aggregates a list of validation results. Rates and
// means are zero when no results contribute to them.
type ValidationSummary struct {
	Total              int     `json:"total_steps"`
	Passed             int     `json:"passed"`
	Failed             int     `json:"failed"`
	Errors             int     `json:"errors"`
	MissingImages      int     `json:"missing_images"`
	MissingCoordinates int     `json:"missing_coordinates"`
	PassRate           float64 `json:"pass_rate"`
	AvgConfidence      float64 `json:"average_confidence"`
	AvgDurationMS      float64 `json:"average_processing_time_ms"`
}
