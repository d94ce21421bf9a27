package validation

import (
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// Summarize aggregates validation results into per-classification counts,
// the pass rate in percent, and averages over the results that carry a
// confidence or timing value. It accepts any result list, including an
// empty one.
func Summarize(results []model.ValidationResult) model.ValidationSummary {
	summary := model.ValidationSummary{Total: len(results)}

	var confSum float64
	confCount := 0
	var durSum float64
	durCount := 0

	for _, r := range results {
		switch r.Result {
		case model.MatchPass:
			summary.Passed++
		case model.MatchFail:
			summary.Failed++
		case model.MatchError:
			summary.Errors++
		case model.MatchMissingImage:
			summary.MissingImages++
		case model.MatchMissingCoordinates:
			summary.MissingCoordinates++
		}
		if r.Confidence != nil {
			confSum += *r.Confidence
			confCount++
		}
		if r.DurationMS != nil {
			durSum += *r.DurationMS
			durCount++
		}
	}

	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total) * 100.0
	}
	if confCount > 0 {
		summary.AvgConfidence = confSum / float64(confCount)
	}
	if durCount > 0 {
		summary.AvgDurationMS = durSum / float64(durCount)
	}
	return summary
}
