package validation

import (
	"context"
	"sync"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

type stepJob struct {
	index int
	step  model.TestStep
}

type stepOutcome struct {
	index  int
	result model.ValidationResult
}

// validateParallel fans steps out to a worker pool and reassembles results
// in protocol order. Observers see completion order. Steps still queued when
// the context is cancelled are dropped, so the returned slice covers only
// completed work.
func (e *Engine) validateParallel(
	ctx context.Context,
	steps []model.TestStep,
	expected model.ExpectedStrings,
	coords model.CoordinateIndex,
) []model.ValidationResult {
	workers := e.cfg.Workers
	if workers > len(steps) {
		workers = len(steps)
	}

	jobs := make(chan stepJob, len(steps))
	outcomes := make(chan stepOutcome, len(steps))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				result := e.validateStep(ctx, job.step, expected, coords)
				select {
				case outcomes <- stepOutcome{index: job.index, result: result}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, step := range steps {
			select {
			case jobs <- stepJob{index: i, step: step}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	byIndex := make(map[int]model.ValidationResult, len(steps))
	for outcome := range outcomes {
		byIndex[outcome.index] = outcome.result
		e.notifyStepComplete(outcome.result)
	}

	results := make([]model.ValidationResult, 0, len(steps))
	for i := range steps {
		if result, ok := byIndex[i]; ok {
			results = append(results, result)
		}
	}
	return results
}
