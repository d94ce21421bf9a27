// Package validation orchestrates OCR validation runs: it walks a test
// protocol, extracts text from screenshot regions, compares the extraction
// against the expected string, and classifies every step.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/nitya2202/ocr-string-validation-tool/internal/common"
	"github.com/nitya2202/ocr-string-validation-tool/internal/dataset"
	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
	"github.com/nitya2202/ocr-string-validation-tool/internal/matcher"
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/utils"
)

// DefaultFuzzyThreshold is the similarity threshold of the default
// comparison chain's fuzzy stage.
const DefaultFuzzyThreshold = 0.8

// Config holds engine settings not covered by the injected collaborators.
type Config struct {
	// ScreenshotDir is the directory containing <ScreenID>.png captures.
	ScreenshotDir string
	// Request is the extraction request applied to every step.
	Request extractor.Request
	// Workers is the number of steps validated concurrently. Values below
	// two mean sequential processing.
	Workers int
}

// Builder constructs an Engine with fluent configuration.
type Builder struct {
	cfg       Config
	loader    dataset.Loader
	extractor extractor.Extractor
	matcher   matcher.Matcher
	observers []Observer
}

// NewBuilder creates an engine builder with defaults.
func NewBuilder() *Builder {
	return &Builder{
		cfg: Config{
			Request: extractor.Request{Preprocess: true},
		},
	}
}

// WithLoader sets the dataset loader.
func (b *Builder) WithLoader(loader dataset.Loader) *Builder {
	b.loader = loader
	return b
}

// WithExtractor sets the text extraction backend.
func (b *Builder) WithExtractor(ext extractor.Extractor) *Builder {
	b.extractor = ext
	return b
}

// WithMatcher sets the string comparison strategy.
func (b *Builder) WithMatcher(m matcher.Matcher) *Builder {
	b.matcher = m
	return b
}

// WithScreenshotDir sets the directory screenshots are resolved from.
func (b *Builder) WithScreenshotDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ScreenshotDir = dir
	}
	return b
}

// WithRequest sets the per-step extraction request.
func (b *Builder) WithRequest(req extractor.Request) *Builder {
	b.cfg.Request = req
	return b
}

// WithLanguage sets the locale tag used for extraction.
func (b *Builder) WithLanguage(tag string) *Builder {
	if tag != "" {
		b.cfg.Request.Language = tag
	}
	return b
}

// WithWorkers sets the number of parallel validation workers.
func (b *Builder) WithWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Workers = workers
	}
	return b
}

// WithObserver registers an observer on the built engine.
func (b *Builder) WithObserver(observer Observer) *Builder {
	if observer != nil {
		b.observers = append(b.observers, observer)
	}
	return b
}

// Build validates the configuration and assembles the engine. A missing
// matcher falls back to the default comparison chain.
func (b *Builder) Build() (*Engine, error) {
	if b.loader == nil {
		return nil, errors.New("dataset loader is required")
	}
	if b.extractor == nil {
		return nil, errors.New("text extractor is required")
	}
	if b.cfg.ScreenshotDir == "" {
		return nil, errors.New("screenshot directory is required")
	}

	m := b.matcher
	if m == nil {
		var err error
		m, err = matcher.Default(DefaultFuzzyThreshold)
		if err != nil {
			return nil, fmt.Errorf("init default matcher: %w", err)
		}
	}

	e := &Engine{
		cfg:       b.cfg,
		loader:    b.loader,
		extractor: b.extractor,
		matcher:   m,
	}
	for _, o := range b.observers {
		e.AddObserver(o)
	}
	return e, nil
}

// Engine runs the per-step validation algorithm over a test protocol.
type Engine struct {
	cfg       Config
	loader    dataset.Loader
	extractor extractor.Extractor
	matcher   matcher.Matcher

	mu        sync.Mutex
	observers []Observer
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// AddObserver registers an observer. Nil observers are ignored.
func (e *Engine) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters a previously added observer.
func (e *Engine) RemoveObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// ValidateAll loads the three datasets and validates every protocol step in
// order. Load failures abort the run with no results. Step failures do not:
// they are recorded as classified results and the run continues. When the
// context is cancelled between steps, the results completed so far are
// returned together with the context error.
func (e *Engine) ValidateAll(ctx context.Context) ([]model.ValidationResult, error) {
	steps, err := e.loader.LoadTestProtocol(ctx)
	if err != nil {
		e.notifyError(err, nil)
		return nil, err
	}
	expected, err := e.loader.LoadExpectedStrings(ctx)
	if err != nil {
		e.notifyError(err, nil)
		return nil, err
	}
	coords, err := e.loader.LoadCoordinates(ctx)
	if err != nil {
		e.notifyError(err, nil)
		return nil, err
	}

	slog.Info("Starting validation run",
		"steps", len(steps),
		"language", e.cfg.Request.Language,
		"screenshot_dir", e.cfg.ScreenshotDir,
		"workers", e.cfg.Workers,
	)
	e.notifyRunStart(len(steps))

	var results []model.ValidationResult
	if e.cfg.Workers > 1 && len(steps) > 1 {
		results = e.validateParallel(ctx, steps, expected, coords)
	} else {
		results = e.validateSequential(ctx, steps, expected, coords)
	}

	e.notifyRunComplete(results)
	slog.Info("Validation run finished", "completed", len(results), "total", len(steps))

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// ValidateStep loads the expected strings and coordinates and validates a
// single step with the same algorithm ValidateAll applies per step.
func (e *Engine) ValidateStep(ctx context.Context, step model.TestStep) (model.ValidationResult, error) {
	expected, err := e.loader.LoadExpectedStrings(ctx)
	if err != nil {
		e.notifyError(err, nil)
		return model.ValidationResult{}, err
	}
	coords, err := e.loader.LoadCoordinates(ctx)
	if err != nil {
		e.notifyError(err, nil)
		return model.ValidationResult{}, err
	}
	return e.validateStep(ctx, step, expected, coords), nil
}

func (e *Engine) validateSequential(
	ctx context.Context,
	steps []model.TestStep,
	expected model.ExpectedStrings,
	coords model.CoordinateIndex,
) []model.ValidationResult {
	results := make([]model.ValidationResult, 0, len(steps))
	for _, step := range steps {
		if ctx.Err() != nil {
			slog.Warn("Validation cancelled", "completed", len(results), "total", len(steps))
			break
		}
		result := e.validateStep(ctx, step, expected, coords)
		results = append(results, result)
		e.notifyStepComplete(result)
	}
	return results
}

// validateStep classifies one step. Missing inputs short-circuit in a fixed
// order: expected string, then screenshot, then coordinates. Only steps that
// reach extraction carry timing, and only compared steps carry confidence.
func (e *Engine) validateStep(
	ctx context.Context,
	step model.TestStep,
	expected model.ExpectedStrings,
	coords model.CoordinateIndex,
) model.ValidationResult {
	timer := common.StartStopwatch()
	result := model.ValidationResult{Step: step}

	text, ok := expected.Lookup(step.ExpectedStringID)
	if !ok {
		result.Result = model.MatchError
		result.ErrorMessage = fmt.Sprintf("Expected string not found: %s", step.ExpectedStringID)
		return result
	}
	result.ExpectedText = text

	imagePath := filepath.Join(e.cfg.ScreenshotDir, step.ScreenID+".png")
	if _, err := os.Stat(imagePath); err != nil {
		result.Result = model.MatchMissingImage
		result.ErrorMessage = fmt.Sprintf("Image not found: %s", imagePath)
		return result
	}

	coord, ok := coords.Lookup(step.Key())
	if !ok {
		result.Result = model.MatchMissingCoordinates
		result.ErrorMessage = fmt.Sprintf("Coordinates not found for: %s", step.Key())
		return result
	}

	extraction, err := e.extractRegion(ctx, imagePath, coord)
	if err != nil {
		elapsed := timer.ElapsedMS()
		result.Result = model.MatchError
		result.ErrorMessage = err.Error()
		result.DurationMS = &elapsed
		e.notifyError(err, &step)
		return result
	}
	result.ExtractedText = extraction.Text

	outcome := e.matcher.Compare(text, extraction.Text)
	if outcome.Match {
		result.Result = model.MatchPass
	} else {
		result.Result = model.MatchFail
	}

	confidence := math.Min(extraction.Confidence, outcome.Confidence)
	result.Confidence = &confidence
	elapsed := timer.ElapsedMS()
	result.DurationMS = &elapsed
	return result
}

func (e *Engine) extractRegion(
	ctx context.Context,
	imagePath string,
	coord model.Coordinate,
) (extractor.Result, error) {
	img, err := utils.LoadImage(imagePath)
	if err != nil {
		return extractor.Result{}, err
	}
	region, err := utils.CropRect(img, coord.Rect())
	if err != nil {
		return extractor.Result{}, err
	}
	return e.extractor.Extract(ctx, region, e.cfg.Request)
}

func (e *Engine) snapshotObservers() []Observer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Observer(nil), e.observers...)
}

// notify invokes one hook on every registered observer, recovering from
// panics so a faulty observer cannot abort the run.
func (e *Engine) notify(hook string, fn func(Observer)) {
	for _, observer := range e.snapshotObservers() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Observer panicked", "hook", hook, "panic", r)
				}
			}()
			fn(observer)
		}()
	}
}

func (e *Engine) notifyRunStart(total int) {
	e.notify("run_start", func(o Observer) { o.OnRunStart(total) })
}

func (e *Engine) notifyStepComplete(result model.ValidationResult) {
	e.notify("step_complete", func(o Observer) { o.OnStepComplete(result) })
}

func (e *Engine) notifyRunComplete(results []model.ValidationResult) {
	e.notify("run_complete", func(o Observer) { o.OnRunComplete(results) })
}

func (e *Engine) notifyError(err error, step *model.TestStep) {
	e.notify("error", func(o Observer) { o.OnError(err, step) })
}
