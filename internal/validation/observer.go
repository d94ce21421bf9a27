package validation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// Observer receives lifecycle events during a validation run. Hooks are
// invoked synchronously in registration order; a panicking observer is
// logged and skipped without affecting the run.
type Observer interface {
	// OnRunStart is called once before the first step with the step count.
	OnRunStart(total int)

	// OnStepComplete is called after each step with its result.
	OnStepComplete(result model.ValidationResult)

	// OnRunComplete is called once with all results produced by the run.
	OnRunComplete(results []model.ValidationResult)

	// OnError is called for step-level failures (with the step) and for
	// dataset load failures (step is nil).
	OnError(err error, step *model.TestStep)
}

// NoOpObserver implements Observer but does nothing. Useful for embedding
// when only some hooks are needed.
type NoOpObserver struct{}

func (NoOpObserver) OnRunStart(total int)                           {}
func (NoOpObserver) OnStepComplete(result model.ValidationResult)   {}
func (NoOpObserver) OnRunComplete(results []model.ValidationResult) {}
func (NoOpObserver) OnError(err error, step *model.TestStep)        {}

// ConsoleObserver displays a progress bar with per-classification counts.
type ConsoleObserver struct {
	writer         io.Writer
	width          int
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
	total          int
	done           int
	passed         int
	failed         int
	mutex          sync.Mutex
}

// NewConsoleObserver creates a console progress reporter.
func NewConsoleObserver(writer io.Writer) *ConsoleObserver {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleObserver{
		writer:         writer,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithWidth sets the progress bar width.
func (c *ConsoleObserver) WithWidth(width int) *ConsoleObserver {
	c.width = width
	return c
}

func (c *ConsoleObserver) OnRunStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	c.total = total
	c.done = 0
	c.passed = 0
	c.failed = 0

	_, _ = fmt.Fprintf(c.writer, "Validating %d steps\n", total)
}

func (c *ConsoleObserver) OnStepComplete(result model.ValidationResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.done++
	switch result.Result {
	case model.MatchPass:
		c.passed++
	case model.MatchFail:
		c.failed++
	}

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && c.done < c.total {
		return
	}
	c.lastUpdate = now
	c.drawProgressBar()
}

func (c *ConsoleObserver) OnRunComplete(results []model.ValidationResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\nCompleted %d steps in %v (%d passed, %d failed)\n",
		len(results), elapsed.Round(time.Millisecond), c.passed, c.failed)
}

func (c *ConsoleObserver) OnError(err error, step *model.TestStep) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if step != nil {
		_, _ = fmt.Fprintf(c.writer, "\nError at step %s: %v\n", step.StepID, err)
		return
	}
	_, _ = fmt.Fprintf(c.writer, "\nError: %v\n", err)
}

func (c *ConsoleObserver) drawProgressBar() {
	if c.total == 0 {
		return
	}
	percent := float64(c.done) / float64(c.total) * 100.0
	filled := c.width * c.done / c.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	_, _ = fmt.Fprintf(c.writer, "\r[%s] %d/%d (%.1f%%) pass:%d fail:%d",
		bar, c.done, c.total, percent, c.passed, c.failed)
}

// LogObserver logs run progress through slog at a configurable interval.
type LogObserver struct {
	logger    *slog.Logger
	level     slog.Level
	interval  int
	done      int
	lastLog   int
	startTime time.Time
	mutex     sync.Mutex
}

// NewLogObserver creates a log-based progress reporter. A nil logger uses
// the default logger.
func NewLogObserver(logger *slog.Logger, level slog.Level) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{
		logger:   logger,
		level:    level,
		interval: 10,
	}
}

// WithInterval sets how frequently to log progress (every N steps).
func (l *LogObserver) WithInterval(interval int) *LogObserver {
	if interval > 0 {
		l.interval = interval
	}
	return l
}

func (l *LogObserver) OnRunStart(total int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.startTime = time.Now()
	l.done = 0
	l.lastLog = 0
	l.logger.Log(context.Background(), l.level, "Starting validation run", "total", total)
}

func (l *LogObserver) OnStepComplete(result model.ValidationResult) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.done++
	if l.done-l.lastLog < l.interval {
		return
	}
	l.lastLog = l.done
	l.logger.Log(context.Background(), l.level, "Validation progress",
		"completed", l.done,
		"last_step", result.Step.StepID,
		"last_result", string(result.Result),
	)
}

func (l *LogObserver) OnRunComplete(results []model.ValidationResult) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	summary := Summarize(results)
	l.logger.Log(context.Background(), l.level, "Validation run completed",
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"errors", summary.Errors,
		"pass_rate", fmt.Sprintf("%.1f", summary.PassRate),
		"elapsed", time.Since(l.startTime).Round(time.Millisecond),
	)
}

func (l *LogObserver) OnError(err error, step *model.TestStep) {
	if step != nil {
		l.logger.Log(context.Background(), slog.LevelError, "Validation step error",
			"step", step.StepID, "screen", step.ScreenID, "error", err)
		return
	}
	l.logger.Log(context.Background(), slog.LevelError, "Validation error", "error", err)
}

// MultiObserver fans events out to multiple observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates an observer that forwards to all children.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	return &MultiObserver{observers: observers}
}

// Add appends another observer.
func (m *MultiObserver) Add(observer Observer) {
	m.observers = append(m.observers, observer)
}

func (m *MultiObserver) OnRunStart(total int) {
	for _, o := range m.observers {
		o.OnRunStart(total)
	}
}

func (m *MultiObserver) OnStepComplete(result model.ValidationResult) {
	for _, o := range m.observers {
		o.OnStepComplete(result)
	}
}

func (m *MultiObserver) OnRunComplete(results []model.ValidationResult) {
	for _, o := range m.observers {
		o.OnRunComplete(results)
	}
}

func (m *MultiObserver) OnError(err error, step *model.TestStep) {
	for _, o := range m.observers {
		o.OnError(err, step)
	}
}
