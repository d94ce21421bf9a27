package server

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/utils"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// stubLoader serves fixed in-memory datasets for handler tests.
type stubLoader struct {
	steps   []model.TestStep
	strings model.ExpectedStrings
	coords  model.CoordinateIndex
	loadErr error
}

func (l *stubLoader) LoadTestProtocol(ctx context.Context) ([]model.TestStep, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.steps, nil
}

func (l *stubLoader) LoadExpectedStrings(ctx context.Context) (model.ExpectedStrings, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.strings, nil
}

func (l *stubLoader) LoadCoordinates(ctx context.Context) (model.CoordinateIndex, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.coords, nil
}

// stubExtractor returns the same text for every region.
type stubExtractor struct {
	text       string
	confidence float64

	mu    sync.Mutex
	calls int
}

func (e *stubExtractor) Extract(ctx context.Context, img image.Image, req extractor.Request) (extractor.Result, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return extractor.Result{Text: e.text, Confidence: e.confidence}, nil
}

func (e *stubExtractor) Close() error { return nil }

// newValidationTestServer builds a server whose engine factory validates a
// single passing step against a synthetic screenshot.
func newValidationTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	img := imaging.New(200, 100, color.White)
	require.NoError(t, utils.SaveImage(img, filepath.Join(dir, "MainMenu.png")))

	step := model.TestStep{StepID: "S1", ScreenID: "MainMenu", ExpectedStringID: "title"}
	loader := &stubLoader{
		steps:   []model.TestStep{step},
		strings: model.ExpectedStrings{"title": "Settings"},
		coords: model.CoordinateIndex{
			step.Key(): {Left: 10, Top: 10, Right: 150, Bottom: 60},
		},
	}
	ext := &stubExtractor{text: "Settings", confidence: 0.94}

	srv := &Server{corsOrigin: "*", hub: newProgressHub()}
	srv.newEngine = func(req ValidationRequest) (*validation.Engine, error) {
		return validation.NewBuilder().
			WithLoader(loader).
			WithExtractor(ext).
			WithScreenshotDir(dir).
			Build()
	}
	return srv
}
