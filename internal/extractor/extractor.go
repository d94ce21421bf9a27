// Package extractor recovers text from screenshot regions through
// interchangeable OCR backends. The default backend drives a locally
// installed tesseract engine via gosseract; an optional backend runs an
// ONNX text-recognition model through onnxruntime.
package extractor

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// Backend names accepted by New.
const (
	BackendTesseract = "tesseract"
	BackendONNX      = "onnx"
)

// Default extraction settings applied when a Request leaves them zero.
const (
	// DefaultLanguage is the BCP 47 tag assumed when none is configured.
	DefaultLanguage = "en"
	// DefaultPSM treats each region as a single word (tesseract mode 8),
	// which suits isolated UI strings. Mode 0 (orientation detection only)
	// is not useful for region validation, so zero means "use the default".
	DefaultPSM = 8
	// DefaultDPI is reported to the backend for images without density
	// metadata, as screenshots typically are.
	DefaultDPI = 300
)

// Request carries the per-extraction settings derived from the run
// configuration.
type Request struct {
	// Language is a BCP 47 tag such as "en-US" or "de"; backends map it to
	// their own language naming.
	Language string
	// PSM selects the tesseract page segmentation mode.
	PSM int
	// Whitelist restricts recognition to the listed characters on backends
	// that support it. Empty leaves recognition unrestricted.
	Whitelist string
	// DPI is the pixel density hint passed to the backend.
	DPI int
	// Preprocess runs the cleanup chain on the region before recognition.
	Preprocess bool
}

func (r Request) withDefaults() Request {
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	if r.PSM == 0 {
		r.PSM = DefaultPSM
	}
	if r.DPI == 0 {
		r.DPI = DefaultDPI
	}
	return r
}

// Result is the text recovered from a region together with the backend's
// confidence in [0,1].
type Result struct {
	Text       string
	Confidence float64
}

// Extractor recognizes text in a cropped screenshot region. Implementations
// are safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, img image.Image, req Request) (Result, error)
	Close() error
}

// ExtractionError wraps a backend failure with the backend's name.
type ExtractionError struct {
	Backend string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction via %s: %v", e.Backend, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Config selects and configures the extraction backend.
type Config struct {
	// Backend is "tesseract" or "onnx"; empty selects tesseract.
	Backend string
	ONNX    ONNXOptions
}

// New constructs the extractor named by cfg.Backend.
func New(cfg Config) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendTesseract:
		return NewTesseract(), nil
	case BackendONNX:
		return NewONNX(cfg.ONNX)
	default:
		return nil, fmt.Errorf("unsupported extractor backend: %s", cfg.Backend)
	}
}
