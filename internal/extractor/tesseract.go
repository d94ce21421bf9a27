package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a locally installed tesseract engine via
// the gosseract bindings. A fresh client is created per extraction, so a
// single value is safe for concurrent use.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// NewTesseract constructs the default tesseract-backed extractor.
func NewTesseract() *Tesseract {
	return &Tesseract{clientFactory: gosseract.NewClient}
}

// Name returns the backend identifier.
func (t *Tesseract) Name() string { return BackendTesseract }

// Extract runs OCR on the given region. Confidence is the mean tesseract
// word confidence scaled to [0,1]; when the bindings cannot produce
// word-level data the plain recognized text is returned with confidence 0.
func (t *Tesseract) Extract(ctx context.Context, img image.Image, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if img == nil {
		return Result{}, &ExtractionError{Backend: t.Name(), Err: errors.New("input image is nil")}
	}
	req = req.withDefaults()

	src := img
	if req.Preprocess {
		src = Preprocess(src)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return Result{}, &ExtractionError{Backend: t.Name(), Err: fmt.Errorf("encode region: %w", err)}
	}

	client := t.clientFactory()
	defer client.Close()

	if err := t.configureClient(client, buf.Bytes(), req); err != nil {
		return Result{}, &ExtractionError{Backend: t.Name(), Err: err}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		// Bindings without word-level data; degrade to plain text.
		text, textErr := client.Text()
		if textErr != nil {
			return Result{}, &ExtractionError{Backend: t.Name(), Err: fmt.Errorf("recognize text: %w", textErr)}
		}
		return Result{Text: strings.TrimSpace(text)}, nil
	}

	words := make([]string, 0, len(boxes))
	var confSum float64
	confCount := 0
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		words = append(words, word)
		if box.Confidence > 0 {
			confSum += box.Confidence
			confCount++
		}
	}

	result := Result{Text: strings.Join(words, " ")}
	if confCount > 0 {
		result.Confidence = confSum / float64(confCount) / 100.0
	}
	return result, nil
}

func (t *Tesseract) configureClient(client *gosseract.Client, imgData []byte, req Request) error {
	if err := client.SetImageFromBytes(imgData); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(TesseractLanguage(req.Language)); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(req.PSM)); err != nil {
		return fmt.Errorf("set page segmentation mode: %w", err)
	}
	if req.Whitelist != "" {
		if err := client.SetWhitelist(req.Whitelist); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
	}
	if req.DPI > 0 {
		dpi := strconv.Itoa(req.DPI)
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), dpi); err != nil {
			return fmt.Errorf("set dpi: %w", err)
		}
	}
	return nil
}

// Close releases nothing; clients are per-call.
func (t *Tesseract) Close() error { return nil }
