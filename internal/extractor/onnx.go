package extractor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	onnxrt "github.com/yalue/onnxruntime_go"

	"github.com/nitya2202/ocr-string-validation-tool/internal/mempool"
)

// ctcBlank is the class index reserved for the CTC blank token. Charset
// entries map to class index+1.
const ctcBlank = 0

// defaultModelHeight is used when the model declares a dynamic input height.
const defaultModelHeight = 48

// ONNXOptions configure the onnxruntime recognition backend.
type ONNXOptions struct {
	// ModelPath locates a single-input single-output CTC recognition model.
	ModelPath string
	// CharsetPath locates the dictionary file, one token per line, ordered
	// to match the model's class indices (blank excluded).
	CharsetPath string
	// ImageHeight overrides the model input height. Zero adopts the height
	// declared by the model, falling back to 48 for dynamic models.
	ImageHeight int
	// NumThreads caps intra-op parallelism. Zero keeps the runtime default.
	NumThreads int
	// LibraryPath points at the onnxruntime shared library. Empty probes
	// common system locations.
	LibraryPath string
}

// ONNX recognizes text by running a CTC recognition model through
// onnxruntime. Model inference is serialized internally, so a single value
// is safe for concurrent use.
type ONNX struct {
	session  *onnxrt.DynamicAdvancedSession
	charset  []string
	height   int
	channels int
	mu       sync.Mutex
}

// NewONNX loads the model and charset and prepares an inference session.
func NewONNX(opts ONNXOptions) (*ONNX, error) {
	if opts.ModelPath == "" {
		return nil, errors.New("onnx model path is required")
	}
	if opts.CharsetPath == "" {
		return nil, errors.New("onnx charset path is required")
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("onnx model not found: %s", opts.ModelPath)
	}
	charset, err := loadCharset(opts.CharsetPath)
	if err != nil {
		return nil, err
	}

	if err := ensureRuntime(opts.LibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected 1 model input, got %d", len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 model output, got %d", len(outputs))
	}
	inputInfo := inputs[0]
	if len(inputInfo.Dimensions) != 4 {
		return nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputInfo.Dimensions))
	}

	// Input is [N, C, H, W]; adopt the model's fixed height unless overridden.
	height := opts.ImageHeight
	if height <= 0 {
		if h := inputInfo.Dimensions[2]; h > 0 {
			height = int(h)
		} else {
			height = defaultModelHeight
		}
	}
	channels := 3
	if inputInfo.Dimensions[1] == 1 {
		channels = 1
	}

	sessionOptions, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		if err := sessionOptions.Destroy(); err != nil {
			slog.Warn("Failed to destroy session options", "error", err)
		}
	}()
	if opts.NumThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(opts.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		opts.ModelPath,
		[]string{inputInfo.Name},
		[]string{outputs[0].Name},
		sessionOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	slog.Info("Initialized ONNX recognition backend",
		"model", opts.ModelPath,
		"charset_size", len(charset),
		"input_height", height,
		"channels", channels)

	return &ONNX{
		session:  session,
		charset:  charset,
		height:   height,
		channels: channels,
	}, nil
}

// Name returns the backend identifier.
func (o *ONNX) Name() string { return BackendONNX }

// Extract resizes the region to the model height, runs inference, and
// applies greedy CTC decoding. Confidence is the mean probability of the
// decoded characters. Language and whitelist settings do not apply; the
// charset fixes what the model can emit.
func (o *ONNX) Extract(ctx context.Context, img image.Image, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if img == nil {
		return Result{}, &ExtractionError{Backend: o.Name(), Err: errors.New("input image is nil")}
	}
	if o.session == nil {
		return Result{}, &ExtractionError{Backend: o.Name(), Err: errors.New("session is closed")}
	}

	src := img
	if req.Preprocess {
		src = Preprocess(src)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Result{}, &ExtractionError{Backend: o.Name(), Err: errors.New("region is empty")}
	}
	width := int(float64(b.Dx()) * float64(o.height) / float64(b.Dy()))
	if width < 1 {
		width = 1
	}
	resized := imaging.Resize(src, width, o.height, imaging.Lanczos)

	data, w, h := imageTensor(resized, o.channels)
	// Registered before the tensor defer so the tensor is destroyed before
	// its backing buffer goes back to the pool.
	defer mempool.Put(data)
	input, err := onnxrt.NewTensor(onnxrt.NewShape(1, int64(o.channels), int64(h), int64(w)), data)
	if err != nil {
		return Result{}, &ExtractionError{Backend: o.Name(), Err: fmt.Errorf("create input tensor: %w", err)}
	}
	defer func() { _ = input.Destroy() }()

	outputs := []onnxrt.Value{nil}
	o.mu.Lock()
	err = o.session.Run([]onnxrt.Value{input}, outputs)
	o.mu.Unlock()
	if err != nil {
		return Result{}, &ExtractionError{Backend: o.Name(), Err: fmt.Errorf("inference failed: %w", err)}
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				_ = out.Destroy()
			}
		}
	}()

	outTensor, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return Result{}, &ExtractionError{
			Backend: o.Name(),
			Err:     fmt.Errorf("expected float32 output tensor, got %T", outputs[0]),
		}
	}

	text, confidence, err := o.decode(outTensor.GetData(), outTensor.GetShape())
	if err != nil {
		return Result{}, &ExtractionError{Backend: o.Name(), Err: err}
	}
	return Result{Text: text, Confidence: confidence}, nil
}

// decode turns raw model output into text plus mean character probability.
// Layout may be [1, T, C] or [1, C, T]; the charset size disambiguates.
func (o *ONNX) decode(data []float32, shape []int64) (string, float64, error) {
	dims := append([]int64(nil), shape...)
	for len(dims) > 3 && dims[len(dims)-1] == 1 {
		dims = dims[:len(dims)-1]
	}
	if len(dims) != 3 || dims[0] != 1 {
		return "", 0, fmt.Errorf("unexpected recognition output shape %v", shape)
	}

	classes := len(o.charset) + 1
	steps := 0
	classesFirst := false
	switch {
	case int(dims[2]) == classes:
		steps = int(dims[1])
	case int(dims[1]) == classes:
		classesFirst = true
		steps = int(dims[2])
	default:
		return "", 0, fmt.Errorf("model output %dx%d does not match charset size %d",
			dims[1], dims[2], len(o.charset))
	}

	indices, probs := decodeGreedy(data, steps, classes, classesFirst)
	kept, keptProbs := collapseRepeats(indices, probs, ctcBlank)

	var sb strings.Builder
	for _, idx := range kept {
		if idx >= 1 && idx <= len(o.charset) {
			sb.WriteString(o.charset[idx-1])
		}
	}
	return sb.String(), meanProb(keptProbs), nil
}

// Close destroys the inference session. Further Extract calls fail.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

// imageTensor converts an image to a float32 NCHW block in [0,1]. A single
// channel gets the mean of RGB. The slice comes from the tensor pool and
// every element is written; the caller hands it back with mempool.Put.
func imageTensor(img image.Image, channels int) ([]float32, int, int) {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	data := mempool.Get(channels * width * height)
	for y := range height {
		for x := range width {
			r, g, b, _ := nrgba.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float32(r>>8) / 255.0
			gf := float32(g>>8) / 255.0
			bf := float32(b>>8) / 255.0
			idx := y*width + x
			if channels == 1 {
				data[idx] = (rf + gf + bf) / 3
				continue
			}
			data[idx] = rf
			data[width*height+idx] = gf
			data[2*width*height+idx] = bf
		}
	}
	return data, width, height
}

// onnxLibraryPaths are probed in order when no explicit library path is set.
var onnxLibraryPaths = []string{
	"/usr/local/lib/libonnxruntime.so",
	"/usr/lib/libonnxruntime.so",
	"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
}

func ensureRuntime(libraryPath string) error {
	if onnxrt.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		onnxrt.SetSharedLibraryPath(libraryPath)
	} else {
		for _, p := range onnxLibraryPaths {
			if _, err := os.Stat(p); err == nil {
				onnxrt.SetSharedLibraryPath(p)
				break
			}
		}
	}
	if err := onnxrt.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}
	return nil
}

// loadCharset reads a dictionary file with one token per line. Empty lines
// are skipped and a UTF-8 BOM on the first line is removed.
func loadCharset(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: opening a configured dictionary file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open charset: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close charset file", "path", path, "error", err)
		}
	}()

	scanner := bufio.NewScanner(f)
	tokens := make([]string, 0, 512)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "﻿")
			first = false
		}
		if line == "" {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading charset: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("charset is empty: %s", path)
	}
	return tokens, nil
}
