package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToTesseract(t *testing.T) {
	ext, err := New(Config{})
	require.NoError(t, err)
	require.IsType(t, &Tesseract{}, ext)
	assert.Equal(t, BackendTesseract, ext.(*Tesseract).Name())
}

func TestNewBackendNameIsCaseInsensitive(t *testing.T) {
	ext, err := New(Config{Backend: " TESSERACT "})
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, ext)
}

func TestNewONNXRequiresPaths(t *testing.T) {
	_, err := New(Config{Backend: BackendONNX})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path")
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "magic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extractor backend")
}

func TestRequestDefaults(t *testing.T) {
	r := Request{}.withDefaults()
	assert.Equal(t, DefaultLanguage, r.Language)
	assert.Equal(t, DefaultPSM, r.PSM)
	assert.Equal(t, DefaultDPI, r.DPI)
	assert.Empty(t, r.Whitelist)
	assert.False(t, r.Preprocess)
}

func TestRequestDefaultsKeepExplicitValues(t *testing.T) {
	r := Request{Language: "de-DE", PSM: 7, DPI: 72, Whitelist: "0123456789"}.withDefaults()
	assert.Equal(t, "de-DE", r.Language)
	assert.Equal(t, 7, r.PSM)
	assert.Equal(t, 72, r.DPI)
	assert.Equal(t, "0123456789", r.Whitelist)
}

func TestExtractionErrorWrapsCause(t *testing.T) {
	cause := os.ErrNotExist
	err := &ExtractionError{Backend: "tesseract", Err: cause}
	assert.Contains(t, err.Error(), "extraction via tesseract")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestONNXDecodeTimeMajor(t *testing.T) {
	o := &ONNX{charset: []string{"a", "b", "c"}}

	text, conf, err := o.decode(flattenTimeMajor(sampleSteps), []int64{1, 5, 4})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	assert.InDelta(t, 0.85, conf, 1e-6)
}

func TestONNXDecodeClassMajor(t *testing.T) {
	o := &ONNX{charset: []string{"a", "b", "c"}}

	text, conf, err := o.decode(flattenClassMajor(sampleSteps), []int64{1, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	assert.InDelta(t, 0.85, conf, 1e-6)
}

func TestONNXDecodeCollapsesTrailingDims(t *testing.T) {
	o := &ONNX{charset: []string{"a", "b", "c"}}

	text, _, err := o.decode(flattenTimeMajor(sampleSteps), []int64{1, 5, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestONNXDecodeCharsetMismatch(t *testing.T) {
	o := &ONNX{charset: []string{"a", "b", "c"}}

	_, _, err := o.decode(make([]float32, 35), []int64{1, 5, 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charset size")
}

func TestONNXDecodeBadRank(t *testing.T) {
	o := &ONNX{charset: []string{"a"}}

	_, _, err := o.decode(make([]float32, 10), []int64{5, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output shape")
}

func TestLoadCharset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charset.txt")
	content := "﻿a\nb\n\nc\n  d  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tokens, err := loadCharset(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, tokens)
}

func TestLoadCharsetEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charset.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))

	_, err := loadCharset(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charset is empty")
}

func TestLoadCharsetMissingFile(t *testing.T) {
	_, err := loadCharset(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
