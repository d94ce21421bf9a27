// Package utils provides image loading, saving, and region helpers shared
// by the validation engine and the CLI tooling.
package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// ImageProcessingError tags an image failure with the operation that hit it.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

func imageErr(op string, err error) error {
	return &ImageProcessingError{Operation: op, Err: err}
}

// SupportedImageExtensions lists the file extensions LoadImage accepts.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	return slices.Contains(SupportedImageExtensions, strings.ToLower(filepath.Ext(path)))
}

// LoadImage opens and decodes one image file.
func LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, imageErr("load", errors.New("empty path"))
	}
	if !IsSupportedImage(path) {
		return nil, imageErr("load", fmt.Errorf("unsupported format %q", filepath.Ext(path)))
	}

	f, err := os.Open(path) //nolint:gosec // G304: screenshot paths come from the dataset
	if err != nil {
		return nil, imageErr("load", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, imageErr("decode", err)
	}
	return img, nil
}

// ImageMetadata describes an image file without its pixels.
type ImageMetadata struct {
	Path      string
	Format    string
	Width     int
	Height    int
	SizeBytes int64
}

// InspectImage reads the header of an image file. Unlike LoadImage it does
// not decode the pixel data, so it is cheap enough for directory listings.
func InspectImage(path string) (ImageMetadata, error) {
	f, err := os.Open(path) //nolint:gosec // G304: screenshot paths come from the dataset
	if err != nil {
		return ImageMetadata{}, imageErr("inspect", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return ImageMetadata{}, imageErr("inspect", err)
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageMetadata{}, imageErr("inspect", err)
	}

	return ImageMetadata{
		Path:      path,
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: fi.Size(),
	}, nil
}

// SaveImage encodes an image to path, creating parent directories as
// needed. The format is chosen by file extension.
func SaveImage(img image.Image, path string) error {
	if img == nil {
		return imageErr("save", errors.New("nil image"))
	}
	if path == "" {
		return imageErr("save", errors.New("empty path"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return imageErr("save", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return imageErr("save", err)
	}
	return nil
}

// ListImages returns the supported image files directly inside dir, sorted
// by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, imageErr("list", err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && IsSupportedImage(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
