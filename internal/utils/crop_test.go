package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropRect(t *testing.T) {
	src := imaging.New(100, 50, color.White)

	out, err := CropRect(src, image.Rect(10, 10, 40, 30))
	require.NoError(t, err)
	assert.Equal(t, 30, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

func TestCropRectClampsToBounds(t *testing.T) {
	src := imaging.New(100, 50, color.White)

	out, err := CropRect(src, image.Rect(80, 40, 200, 200))
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())
}

func TestCropRectOutsideBounds(t *testing.T) {
	src := imaging.New(100, 50, color.White)

	_, err := CropRect(src, image.Rect(200, 200, 300, 300))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside image bounds")
}

func TestCropRectNilImage(t *testing.T) {
	_, err := CropRect(nil, image.Rect(0, 0, 10, 10))
	require.Error(t, err)
}

func TestDrawRect(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	red := color.RGBA{R: 255, A: 255}

	DrawRect(dst, image.Rect(5, 5, 15, 15), red, 1)

	assert.Equal(t, red, dst.RGBAAt(5, 5))
	assert.Equal(t, red, dst.RGBAAt(14, 5))
	assert.Equal(t, red, dst.RGBAAt(5, 14))
	// Interior stays untouched.
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(10, 10))
}

func TestDrawRectOutsideBoundsIsNoOp(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	DrawRect(dst, image.Rect(50, 50, 60, 60), color.White, 2)
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(5, 5))
}
