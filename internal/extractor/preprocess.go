package extractor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Minimum region size for reliable recognition. Smaller crops are upscaled
// before being handed to the backend.
const (
	minRegionWidth  = 100
	minRegionHeight = 30
)

const (
	contrastBoost = 50
	blurSigma     = 0.5
)

// Preprocess applies the standard cleanup chain for UI text regions:
// grayscale, contrast boost, a light blur against subpixel rendering noise,
// and a Lanczos upscale when the region is below the minimum size. The input
// image is not modified.
func Preprocess(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, contrastBoost)
	out = imaging.Blur(out, blurSigma)

	b := out.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return out
	}
	if w < minRegionWidth || h < minRegionHeight {
		scale := math.Max(
			float64(minRegionWidth)/float64(w),
			float64(minRegionHeight)/float64(h),
		)
		newW := int(float64(w) * scale)
		newH := int(float64(h) * scale)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		out = imaging.Resize(out, newW, newH, imaging.Lanczos)
	}
	return out
}
