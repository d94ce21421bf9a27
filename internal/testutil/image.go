package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// ImageSize represents screen dimensions.
type ImageSize struct {
	Width  int
	Height int
}

// SmallScreen is the default size of synthetic screens. Big enough for a
// handful of UI strings, small enough to keep fixture generation fast.
var SmallScreen = ImageSize{640, 480}

// Box padding applied around measured text when placing a region.
const (
	textPadX = 6
	textPadY = 5
)

// ScreenText is one localized string rendered on a synthetic screen,
// together with the region box that annotates it.
type ScreenText struct {
	StringID string
	Text     string
	Box      model.Coordinate
}

// ScreenConfig holds configuration for generating a synthetic screenshot.
type ScreenConfig struct {
	Size       ImageSize
	Background color.Color
	Foreground color.Color
	FontFace   font.Face
	Texts      []ScreenText
	Blur       float64 // gaussian sigma simulating a soft capture
	Noise      float64 // fraction of pixels flipped to simulate compression artifacts
}

// DefaultScreenConfig returns a default configuration for synthetic screens.
func DefaultScreenConfig() ScreenConfig {
	return ScreenConfig{
		Size:       SmallScreen,
		Background: color.White,
		Foreground: color.Black,
		FontFace:   basicfont.Face7x13,
		Blur:       0,
		Noise:      0,
	}
}

// PlaceText builds a ScreenText whose box is sized from the measured text
// width plus padding, anchored at the given top-left corner.
func PlaceText(face font.Face, stringID, text string, left, top int) ScreenText {
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	return ScreenText{
		StringID: stringID,
		Text:     text,
		Box: model.Coordinate{
			Left:   left,
			Top:    top,
			Right:  left + textWidth + 2*textPadX,
			Bottom: top + textHeight + 2*textPadY,
		},
	}
}

// GenerateScreen renders a synthetic screenshot with each text drawn inside
// its region box. Boxes must be valid and lie within the screen bounds.
func GenerateScreen(config ScreenConfig) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))

	// Fill background
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: config.FontFace,
	}

	ascent := config.FontFace.Metrics().Ascent.Ceil()
	for _, txt := range config.Texts {
		if err := txt.Box.Validate(); err != nil {
			return nil, fmt.Errorf("region for %q: %w", txt.StringID, err)
		}
		if !txt.Box.Rect().In(img.Bounds()) {
			return nil, fmt.Errorf("region for %q lies outside the %dx%d screen",
				txt.StringID, config.Size.Width, config.Size.Height)
		}

		// Left-align inside the box, vertically centered on the baseline.
		x := txt.Box.Left + textPadX
		y := txt.Box.Top + (txt.Box.Height()+ascent)/2
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(txt.Text)
	}

	if config.Blur > 0 {
		blurred := imaging.Blur(img, config.Blur)
		rgba := image.NewRGBA(blurred.Bounds())
		draw.Draw(rgba, rgba.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
		img = rgba
	}

	if config.Noise > 0 {
		img = addNoise(img, config.Noise)
	}

	return img, nil
}

// CompareImages reports whether two images agree within tolerance, measured
// as the mean absolute per-channel difference normalized to [0, 1].
func CompareImages(a, b image.Image, tolerance float64) bool {
	bounds := a.Bounds()
	if bounds != b.Bounds() {
		return false
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			sum += math.Abs(float64(ar)-float64(br)) +
				math.Abs(float64(ag)-float64(bg)) +
				math.Abs(float64(ab)-float64(bb)) +
				math.Abs(float64(aa)-float64(ba))
		}
	}

	channels := float64(bounds.Dx()*bounds.Dy()) * 4
	return sum/channels/65535 <= tolerance
}

// addNoise flips scattered pixels to simulate compression artifacts in a
// captured screenshot. The pattern is deterministic so fixture screens stay
// reproducible.
func addNoise(img *image.RGBA, noiseLevel float64) *image.RGBA {
	bounds := img.Bounds()
	noisy := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()

			if math.Mod(float64(x*y), 1.0/noiseLevel) < 1.0 {
				if (x+y)%2 == 0 {
					r = 65535 - r
					g = 65535 - g
					b = 65535 - b
				}
			}

			//nolint:gosec // G115: channel values stay within uint16 range
			noisy.Set(x, y, color.RGBA64{uint16(r), uint16(g), uint16(b), uint16(a)})
		}
	}

	return noisy
}

// WritePNG encodes an image to the specified path, creating parent
// directories as needed.
func WritePNG(path string, img image.Image) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	file, err := os.Create(path) //nolint:gosec // G304: fixture paths are caller controlled
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return file.Close()
}
