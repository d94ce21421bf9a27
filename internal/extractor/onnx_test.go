package extractor

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitya2202/ocr-string-validation-tool/internal/mempool"
)

func TestImageTensorRGBPlanarLayout(t *testing.T) {
	// Solid red 2x2. In NCHW layout the R plane holds ones and the G and B
	// planes hold zeros.
	img := imaging.New(2, 2, color.NRGBA{R: 255, A: 255})
	data, w, h := imageTensor(img, 3)
	defer mempool.Put(data)

	require.Equal(t, 2, w)
	require.Equal(t, 2, h)
	require.Len(t, data, 12)
	for i := range 4 {
		assert.InDelta(t, 1.0, float64(data[i]), 0.01)
		assert.InDelta(t, 0.0, float64(data[4+i]), 0.01)
		assert.InDelta(t, 0.0, float64(data[8+i]), 0.01)
	}
}

func TestImageTensorSingleChannelAverages(t *testing.T) {
	img := imaging.New(3, 1, color.NRGBA{R: 255, A: 255})
	data, w, h := imageTensor(img, 1)
	defer mempool.Put(data)

	require.Equal(t, 3, w)
	require.Equal(t, 1, h)
	require.Len(t, data, 3)
	for _, v := range data {
		assert.InDelta(t, 1.0/3.0, float64(v), 0.01)
	}
}

func TestImageTensorUnitRange(t *testing.T) {
	img := imaging.New(8, 4, color.NRGBA{R: 120, G: 200, B: 40, A: 255})
	data, _, _ := imageTensor(img, 3)
	defer mempool.Put(data)

	for _, v := range data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}
