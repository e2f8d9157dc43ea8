package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portrait-cutout/internal/mask"
)

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 20), G: uint8(y * 20), B: uint8(x + y), A: 255,
			})
		}
	}
	return img
}

func TestCompositeAlphaEqualsMask(t *testing.T) {
	src := gradientImage(6, 4)
	m := mask.New(6, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			m.Set(x, y, uint8(40*x+y))
		}
	}

	out, err := Composite(src, m)
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			got := out.NRGBAAt(x, y)
			want := src.NRGBAAt(x, y)
			assert.Equal(t, want.R, got.R)
			assert.Equal(t, want.G, got.G)
			assert.Equal(t, want.B, got.B)
			assert.Equal(t, m.Get(x, y), got.A, "alpha at (%d,%d) must equal mask", x, y)
		}
	}
}

func TestCompositeNeverMutatesInputs(t *testing.T) {
	src := gradientImage(5, 5)
	srcCopy := gradientImage(5, 5)
	m := mask.New(5, 5)
	m.Fill(77)
	mCopy := m.Clone()

	_, err := Composite(src, m)
	require.NoError(t, err)
	assert.Equal(t, srcCopy.Pix, src.Pix)
	assert.True(t, m.Equal(mCopy))
}

func TestCompositeDimensionMismatch(t *testing.T) {
	src := gradientImage(4, 4)
	_, err := Composite(src, mask.New(4, 5))
	require.Error(t, err)
}

func TestPreviewDownsamplesLongEdge(t *testing.T) {
	src := gradientImage(64, 32)
	m := mask.New(64, 32)
	m.Fill(255)

	small, err := Preview(src, m, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, small.Bounds().Dx())
	assert.Equal(t, 8, small.Bounds().Dy())
}

func TestPreviewKeepsFullResolutionWhenSmallEnough(t *testing.T) {
	src := gradientImage(10, 8)
	m := mask.New(10, 8)

	out, err := Preview(src, m, 32)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 8, out.Bounds().Dy())

	out, err = Preview(src, m, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Bounds().Dx())
}

func TestThumbnailFitsBounds(t *testing.T) {
	img := gradientImage(40, 20)
	thumb := Thumbnail(img, 10, 10)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 10)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 10)
}
