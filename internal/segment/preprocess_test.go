package segment

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNCHWLayout(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 0, G: 0, B: 255, A: 255})

	data := normalizeNCHW(img, false)
	require.Len(t, data, 12)

	// Red plane first, then green, then blue.
	assert.InDelta(t, 1.0, data[0], 1e-6)
	assert.InDelta(t, 0.0, data[4], 1e-6)
	assert.InDelta(t, 1.0, data[2*4+3], 1e-6, "blue of pixel (1,1) lands at the end of the blue plane")
}

func TestNormalizeNCHWImageNet(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	data := normalizeNCHW(img, true)
	require.Len(t, data, 3)
	assert.InDelta(t, (1.0-0.485)/0.229, data[0], 1e-5)
	assert.InDelta(t, (1.0-0.456)/0.224, data[1], 1e-5)
	assert.InDelta(t, (1.0-0.406)/0.225, data[2], 1e-5)
}

func TestResizeBilinearDimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 60))
	out := resizeBilinear(img, 224, 224)
	assert.Equal(t, 224, out.Bounds().Dx())
	assert.Equal(t, 224, out.Bounds().Dy())
}

func TestProbsToGrayClips(t *testing.T) {
	probs := []float32{-0.5, 0, 0.5, 1, 1.5}
	g := probsToGray(append(probs, make([]float32, 4)...), 3)
	assert.Equal(t, uint8(0), g.Pix[0])
	assert.Equal(t, uint8(0), g.Pix[1])
	assert.Equal(t, uint8(127), g.Pix[2])
	assert.Equal(t, uint8(255), g.Pix[3])
	assert.Equal(t, uint8(255), g.Pix[4])
}

func TestUpscaleGrayDimensions(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 224, 224))
	out := upscaleGray(src, 1000, 700)
	assert.Equal(t, 1000, out.Bounds().Dx())
	assert.Equal(t, 700, out.Bounds().Dy())
}

func TestConfigValidation(t *testing.T) {
	cfg := Config{}
	require.Error(t, cfg.validate())

	cfg = Config{ModelPath: "model.onnx"}
	require.Error(t, cfg.validate())

	cfg = Config{ModelPath: "model.onnx", OnnxRuntimeLibPath: "lib.so"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, defaultInputSize, cfg.InputSize)
}

func TestNewEngineMissingModel(t *testing.T) {
	_, err := NewEngine(Config{
		ModelPath:          "does-not-exist.onnx",
		OnnxRuntimeLibPath: "lib.so",
	}, nil)
	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "load", modelErr.Stage)
}
