package segment

import (
	"fmt"
	"runtime"
)

// Config holds the ONNX runtime and model parameters for the human
// segmentation engine.
type Config struct {
	// OnnxRuntimeLibPath is the path to the onnxruntime shared library.
	OnnxRuntimeLibPath string
	// ModelPath is the path to the segmentation .onnx model.
	ModelPath string
	// InputSize is the square model input edge in pixels.
	InputSize int
	// NumThreads limits ONNX intra-op threads; 0 lets the runtime decide.
	NumThreads int
	// Normalize applies ImageNet mean/std normalization during preprocess.
	// Models trained on raw [0,1] input leave it off.
	Normalize bool
	// RefineMask runs the edge refinement pass over the raw model output.
	RefineMask bool
}

// ImageNet normalization constants used by the training pipeline.
var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

const defaultInputSize = 224

func (c *Config) validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model path is empty")
	}
	if c.OnnxRuntimeLibPath == "" {
		return fmt.Errorf("onnxruntime library path is empty")
	}
	if c.InputSize <= 0 {
		c.InputSize = defaultInputSize
	}
	return nil
}

// DefaultLibraryPath guesses the bundled onnxruntime shared library name for
// the current platform.
func DefaultLibraryPath() string {
	const baseDir = "./lib/"
	switch runtime.GOOS {
	case "windows":
		return baseDir + "onnxruntime.dll"
	case "darwin":
		return fmt.Sprintf("%sonnxruntime_%s.dylib", baseDir, runtime.GOARCH)
	default:
		return fmt.Sprintf("%sonnxruntime_%s.so", baseDir, runtime.GOARCH)
	}
}
