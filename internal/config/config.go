// Package config handles configuration loading and validation for the
// editor application.
package config

// Config holds the complete application configuration.
type Config struct {
	Model   ModelConfig   `toml:"model"`
	History HistoryConfig `toml:"history"`
	Brush   BrushConfig   `toml:"brush"`
	Preview PreviewConfig `toml:"preview"`
}

// ModelConfig locates the segmentation model and runtime.
type ModelConfig struct {
	// LibraryPath is the onnxruntime shared library; empty picks the
	// platform default next to the binary.
	LibraryPath string `toml:"library_path"`
	// Path is the segmentation .onnx model file.
	Path string `toml:"path"`
	// InputSize is the square model input edge in pixels.
	InputSize int `toml:"input_size"`
	// NumThreads bounds ONNX intra-op threads; 0 lets the runtime decide.
	NumThreads int `toml:"num_threads"`
	// Normalize applies ImageNet mean/std normalization in preprocess.
	Normalize bool `toml:"normalize"`
	// Refine runs the edge refinement pass over the raw model mask.
	Refine bool `toml:"refine"`
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	// MaxEntries is the maximum number of undoable entries.
	MaxEntries int `toml:"max_entries"`
	// MaxBytes bounds the total retained before/after plane data.
	MaxBytes int `toml:"max_bytes"`
}

// BrushConfig sets the initial brush parameters.
type BrushConfig struct {
	// Radius is the default brush radius in image pixels.
	Radius float64 `toml:"radius"`
	// Hardness is the default edge hardness in [0,1].
	Hardness float64 `toml:"hardness"`
}

// PreviewConfig controls display rendering.
type PreviewConfig struct {
	// MaxDimension caps the long edge of the live preview; 0 disables
	// downsampling. Export always renders at full resolution.
	MaxDimension int `toml:"max_dimension"`
}
