package config

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Path:      "models/human_segmentation.onnx",
			InputSize: 224,
			Normalize: true,
			Refine:    true,
		},
		History: HistoryConfig{
			MaxEntries: 64,
			MaxBytes:   256 << 20,
		},
		Brush: BrushConfig{
			Radius:   24,
			Hardness: 0.8,
		},
		Preview: PreviewConfig{
			MaxDimension: 2048,
		},
	}
}
