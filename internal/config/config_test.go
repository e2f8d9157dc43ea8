package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := `
[model]
path = "custom.onnx"
input_size = 320
normalize = false

[brush]
radius = 12.5
hardness = 0.4

[history]
max_entries = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.onnx", cfg.Model.Path)
	assert.Equal(t, 320, cfg.Model.InputSize)
	assert.False(t, cfg.Model.Normalize)
	assert.Equal(t, 12.5, cfg.Brush.Radius)
	assert.Equal(t, 0.4, cfg.Brush.Hardness)
	assert.Equal(t, 8, cfg.History.MaxEntries)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().History.MaxBytes, cfg.History.MaxBytes)
	assert.Equal(t, Default().Preview.MaxDimension, cfg.Preview.MaxDimension)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[brush]\nhardness = 3.0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("model = {"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateBounds(t *testing.T) {
	cfg := Default()
	cfg.History.MaxEntries = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Brush.Radius = -1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Model.InputSize = 0
	require.Error(t, cfg.Validate())
}
