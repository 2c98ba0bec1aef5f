package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TUNING_FILE", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), cfg.Tuning)
	assert.Equal(t, []string{"json"}, cfg.Watch.Extensions)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
header_similarity_threshold: 0.8
max_removable_fraction: 0.25
weights:
  semantic: 0.5
  business_logic: 0.3
  density: 0.15
  position: 0.05
`), 0o600))

	t.Setenv("TUNING_FILE", path)
	t.Setenv("MAX_REMOVABLE_FRACTION", "0.2")
	t.Setenv("WATCH_DIRS", " /a, ,/b ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Tuning.HeaderSimilarityThreshold)
	assert.Equal(t, 0.2, cfg.Tuning.MaxRemovableFraction)
	assert.Equal(t, 0.75, cfg.Tuning.SummaryConfidenceThreshold, "keys missing from the file keep defaults")
	assert.Equal(t, 0.5, cfg.Tuning.Weights.Semantic)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Watch.Dirs)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigWithTuningFile_EnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_header_ratio: 0.6
max_removable_fraction: 0.25
minimum_remaining_rows: 5
`), 0o600))

	t.Setenv("TUNING_FILE", "")
	t.Setenv("DATA_HEADER_RATIO", "0.4")
	t.Setenv("MAX_REMOVABLE_FRACTION", "0.2")

	cfg, err := LoadConfigWithTuningFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.Tuning.DataHeaderRatio)
	assert.Equal(t, 0.2, cfg.Tuning.MaxRemovableFraction)
	assert.Equal(t, 5, cfg.Tuning.MinimumRemainingRows, "file values apply where env is unset")
}

func TestLoadConfigWithTuningFile_OverridesTuningFileEnv(t *testing.T) {
	dir := t.TempDir()
	fromEnv := filepath.Join(dir, "env.yaml")
	fromFlag := filepath.Join(dir, "flag.yaml")
	require.NoError(t, os.WriteFile(fromEnv, []byte("minimum_remaining_rows: 4\n"), 0o600))
	require.NoError(t, os.WriteFile(fromFlag, []byte("minimum_remaining_rows: 6\n"), 0o600))
	t.Setenv("TUNING_FILE", fromEnv)

	cfg, err := LoadConfigWithTuningFile(fromFlag)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Tuning.MinimumRemainingRows)

	cfg, err = LoadConfigWithTuningFile("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Tuning.MinimumRemainingRows)
}

func TestLoadConfig_BadTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights: [1, 2"), 0o600))
	t.Setenv("TUNING_FILE", path)

	_, err := LoadConfig()
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeConfig, appErr.Code)
}

func TestTuningConfig_Validate(t *testing.T) {
	tu := DefaultTuning()
	tu.MaxRemovableFraction = 1.5
	tu.Weights.Position = 0.5
	err := tu.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "max_removable_fraction")
	assert.Contains(t, err.Error(), "weights")
}

func TestConfig_ValidateDaemon(t *testing.T) {
	cfg := &Config{Tuning: DefaultTuning(), Server: ServerConfig{GRPCAddr: ":0", Workers: 1, QueueSize: 1}}
	err := cfg.ValidateDaemon()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATCH_DIRS")

	cfg.Watch.Dirs = []string{"/tmp"}
	assert.NoError(t, cfg.ValidateDaemon())
}
