package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultRFid, cfg.Fidelity.RFid)
	assert.Equal(t, DefaultSamplesNumber, cfg.Fidelity.SamplesNumber)
	assert.Equal(t, 4, cfg.Fidelity.Concurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		category fairerrors.ErrorCategory
	}{
		{"zero r_fid", func(c *Config) { c.Fidelity.RFid = 0 }, fairerrors.ErrCategoryValue},
		{"negative r_fid", func(c *Config) { c.Fidelity.RFid = -0.5 }, fairerrors.ErrCategoryValue},
		{"zero samples", func(c *Config) { c.Fidelity.SamplesNumber = 0 }, fairerrors.ErrCategoryValue},
		{"zero concurrency", func(c *Config) { c.Fidelity.Concurrency = 0 }, fairerrors.ErrCategoryValue},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, fairerrors.ErrCategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.category, fairerrors.GetCategory(err))
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "fairlens.yaml", `
fidelity:
  r_fid: 0.1
  samples_number: 25
  seed: 7
discretization:
  categorical: [a, b]
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Fidelity.RFid)
	assert.Equal(t, 25, cfg.Fidelity.SamplesNumber)
	assert.Equal(t, int64(7), cfg.Fidelity.Seed)
	assert.Equal(t, 4, cfg.Fidelity.Concurrency, "unset values keep their defaults")
	assert.Equal(t, []string{"a", "b"}, cfg.Discretization.Categorical)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_YAMLWrongKinds(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"integer r_fid", "fidelity:\n  r_fid: 1\n", msgRFidKind},
		{"string r_fid", "fidelity:\n  r_fid: wide\n", msgRFidKind},
		{"float samples", "fidelity:\n  samples_number: 5.0\n", msgSamplesKind},
		{"string samples", "fidelity:\n  samples_number: many\n", msgSamplesKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeFile(t, "fairlens.yml", tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, fairerrors.ErrWrongKind))
			assert.Equal(t, tt.message, fairerrors.GetMessage(err))
		})
	}
}

func TestLoadFromFile_RangeIsCheckedByValidate(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "fairlens.yaml", "fidelity:\n  r_fid: -0.5\n  samples_number: 0\n"))
	require.NoError(t, err)

	err = cfg.Validate()
	assert.True(t, errors.Is(err, fairerrors.ErrOutOfRange))
}

func TestLoadFromFile_JSON(t *testing.T) {
	cfg, err := LoadFromFile(writeFile(t, "fairlens.json",
		`{"fidelity": {"r_fid": 0.2, "samples_number": 10}, "logging": {"development": true}}`))
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Fidelity.RFid)
	assert.Equal(t, 10, cfg.Fidelity.SamplesNumber)
	assert.True(t, cfg.Logging.Development)

	_, err = LoadFromFile(writeFile(t, "fairlens.json", `{"fidelity": {"r_fid": 1}}`))
	assert.True(t, errors.Is(err, fairerrors.ErrWrongKind))
	assert.Equal(t, msgRFidKind, fairerrors.GetMessage(err))

	_, err = LoadFromFile(writeFile(t, "fairlens.json", `{"fidelity": {"samples_number": 2.5}}`))
	assert.True(t, errors.Is(err, fairerrors.ErrWrongKind))
	assert.Equal(t, msgSamplesKind, fairerrors.GetMessage(err))
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, fairerrors.ErrCategoryIO, fairerrors.GetCategory(err))

	_, err = LoadFromFile(writeFile(t, "fairlens.toml", "r_fid = 0.1"))
	assert.Equal(t, fairerrors.ErrCategoryConfig, fairerrors.GetCategory(err))

	_, err = LoadFromFile(writeFile(t, "fairlens.yaml", "fidelity: [unclosed"))
	assert.Equal(t, fairerrors.ErrCategoryConfig, fairerrors.GetCategory(err))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FAIRLENS_R_FID", "0.25")
	t.Setenv("FAIRLENS_SAMPLES_NUMBER", "12")
	t.Setenv("FAIRLENS_SEED", "42")
	t.Setenv("FAIRLENS_CONCURRENCY", "2")
	t.Setenv("FAIRLENS_CATEGORICAL", "0,3")
	t.Setenv("FAIRLENS_LOG_LEVEL", "warn")
	t.Setenv("FAIRLENS_LOG_DEVELOPMENT", "true")

	cfg := DefaultConfig()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, 0.25, cfg.Fidelity.RFid)
	assert.Equal(t, 12, cfg.Fidelity.SamplesNumber)
	assert.Equal(t, int64(42), cfg.Fidelity.Seed)
	assert.Equal(t, 2, cfg.Fidelity.Concurrency)
	assert.Equal(t, []string{"0", "3"}, cfg.Discretization.Categorical)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadFromEnv_WrongKinds(t *testing.T) {
	t.Setenv("FAIRLENS_SAMPLES_NUMBER", "5.5")
	err := LoadFromEnv(DefaultConfig())
	assert.True(t, errors.Is(err, fairerrors.ErrWrongKind))

	t.Setenv("FAIRLENS_SAMPLES_NUMBER", "")
	t.Setenv("FAIRLENS_SEED", "soon")
	err = LoadFromEnv(DefaultConfig())
	assert.Equal(t, fairerrors.ErrCategoryConfig, fairerrors.GetCategory(err))
}

func TestLoadFromEnv_RFidMustBeFloatLiteral(t *testing.T) {
	for _, v := range []string{"1", "5", "wide"} {
		t.Setenv("FAIRLENS_R_FID", v)
		err := LoadFromEnv(DefaultConfig())
		assert.True(t, errors.Is(err, fairerrors.ErrWrongKind), "value %q", v)
		assert.Equal(t, msgRFidKind, fairerrors.GetMessage(err))
	}

	for v, want := range map[string]float64{"1.0": 1, "0.05": 0.05, "5e-2": 0.05} {
		t.Setenv("FAIRLENS_R_FID", v)
		cfg := DefaultConfig()
		require.NoError(t, LoadFromEnv(cfg), "value %q", v)
		assert.Equal(t, want, cfg.Fidelity.RFid)
	}
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")), "a missing file is skipped")

	t.Setenv("FAIRLENS_R_FID", "")
	require.NoError(t, os.Unsetenv("FAIRLENS_R_FID"))
	path := writeFile(t, ".env", "FAIRLENS_R_FID=0.3\n")
	require.NoError(t, LoadDotEnv(path))

	cfg := DefaultConfig()
	require.NoError(t, LoadFromEnv(cfg))
	assert.Equal(t, 0.3, cfg.Fidelity.RFid)
}

func TestCategoricalIndices(t *testing.T) {
	d := DiscretizationConfig{Categorical: []string{"0", " 2"}}
	ids, err := d.CategoricalIndices(false)
	require.NoError(t, err)
	assert.Equal(t, array.Positions(0, 2), ids)

	d = DiscretizationConfig{Categorical: []string{"a", "b"}}
	ids, err = d.CategoricalIndices(true)
	require.NoError(t, err)
	assert.Equal(t, array.Names("a", "b"), ids)

	_, err = d.CategoricalIndices(false)
	assert.Equal(t, fairerrors.ErrCategoryConfig, fairerrors.GetCategory(err))

	ids, err = DiscretizationConfig{}.CategoricalIndices(false)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestNewLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "debug", Development: true}.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = LoggingConfig{Level: "nope"}.NewLogger()
	assert.Error(t, err)
}
