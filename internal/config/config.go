// Package config provides configuration for fairlens scoring and
// discretization runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

// Default fidelity parameters.
const (
	DefaultRFid          = 0.05
	DefaultSamplesNumber = 50
)

// Config holds the configuration of a fairlens run.
type Config struct {
	// Fidelity configures local fidelity scoring
	Fidelity FidelityConfig `json:"fidelity" yaml:"fidelity"`

	// Discretization configures discretizer construction
	Discretization DiscretizationConfig `json:"discretization" yaml:"discretization"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// FidelityConfig holds local fidelity scoring parameters.
type FidelityConfig struct {
	// RFid is the sampling radius as a fraction of the largest distance
	// between the explained row and the dataset (must be a float > 0)
	RFid float64 `json:"r_fid" yaml:"r_fid"`

	// SamplesNumber is the size of the sampled neighbourhood (integer >= 1)
	SamplesNumber int `json:"samples_number" yaml:"samples_number"`

	// Seed makes sampling reproducible; 0 draws a fresh seed per run
	Seed int64 `json:"seed" yaml:"seed"`

	// Concurrency is the number of rows scored in parallel
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DiscretizationConfig holds discretizer parameters.
type DiscretizationConfig struct {
	// Categorical lists categorical columns: positions for plain datasets,
	// field names for structured ones
	Categorical []string `json:"categorical" yaml:"categorical"`
}

// LoggingConfig holds logger parameters.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" yaml:"level"`

	// Development switches to the human friendly console encoder
	Development bool `json:"development" yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Fidelity: FidelityConfig{
			RFid:          DefaultRFid,
			SamplesNumber: DefaultSamplesNumber,
			Concurrency:   4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Fidelity.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Validate checks the local fidelity settings. Only commands that score
// rows need them.
func (f FidelityConfig) Validate() error {
	if !(f.RFid > 0) {
		return fairerrors.NewValueError(fmt.Sprintf("fidelity.r_fid must be a positive float, got %v", f.RFid))
	}
	if f.SamplesNumber < 1 {
		return fairerrors.NewValueError(fmt.Sprintf("fidelity.samples_number must be a positive integer, got %d", f.SamplesNumber))
	}
	if f.Concurrency < 1 {
		return fairerrors.NewValueError(fmt.Sprintf("fidelity.concurrency must be at least 1, got %d", f.Concurrency))
	}
	return nil
}

// Validate checks the logging settings.
func (l LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fairerrors.NewConfigError(fairerrors.CodeInvalidConfig,
			fmt.Sprintf("invalid logging.level %q (must be debug, info, warn or error)", l.Level), err)
	}
	return nil
}

// CategoricalIndices converts the configured categorical columns into
// identifiers for a plain or a structured dataset.
func (d DiscretizationConfig) CategoricalIndices(structured bool) ([]array.ColumnID, error) {
	if len(d.Categorical) == 0 {
		return nil, nil
	}
	ids := make([]array.ColumnID, 0, len(d.Categorical))
	for _, c := range d.Categorical {
		if structured {
			ids = append(ids, array.Name(c))
			continue
		}
		p, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return nil, fairerrors.NewConfigError(fairerrors.CodeInvalidConfig,
				fmt.Sprintf("categorical column %q must be an integer position for plain datasets", c), err)
		}
		ids = append(ids, array.Position(p))
	}
	return ids, nil
}

// NewLogger builds a zap logger from the logging configuration.
func (l LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// LoadFromFile loads configuration from a YAML or JSON file. Fidelity
// parameters must be written with the right kind: r_fid as a float and
// samples_number as an integer.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fairerrors.NewIOError("failed to read config file", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := checkYAMLKinds(data); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fairerrors.NewConfigError(fairerrors.CodeInvalidConfig, "failed to parse YAML config", err)
		}
	case ".json":
		if err := checkJSONKinds(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fairerrors.NewConfigError(fairerrors.CodeInvalidConfig, "failed to parse JSON config", err)
		}
	default:
		return nil, fairerrors.NewConfigError(fairerrors.CodeInvalidConfig,
			fmt.Sprintf("unsupported config file format: %s", ext), nil)
	}

	return cfg, nil
}

const (
	msgRFidKind    = "r_fid must be a float."
	msgSamplesKind = "samples_number must be an integer."
)

func checkYAMLKinds(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fairerrors.NewConfigError(fairerrors.CodeInvalidConfig, "failed to parse YAML config", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	fidelity := mappingValue(doc.Content[0], "fidelity")
	if fidelity == nil {
		return nil
	}
	if n := mappingValue(fidelity, "r_fid"); n != nil && n.ShortTag() != "!!float" {
		return fairerrors.NewTypeError(fairerrors.CodeWrongKind, msgRFidKind)
	}
	if n := mappingValue(fidelity, "samples_number"); n != nil && n.ShortTag() != "!!int" {
		return fairerrors.NewTypeError(fairerrors.CodeWrongKind, msgSamplesKind)
	}
	return nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func checkJSONKinds(data []byte) error {
	var doc struct {
		Fidelity map[string]json.RawMessage `json:"fidelity"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fairerrors.NewConfigError(fairerrors.CodeInvalidConfig, "failed to parse JSON config", err)
	}
	if raw, ok := doc.Fidelity["r_fid"]; ok {
		if _, err := parseFloatLiteral(string(raw)); err != nil {
			return err
		}
	}
	if raw, ok := doc.Fidelity["samples_number"]; ok {
		if _, err := strconv.Atoi(strings.TrimSpace(string(raw))); err != nil {
			return fairerrors.NewTypeError(fairerrors.CodeWrongKind, msgSamplesKind)
		}
	}
	return nil
}

// parseFloatLiteral parses v as r_fid. Integer literals are rejected so that
// every configuration source agrees on the kind of the value.
func parseFloatLiteral(v string) (float64, error) {
	v = strings.TrimSpace(v)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !strings.ContainsAny(v, ".eE") {
		return 0, fairerrors.NewTypeError(fairerrors.CodeWrongKind, msgRFidKind)
	}
	return f, nil
}

// LoadDotEnv loads environment variables from a .env file if it exists.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fairerrors.NewIOError("failed to load env file", err)
	}
	return nil
}

// LoadFromEnv applies environment variables on top of cfg.
// Environment variables use the FAIRLENS_ prefix.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("FAIRLENS_R_FID"); v != "" {
		f, err := parseFloatLiteral(v)
		if err != nil {
			return err
		}
		cfg.Fidelity.RFid = f
	}
	if v := os.Getenv("FAIRLENS_SAMPLES_NUMBER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fairerrors.NewTypeError(fairerrors.CodeWrongKind, msgSamplesKind)
		}
		cfg.Fidelity.SamplesNumber = n
	}
	if v := os.Getenv("FAIRLENS_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fairerrors.NewConfigError(fairerrors.CodeInvalidConfig, "FAIRLENS_SEED must be an integer", err)
		}
		cfg.Fidelity.Seed = n
	}
	if v := os.Getenv("FAIRLENS_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fairerrors.NewConfigError(fairerrors.CodeInvalidConfig, "FAIRLENS_CONCURRENCY must be an integer", err)
		}
		cfg.Fidelity.Concurrency = n
	}
	if v := os.Getenv("FAIRLENS_CATEGORICAL"); v != "" {
		cfg.Discretization.Categorical = strings.Split(v, ",")
	}
	if v := os.Getenv("FAIRLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FAIRLENS_LOG_DEVELOPMENT"); v != "" {
		cfg.Logging.Development = v == "true" || v == "1"
	}
	return nil
}
