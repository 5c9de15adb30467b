// Package config handles engine configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tanhaei/nspr/internal/scoring"
)

// ConfigFile is the configuration file name under the dataset directory.
const ConfigFile = "nspr.yml"

// Defaults.
const (
	DefaultMaxHops     = 4
	DefaultTemperature = 1.0
	DefaultTopK        = 3
	DefaultTopPaths    = 3
	DefaultMaxPaths    = 10000
)

// Config is the engine configuration read from nspr.yml.
type Config struct {
	// MaxHops bounds path length in edges. The branching factor of the
	// graph makes this the main safeguard against unbounded traversal.
	MaxHops int `yaml:"max_hops"`

	// Temperature is the softmax temperature for path weights.
	Temperature float64 `yaml:"temperature"`

	// TopK caps the number of doctors returned; 0 returns all.
	TopK int `yaml:"top_k"`

	// TopPaths caps the per-doctor provenance paths kept in the result.
	TopPaths int `yaml:"top_paths"`

	// Combine selects product or weighted-sum constraint combination.
	Combine scoring.CombineMode `yaml:"combine"`

	// Weights are the weighted-sum dimension weights.
	Weights scoring.Weights `yaml:"weights"`

	// MaxPaths caps total accepted paths per query; 0 means unlimited.
	MaxPaths int `yaml:"max_paths"`

	// MaxDoctors caps candidate doctors per query; 0 means unlimited.
	MaxDoctors int `yaml:"max_doctors"`

	// MissingEmbedding is the policy for paths lacking vectors.
	MissingEmbedding scoring.MissingPolicy `yaml:"missing_embedding"`

	// FilterZeroScores drops zero-scored doctors from results instead of
	// ranking them last.
	FilterZeroScores bool `yaml:"filter_zero_scores"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MaxHops:          DefaultMaxHops,
		Temperature:      DefaultTemperature,
		TopK:             DefaultTopK,
		TopPaths:         DefaultTopPaths,
		Combine:          scoring.CombineProduct,
		Weights:          scoring.DefaultWeights(),
		MaxPaths:         DefaultMaxPaths,
		MissingEmbedding: scoring.SkipPath,
	}
}

// Path returns the config file path under a dataset directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// Load reads configuration from the dataset directory, applying defaults
// for absent fields. A missing file is not an error; defaults apply.
func Load(dataDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validation errors.
var (
	ErrBadMaxHops     = errors.New("max_hops must be positive")
	ErrBadTemperature = errors.New("temperature must be positive")
	ErrBadCombine     = errors.New("combine must be \"product\" or \"weighted-sum\"")
	ErrBadPolicy      = errors.New("missing_embedding must be \"skip\" or \"fail\"")
)

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.MaxHops < 1 {
		return ErrBadMaxHops
	}
	if c.Temperature <= 0 {
		return ErrBadTemperature
	}
	switch c.Combine {
	case scoring.CombineProduct, scoring.CombineWeightedSum:
	default:
		return ErrBadCombine
	}
	switch c.MissingEmbedding {
	case scoring.SkipPath, scoring.FailQuery:
	default:
		return ErrBadPolicy
	}
	return nil
}
