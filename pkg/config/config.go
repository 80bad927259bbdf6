// Package config holds all configuration options for crosscheck.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for crosscheck.
type Config struct {
	Engine  EngineConfig  `koanf:"engine" validate:"required"`
	Risk    RiskConfig    `koanf:"risk" validate:"required"`
	JPlag   JPlagConfig   `koanf:"jplag"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// EngineConfig controls report assembly.
type EngineConfig struct {
	// Workers bounds concurrent fragment parsing. 0 means one worker
	// per fragment.
	Workers int `koanf:"workers" validate:"gte=0"`
	// HistogramBuckets sizes the derived similarity histogram.
	HistogramBuckets int `koanf:"histogram_buckets" validate:"gte=1"`
}

// RiskConfig defines cluster risk classification thresholds. A cluster
// whose average similarity exceeds High is classified high risk, above
// Medium is medium risk, anything else low.
type RiskConfig struct {
	High   float64 `koanf:"high" validate:"gte=0,lte=1,gtfield=Medium"`
	Medium float64 `koanf:"medium" validate:"gte=0,lte=1"`
}

// JPlagConfig locates and tunes the external analyzer.
type JPlagConfig struct {
	JarPath             string  `koanf:"jar_path"`
	JavaBin             string  `koanf:"java_bin"`
	MinTokens           int     `koanf:"min_tokens" validate:"gte=1"`
	SimilarityThreshold float64 `koanf:"similarity_threshold" validate:"gte=0,lte=1"`
	ClusterAlgorithm    string  `koanf:"cluster_algorithm"`
	Normalize           bool    `koanf:"normalize"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers:          0,
			HistogramBuckets: 10,
		},
		Risk: RiskConfig{
			High:   0.8,
			Medium: 0.5,
		},
		JPlag: JPlagConfig{
			JavaBin:             "java",
			MinTokens:           9,
			SimilarityThreshold: 0.0,
			ClusterAlgorithm:    "spectral",
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load loads configuration from a file, layered over defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks threshold and tuning invariants.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
