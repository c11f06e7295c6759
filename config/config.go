// Package config loads spagbol settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spagbol-team/spagbol/codec"
)

var (
	ErrInvalidPartitionSize = errors.New("config: partition_size must be positive")
	ErrInvalidBatchSize     = errors.New("config: batch_size must be positive")
	ErrUnknownCodec         = errors.New("config: unknown codec")
	ErrUnknownLogLevel      = errors.New("config: unknown log_level")
	ErrUnknownLogFormat     = errors.New("config: unknown log_format")
)

type Config struct {
	DataDir            string `yaml:"data_dir"`
	PartitionSize      int    `yaml:"partition_size"`
	Codec              string `yaml:"codec"`
	BatchSize          int    `yaml:"batch_size"`
	EmbeddingBatchSize int    `yaml:"embedding_batch_size"`
	Method             string `yaml:"method"`
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		DataDir:            "./data",
		PartitionSize:      1000,
		Codec:              "json",
		BatchSize:          100,
		EmbeddingBatchSize: 200,
		Method:             "incremental",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PartitionSize <= 0 {
		return ErrInvalidPartitionSize
	}
	if c.BatchSize <= 0 || c.EmbeddingBatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownCodec, c.Codec, strings.Join(codec.Names(), ", "))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.LogLevel)
	}
	return lvl, nil
}

// PartitionCodec returns the codec named by Codec.
func (c *Config) PartitionCodec() codec.Codec {
	cc, ok := codec.ByName(c.Codec)
	if !ok {
		return codec.Default
	}
	return cc
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
