// Package config reads model and evaluation settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/rohansaphal97/rmllib/rnb"
	"gopkg.in/yaml.v3"
)

// Config is the file layout of rmllib.yaml.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Evaluate EvaluateConfig `yaml:"evaluate"`
	Dataset  DatasetConfig  `yaml:"dataset"`
}

// ModelConfig holds the model options by name; see rnb.Config.
type ModelConfig struct {
	LearnMethod         string  `yaml:"learn_method"`
	InferMethod         string  `yaml:"infer_method"`
	Calibrate           bool    `yaml:"calibrate"`
	UnlabeledConfidence float64 `yaml:"unlabeled_confidence"`
	Smoothing           float64 `yaml:"smoothing"`
}

// EvaluateConfig holds cross-validation settings.
type EvaluateConfig struct {
	Folds int `yaml:"folds"`
}

// DatasetConfig controls how datasets are loaded.
type DatasetConfig struct {
	Symmetric bool `yaml:"symmetric"`
}

// DefaultConfig returns the independent model with 10-fold evaluation and
// directed edges.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			LearnMethod:         rnb.Independent.String(),
			InferMethod:         rnb.Independent.String(),
			UnlabeledConfidence: 1.0,
		},
		Evaluate: EvaluateConfig{
			Folds: 10,
		},
	}
}

// Load reads path over the defaults; keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the model section to validated rnb options.
func (m ModelConfig) Options() (rnb.Config, error) {
	learn, err := rnb.ParseMethod(m.LearnMethod)
	if err != nil {
		return rnb.Config{}, fmt.Errorf("learn_method: %w", err)
	}
	infer, err := rnb.ParseMethod(m.InferMethod)
	if err != nil {
		return rnb.Config{}, fmt.Errorf("infer_method: %w", err)
	}
	cfg := rnb.Config{
		LearnMethod:         learn,
		InferMethod:         infer,
		Calibrate:           m.Calibrate,
		UnlabeledConfidence: m.UnlabeledConfidence,
		Smoothing:           m.Smoothing,
	}
	if err := cfg.Validate(); err != nil {
		return rnb.Config{}, err
	}
	return cfg, nil
}
