// Package config holds the YAML-loadable tunables for the analysis
// pipeline: chunking thresholds and preference-learning knobs. All fields
// default to sensible values; a config file only needs to override what
// it wants to change.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of tunables, loaded from YAML with defaults
// applied first.
type Config struct {
	Chunking     Chunking   `yaml:"chunking"`
	Preference   Preference `yaml:"preference"`
	ModelVersion string     `yaml:"modelVersion"`
}

// Chunking controls the chunked driver's partitioning.
type Chunking struct {
	MaxNotesPerChunk    int `yaml:"maxNotesPerChunk"`
	MaxMeasuresPerChunk int `yaml:"maxMeasuresPerChunk"`
	OverlapMeasures     int `yaml:"overlapMeasures"`
}

// Preference controls the weighted-KNN preference learner's recency decay
// and the minimum buffered examples before it produces recommendations.
type Preference struct {
	RecencyDecayPerMinute float64 `yaml:"recencyDecayPerMinute"`
	MinExamples           int     `yaml:"minExamplesForRecommendation"`
}

// Default returns the built-in default configuration.
func Default() Config {
	return Config{
		Chunking: Chunking{
			MaxNotesPerChunk:    1000,
			MaxMeasuresPerChunk: 32,
			OverlapMeasures:     4,
		},
		Preference: Preference{
			RecencyDecayPerMinute: 0.95,
			MinExamples:           2,
		},
		ModelVersion: "scorelens-1",
	}
}

// Load reads a YAML file at path, overriding the defaults with whatever
// keys it sets. A missing file is not an error: it returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
