// Package models defines data structures for configuration, telemetry and
// classification.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OptimizeConfig holds runtime configuration for a single optimize pass.
// Values come from CLI flags, optionally seeded from a YAML config file.
type OptimizeConfig struct {
	PageURL       string `yaml:"page_url"`
	HTMLPath      string `yaml:"html"`
	TelemetryPath string `yaml:"telemetry"`
	AuditsPath    string `yaml:"audits"`
	BlockingPath  string `yaml:"blocking"`
	SourceDir     string `yaml:"source_dir"`
	DestDir       string `yaml:"dest_dir"`
	OutputPath    string `yaml:"output"`
	WorkerCount   int    `yaml:"workers"`
}

// LoadConfig reads an OptimizeConfig from a YAML file.
func LoadConfig(path string) (*OptimizeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config OptimizeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}
