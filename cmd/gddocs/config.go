package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors gddocs.yaml, the optional per-project configuration
// file. Command line flags take precedence over it.
type fileConfig struct {
	Project         string `yaml:"project"`
	Output          string `yaml:"output"`
	Template        string `yaml:"template"`
	ScriptTemplates string `yaml:"script_templates"`
	NamedOnly       bool   `yaml:"named_only"`
	Serve           struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"serve"`
}

const configFileName = "gddocs.yaml"

// loadFileConfig reads gddocs.yaml from dir. A missing file is not an error;
// a malformed one is.
func loadFileConfig(dir string) (*fileConfig, error) {
	cfg := &fileConfig{}
	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configFileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFileName, err)
	}
	return cfg, nil
}
