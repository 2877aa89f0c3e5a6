package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//
// Settings read from the YAML config file.  Command line flags are
// applied on top
//

type config struct {
	ZoneWidth     int    `yaml:"zone_width"`
	MaxStackDepth int    `yaml:"max_stack_depth"`
	Summaries     bool   `yaml:"summaries"`
	Stats         bool   `yaml:"stats"`
	Dump          bool   `yaml:"dump"`
	LogLevel      string `yaml:"log_level"`
	Breakpoints   []int  `yaml:"breakpoints"`
}

func defaultConfig() config {

	return config{
		MaxStackDepth: 500,
		Summaries:     true,
		LogLevel:      "error",
	}
}

func defaultConfigPath() string {

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, defaultConfigFile)
}

//
// loadConfig reads path over the defaults.  A missing file is only an
// error if the user named it
//

func loadConfig(path string, explicit bool) (config, error) {

	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.MaxStackDepth <= 0 {
		return cfg, fmt.Errorf("%s: max_stack_depth must be positive", path)
	}

	return cfg, nil
}
