// Package config loads the defaults of the command line tool from a YAML
// file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the path of the config file.
const EnvVar = "JSONSCRIPT_CONFIG"

// Config holds the settings that can be given in the config file.  Flags
// given on the command line take precedence.
type Config struct {
	In          string `yaml:"in"`
	CSVHeader   string `yaml:"csv_header"`
	SplitArrays bool   `yaml:"split_arrays"`
	Indent      int    `yaml:"indent"`
	Color       string `yaml:"color"`
	Verbose     bool   `yaml:"verbose"`
}

// Default returns the configuration used when there is no config file.
func Default() *Config {
	return &Config{In: "json", Color: "auto"}
}

// Load reads the config file.  The file is path if not empty, else the value
// of EnvVar, else config.yaml in the user config directory.  Only that last
// file may be missing.
func Load(path string, env map[string]string) (*Config, error) {
	optional := false
	if path == "" {
		path = env[EnvVar]
	}
	if path == "" {
		path = defaultPath(env)
		optional = true
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses a config file.  Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values of the enumerated settings.
func (c *Config) Validate() error {
	switch c.In {
	case "json", "csv", "csvh":
	default:
		return fmt.Errorf("invalid input format: %q (use json, csv or csvh)", c.In)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color option: %q (use auto, always or never)", c.Color)
	}
	if c.Indent < 0 {
		return fmt.Errorf("invalid indent: %d", c.Indent)
	}
	return nil
}

func defaultPath(env map[string]string) string {
	dir := env["XDG_CONFIG_HOME"]
	if dir == "" {
		home := env["HOME"]
		if home == "" {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "jsonscript", "config.yaml")
}
