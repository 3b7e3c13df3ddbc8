// Package config provides configuration loading and management for regionbridge.
// It layers a YAML file over default values and can write configurations back out.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DatasetSource names a FITS file to serve as a dataset
type DatasetSource struct {
	// Name is the dataset name used in URLs
	Name string `yaml:"name" koanf:"name"`

	// Path is the FITS file holding the image
	Path string `yaml:"path" koanf:"path"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Server parameters
	Server struct {
		// Addr is the listen address of the HTTP service
		Addr string `yaml:"addr" koanf:"addr"`

		// LogLevel is one of debug, info or error
		LogLevel string `yaml:"logLevel" koanf:"logLevel"`
	} `yaml:"server" koanf:"server"`

	// Translation parameters
	Translation struct {
		// Format is the export format used when a request names none
		Format string `yaml:"format" koanf:"format"`

		// CenterTolerance allows annulus recognition of circles whose centres
		// differ by up to this many pixels. 0 requires identical centres.
		CenterTolerance float64 `yaml:"centerTolerance" koanf:"centerTolerance"`

		// MaxDepth limits how deeply selections may nest
		MaxDepth int `yaml:"maxDepth" koanf:"maxDepth"`
	} `yaml:"translation" koanf:"translation"`

	// Datasets served by the HTTP service
	Datasets []DatasetSource `yaml:"datasets" koanf:"datasets"`

	// Output parameters
	Output struct {
		// MaskDir is where the export command writes masks given as bare names
		MaskDir string `yaml:"maskDir" koanf:"maskDir"`

		// Workers is the number of goroutines used to render masks, 0 for all CPUs
		Workers int `yaml:"workers" koanf:"workers"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose" koanf:"verbose"`
	} `yaml:"output" koanf:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Addr = ":8000"
	cfg.Server.LogLevel = "info"

	cfg.Translation.Format = "regions"
	cfg.Translation.CenterTolerance = 0
	cfg.Translation.MaxDepth = 256

	cfg.Datasets = []DatasetSource{}

	cfg.Output.MaskDir = "."
	cfg.Output.Workers = 0
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file layered over the defaults.
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "error loading default config")
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), kyaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "error parsing config file")
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "error reading config file")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "error creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "error writing config file")
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
