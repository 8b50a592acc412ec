// Package config provides configuration loading for the schelling-cs engine:
// an optional file read through Viper, merged under whatever flags the CLI
// layer sets explicitly (CLI always overrides file, per spec).
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// File mirrors the configuration surface that may be supplied via a config
// file. Zero values mean "not set in the file"; the CLI merges its own flag
// defaults/values on top of whatever this struct reports.
type File struct {
	Graph       string  `mapstructure:"graph"`
	Size        string  `mapstructure:"size"`
	Move        string  `mapstructure:"move"`
	Density     float64 `mapstructure:"density"`
	Threshold   float64 `mapstructure:"threshold"`
	Alpha       float64 `mapstructure:"alpha"`
	Eps         float64 `mapstructure:"eps"`
	Threads     int     `mapstructure:"threads"`
	Seed        uint64  `mapstructure:"seed"`
	K           int     `mapstructure:"k"`
	Plot        bool    `mapstructure:"plot"`
	Debug       bool    `mapstructure:"debug"`
	DebugEvery  int     `mapstructure:"debug_every"`
	Horizon     uint64  `mapstructure:"horizon"`
	Checkpoints int     `mapstructure:"checkpoints"`
}

// Load reads a config file if a path is given. A missing path, or a path
// that does not exist, is not an error: the caller falls back to its own
// flag defaults (spec §6).
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &f, nil
}

// LoadFromReader parses config content of the given type (yaml, json, ...)
// without touching the filesystem; used by tests.
func LoadFromReader(configType string, content []byte) (*File, error) {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &f, nil
}
