// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reading ReadingConfig `toml:"reading"`
}

// ReadingConfig maps reading-related settings.
type ReadingConfig struct {
	WPM            *int    `toml:"wpm"`
	Preset         *string `toml:"preset"`
	VowelColor     *string `toml:"vowel-color"`
	ConsonantColor *string `toml:"consonant-color"`
	Theme          *string `toml:"theme"`
	Notify         *bool   `toml:"notify"`
	LogLevel       *string `toml:"log-level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
