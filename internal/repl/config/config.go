// Package config provides configuration management for the fsagent REPL.
// It handles loading and parsing of the config.yaml file in the data
// directory and mapping its values onto the Config struct.
package config

import (
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all REPL configuration.
type Config struct {
	// Prompt is the prompt string shown by the line editor.
	Prompt string `yaml:"prompt"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"logLevel"`

	// TriggerSymbol starts a path completion token. It must be a single
	// character; an empty string disables the trigger.
	TriggerSymbol string `yaml:"triggerSymbol"`

	// IgnorePatterns are appended to the built-in ignore patterns.
	IgnorePatterns []string `yaml:"ignorePatterns"`

	// AllowHidden lists hidden names that are completed without a leading dot.
	AllowHidden []string `yaml:"allowHidden"`

	Grep GrepConfig `yaml:"grep"`
	Read ReadConfig `yaml:"read"`
	List ListConfig `yaml:"list"`
}

// GrepConfig configures the grep tool.
type GrepConfig struct {
	// MaxMatches stops a search once this many matches were found.
	MaxMatches int `yaml:"maxMatches"`
}

// ReadConfig configures the read_file tool.
type ReadConfig struct {
	// MaxBytes is the output size above which lines are truncated from the middle.
	MaxBytes int `yaml:"maxBytes"`
}

// ListConfig configures the list_files tool.
type ListConfig struct {
	// Recursive is the default for list requests that do not specify it.
	Recursive bool `yaml:"recursive"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Prompt:        "fsagent> ",
		LogLevel:      "info",
		TriggerSymbol: "@",
		Grep:          GrepConfig{MaxMatches: 200},
		Read:          ReadConfig{MaxBytes: 100000},
		List:          ListConfig{Recursive: true},
	}
}

// Trigger returns the trigger symbol as a rune, or zero when disabled.
func (c *Config) Trigger() rune {
	if c.TriggerSymbol == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.TriggerSymbol)
	return r
}

// ZapLevel parses LogLevel, falling back to info for unknown values.
func (c *Config) ZapLevel() zap.AtomicLevel {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(level)
}
