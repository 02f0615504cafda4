package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of config.yaml files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from a YAML file.
// Returns the configuration and any non-fatal errors encountered.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("config file not found, using defaults", zap.String("path", path))
			return &LoadResult{Config: DefaultConfig(), Errors: []error{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromString(string(content))
}

// LoadFromString loads configuration from a YAML document.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	if err := yaml.Unmarshal([]byte(source), result.Config); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		// Continue with defaults on parse errors
		result.Config = DefaultConfig()
		return result, nil
	}

	l.validate(result)

	for _, err := range result.Errors {
		l.logger.Warn("config error", zap.Error(err))
	}
	return result, nil
}

// validate resets invalid values to their defaults and records why.
func (l *Loader) validate(result *LoadResult) {
	cfg := result.Config
	defaults := DefaultConfig()

	if utf8.RuneCountInString(cfg.TriggerSymbol) > 1 {
		result.Errors = append(result.Errors, fmt.Errorf("triggerSymbol must be a single character, got %q", cfg.TriggerSymbol))
		cfg.TriggerSymbol = defaults.TriggerSymbol
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		result.Errors = append(result.Errors, fmt.Errorf("logLevel must be one of debug, info, warn, error, got %q", cfg.LogLevel))
		cfg.LogLevel = defaults.LogLevel
	}

	if cfg.Grep.MaxMatches <= 0 {
		result.Errors = append(result.Errors, fmt.Errorf("grep.maxMatches must be positive, got %d", cfg.Grep.MaxMatches))
		cfg.Grep.MaxMatches = defaults.Grep.MaxMatches
	}

	if cfg.Read.MaxBytes <= 0 {
		result.Errors = append(result.Errors, fmt.Errorf("read.maxBytes must be positive, got %d", cfg.Read.MaxBytes))
		cfg.Read.MaxBytes = defaults.Read.MaxBytes
	}
}
