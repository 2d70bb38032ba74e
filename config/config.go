// Package config loads scry.yaml, the project configuration for the linter.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/lint"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "scry.yaml"

// MaxFileSize bounds the size of a configuration file.
const MaxFileSize = 1024 * 1024

// DefaultMaxDiagnostics is the number of diagnostics printed per run unless
// configured otherwise.
const DefaultMaxDiagnostics = 20

var (
	ErrInvalidHook     = errors.New("invalid hook")
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

type Config struct {
	LogLevel       string `yaml:"log_level"`
	MaxDiagnostics int    `yaml:"max_diagnostics"`
	Linter         Linter `yaml:"linter"`
}

type Linter struct {
	Rules Rules `yaml:"rules"`
}

type Rules struct {
	ExhaustiveDependencies ExhaustiveDependencies `yaml:"useExhaustiveDependencies"`
}

type ExhaustiveDependencies struct {
	// Enabled defaults to true when omitted.
	Enabled              *bool  `yaml:"enabled"`
	Severity             string `yaml:"severity"`
	IgnoreModuleBindings bool   `yaml:"ignore_module_bindings"`
	Hooks                []Hook `yaml:"hooks"`
}

// Hook declares a custom hook. Dependencies is omitted for hooks without a
// dependency list.
type Hook struct {
	Name         string `yaml:"name"`
	Callback     *int   `yaml:"callback"`
	Dependencies *int   `yaml:"dependencies"`
}

func Default() *Config {
	return &Config{
		LogLevel:       "notice",
		MaxDiagnostics: DefaultMaxDiagnostics,
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional loads path when it exists and falls back to Default
// otherwise.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var severities = map[string]bool{
	"error": true, "warning": true, "info": true, "hint": true,
}

var verbosities = map[string]int{
	"none":     -4,
	"critical": -3,
	"error":    -2,
	"warning":  -1,
	"notice":   0,
	"info":     1,
	"debug":    2,
}

func (c *Config) Validate() error {
	if _, ok := verbosities[c.LogLevel]; !ok && c.LogLevel != "" {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must not be negative, got %d", c.MaxDiagnostics)
	}
	rule := c.Linter.Rules.ExhaustiveDependencies
	if rule.Severity != "" && !severities[rule.Severity] {
		return fmt.Errorf("useExhaustiveDependencies: %w: %q", ErrInvalidSeverity, rule.Severity)
	}
	seen := make(map[string]bool)
	for i, h := range rule.Hooks {
		switch {
		case h.Name == "":
			return fmt.Errorf("%w: hooks[%d] has no name", ErrInvalidHook, i)
		case seen[h.Name]:
			return fmt.Errorf("%w: hooks[%d]: %s is declared twice", ErrInvalidHook, i, h.Name)
		case h.Callback == nil:
			return fmt.Errorf("%w: hooks[%d]: %s has no callback index", ErrInvalidHook, i, h.Name)
		case *h.Callback < 0:
			return fmt.Errorf("%w: hooks[%d]: %s has a negative callback index", ErrInvalidHook, i, h.Name)
		case h.Dependencies != nil && *h.Dependencies < 0:
			return fmt.Errorf("%w: hooks[%d]: %s has a negative dependencies index", ErrInvalidHook, i, h.Name)
		case h.Dependencies != nil && *h.Dependencies == *h.Callback:
			return fmt.Errorf("%w: hooks[%d]: %s uses argument %d for both callback and dependencies", ErrInvalidHook, i, h.Name, *h.Callback)
		}
		seen[h.Name] = true
	}
	return nil
}

// Verbosity maps LogLevel to a commonlog verbosity.
func (c *Config) Verbosity() int {
	return verbosities[c.LogLevel]
}

// ExhaustiveDependencies returns the rule options: the default hooks
// extended with the configured ones.
func (c *Config) ExhaustiveDependencies() lint.ExhaustiveDependenciesOptions {
	rule := c.Linter.Rules.ExhaustiveDependencies
	opts := lint.DefaultExhaustiveDependenciesOptions()
	if rule.Severity != "" {
		opts.Severity = diagnostic.ParseSeverity(rule.Severity)
	}
	opts.IgnoreModuleBindings = rule.IgnoreModuleBindings
	for _, h := range rule.Hooks {
		if h.Callback == nil {
			continue
		}
		shape := lint.HookShape{CallbackIndex: *h.Callback}
		if h.Dependencies != nil {
			shape.DependenciesIndex = *h.Dependencies
			shape.HasDependencies = true
		}
		opts.Hooks = opts.Hooks.With(h.Name, shape)
	}
	return opts
}

// Rules returns the enabled lint rules.
func (c *Config) Rules() []lint.Rule {
	var rules []lint.Rule
	rule := c.Linter.Rules.ExhaustiveDependencies
	if rule.Enabled == nil || *rule.Enabled {
		rules = append(rules, lint.NewExhaustiveDependencies(c.ExhaustiveDependencies()))
	}
	return rules
}
