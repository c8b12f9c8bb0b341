// Package config loads doctest settings from .doctest/config.yaml and merges
// them with command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DirName is the per-project settings directory.
const DirName = ".doctest"

// FileName is the settings file inside DirName.
const FileName = "config.yaml"

// Config represents doctest configuration options
type Config struct {
	// Timeout is the per-example execution limit
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Runtime is the interpreter command; the unit path is appended as the last argument
	Runtime []string `yaml:"runtime"`

	// Extensions lists the source file extensions scanned in directories
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names never descended into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Markdown adds .md files to directory discovery
	Markdown bool `yaml:"markdown"`

	// MaxOutputBytes caps captured stdout and stderr per example (0 = unlimited)
	MaxOutputBytes int `yaml:"max_output_bytes"`

	// ReportFile is where the JSON run report is written (empty = no report)
	ReportFile string `yaml:"report_file"`

	// DryRun lists examples without executing them
	DryRun bool `yaml:"dry_run"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		LogLevel:       "info",
		Runtime:        []string{"npx", "tsx"},
		Extensions:     []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".mts", ".cts", ".cjs"},
		ExcludeDirs:    []string{"node_modules", "dist", "build", "coverage"},
		Markdown:       false,
		MaxOutputBytes: 1 << 20,
		ReportFile:     "",
		DryRun:         false,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Timeout is decoded as a string so "750ms" and "5s" both work.
	type yamlConfig struct {
		Timeout        string   `yaml:"timeout"`
		LogLevel       string   `yaml:"log_level"`
		Runtime        []string `yaml:"runtime"`
		Extensions     []string `yaml:"extensions"`
		ExcludeDirs    []string `yaml:"exclude_dirs"`
		Markdown       *bool    `yaml:"markdown"`
		MaxOutputBytes *int     `yaml:"max_output_bytes"`
		ReportFile     string   `yaml:"report_file"`
		DryRun         bool     `yaml:"dry_run"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Timeout != "" {
		timeout, err := parseTimeout(yamlCfg.Timeout)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(yamlCfg.LogLevel)
	}
	if len(yamlCfg.Runtime) > 0 {
		cfg.Runtime = yamlCfg.Runtime
	}
	if len(yamlCfg.Extensions) > 0 {
		cfg.Extensions = normalizeExtensions(yamlCfg.Extensions)
	}
	// An explicit empty list turns the default exclusions off.
	if yamlCfg.ExcludeDirs != nil {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if yamlCfg.Markdown != nil {
		cfg.Markdown = *yamlCfg.Markdown
	}
	if yamlCfg.MaxOutputBytes != nil {
		cfg.MaxOutputBytes = *yamlCfg.MaxOutputBytes
	}
	if yamlCfg.ReportFile != "" {
		cfg.ReportFile = yamlCfg.ReportFile
	}
	if yamlCfg.DryRun {
		cfg.DryRun = yamlCfg.DryRun
	}

	return cfg, nil
}

// parseTimeout accepts a Go duration ("750ms", "5s") or a bare number of
// milliseconds ("750").
func parseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if timeout, err := time.ParseDuration(value); err == nil {
		return timeout, nil
	}
	if timeout, err := time.ParseDuration(value + "ms"); err == nil {
		return timeout, nil
	}
	return 0, fmt.Errorf("invalid timeout format %q", value)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// LoadConfigFromDir loads configuration from .doctest/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DirName, FileName))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(timeout *time.Duration, logLevel *string, runtime *string, reportFile *string, dryRun *bool) {
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logLevel != nil {
		c.LogLevel = strings.ToLower(*logLevel)
	}
	if runtime != nil {
		c.Runtime = strings.Fields(*runtime)
	}
	if reportFile != nil {
		c.ReportFile = *reportFile
	}
	if dryRun != nil {
		c.DryRun = *dryRun
	}
}

// DiscoveryExtensions returns the extensions scanned in directories,
// including .md when markdown discovery is on.
func (c *Config) DiscoveryExtensions() []string {
	exts := append([]string(nil), c.Extensions...)
	if c.Markdown {
		for _, ext := range exts {
			if ext == ".md" {
				return exts
			}
		}
		exts = append(exts, ".md")
	}
	return exts
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	if len(c.Runtime) == 0 || strings.TrimSpace(c.Runtime[0]) == "" {
		return fmt.Errorf("runtime cannot be empty")
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions cannot be empty")
	}

	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("max_output_bytes must be >= 0, got %d", c.MaxOutputBytes)
	}

	return nil
}
