// Package config handles loading, saving, and resolving the spacesync
// project configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-project spacesync config file.
	LocalConfigFilename = ".spacesync.yaml"
	// ConfigEnvVar overrides config resolution with an explicit file or directory.
	ConfigEnvVar = "SPACESYNC_CONFIG"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/spacesync/v1alpha1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "SpacesSyncConfig"
)

// Defaults holds default values for operations.
type Defaults struct {
	RemoteName          string `yaml:"remote_name"`
	Branch              string `yaml:"branch"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	CloneTimeoutSeconds int    `yaml:"clone_timeout_seconds"`
}

// Config represents the project-level spacesync configuration.
type Config struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	// Document is the index document name looked up in the project root.
	Document   string   `yaml:"document"`
	IndexStart string   `yaml:"index_start"`
	IndexEnd   string   `yaml:"index_end"`
	SpacesDir  string   `yaml:"spaces_dir"`
	Exclude    []string `yaml:"exclude"`
	Defaults   Defaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		Document:   "CLAUDE.md",
		IndexStart: "<!-- SPACES_INDEX_START -->",
		IndexEnd:   "<!-- SPACES_INDEX_END -->",
		SpacesDir:  "spaces",
		Exclude:    []string{},
		Defaults: Defaults{
			RemoteName:          "origin",
			Branch:              "main",
			TimeoutSeconds:      30,
			CloneTimeoutSeconds: 120,
		},
	}
}

// Timeout returns the per-command deadline for metadata and sync commands.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Defaults.TimeoutSeconds) * time.Second
}

// CloneTimeout returns the per-command deadline for clone.
func (c *Config) CloneTimeout() time.Duration {
	return time.Duration(c.Defaults.CloneTimeoutSeconds) * time.Second
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, SPACESYNC_CONFIG, nearest local dotfile in cwd/parents.
// It returns an empty string when no config file applies; callers then use
// DefaultConfig.
func ResolveConfigPath(override, cwd string) (string, error) {
	if path := explicitConfigPath(override); path != "" {
		return path, nil
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return FindNearestConfigPath(cwd)
}

// InitConfigPath resolves where "spacesync init" should write config.
// Order: explicit override, SPACESYNC_CONFIG, then the local dotfile in root.
func InitConfigPath(override, root string) (string, error) {
	if path := explicitConfigPath(override); path != "" {
		return path, nil
	}
	if strings.TrimSpace(root) == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(root, LocalConfigFilename), nil
}

func explicitConfigPath(override string) string {
	for _, candidate := range []string{override, os.Getenv(ConfigEnvVar)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if isConfigFilePath(candidate) {
			return candidate
		}
		return filepath.Join(candidate, LocalConfigFilename)
	}
	return ""
}

// FindNearestConfigPath searches cwd and each parent directory for .spacesync.yaml.
// It returns an empty string when no local config file is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigGVK(&cfg)
	if err := validateConfigGVK(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := validateConfigGVK(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.Document) == "" {
		cfg.Document = def.Document
	}
	if strings.TrimSpace(cfg.IndexStart) == "" {
		cfg.IndexStart = def.IndexStart
	}
	if strings.TrimSpace(cfg.IndexEnd) == "" {
		cfg.IndexEnd = def.IndexEnd
	}
	if strings.TrimSpace(cfg.SpacesDir) == "" {
		cfg.SpacesDir = def.SpacesDir
	}
	if cfg.Defaults.RemoteName == "" {
		cfg.Defaults.RemoteName = def.Defaults.RemoteName
	}
	if cfg.Defaults.Branch == "" {
		cfg.Defaults.Branch = def.Defaults.Branch
	}
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = def.Defaults.TimeoutSeconds
	}
	if cfg.Defaults.CloneTimeoutSeconds <= 0 {
		cfg.Defaults.CloneTimeoutSeconds = def.Defaults.CloneTimeoutSeconds
	}
}

func isConfigFilePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
