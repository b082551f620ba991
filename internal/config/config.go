// Package config provides configuration loading and structs for the Kiroku server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Portal PortalConfig `yaml:"portal"`
	Intake IntakeConfig `yaml:"intake"`
	Notify NotifyConfig `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PortalConfig holds the document portal settings: the departments the portal
// recognizes, where transferred files land, and how compliance flags map to
// other interested departments.
type PortalConfig struct {
	Departments []string            `yaml:"departments"`
	DocumentDir string              `yaml:"document_dir"`
	Relevance   map[string][]string `yaml:"relevance"`

	// ComplianceVocabulary maps compliance flags to the keywords that trigger
	// them during annotation. Empty means the built-in vocabulary.
	ComplianceVocabulary map[string][]string `yaml:"compliance_vocabulary"`
}

// IntakeConfig holds drop-directory intake settings. Intake is disabled when
// DropDir is empty.
type IntakeConfig struct {
	DropDir           string   `yaml:"drop_dir"`
	Extensions        []string `yaml:"extensions"`
	DefaultDepartment string   `yaml:"default_department"`
	MaxConcurrentJobs int      `yaml:"max_concurrent_jobs"`
	DebounceMS        int      `yaml:"debounce_ms"`
}

// NotifyConfig holds notification delivery settings. The webhook sink is
// disabled when WebhookURL is empty.
type NotifyConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// HasDepartment reports whether name is one of the configured departments.
func (p *PortalConfig) HasDepartment(name string) bool {
	for _, d := range p.Departments {
		if d == name {
			return true
		}
	}
	return false
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Portal.DocumentDir = expandPath(cfg.Portal.DocumentDir, configDir)
	if cfg.Intake.DropDir != "" {
		cfg.Intake.DropDir = expandPath(cfg.Intake.DropDir, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
