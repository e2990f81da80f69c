package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains workspace indexing configuration
type Config struct {
	Languages map[string]*LanguageConfig `yaml:"languages"`
	Scan      ScanConfig                 `yaml:"scan,omitempty"`
}

// LanguageConfig describes which files belong to a language. Entries in
// FileTypes are either bare extensions ("go", "rs") or glob patterns
// ("*.gen.ts", "Makefile*").
type LanguageConfig struct {
	FileTypes []string `yaml:"file_types"`
}

// ScanConfig tunes workspace directory scanning
type ScanConfig struct {
	RespectGitignore bool `yaml:"respect_gitignore"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateDefaultConfig generates a default configuration file
func GenerateDefaultConfig(path string) error {
	return SaveConfig(GetDefaultConfig(), path)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Languages == nil {
		return fmt.Errorf("languages configuration is required")
	}

	for language, languageConfig := range config.Languages {
		if len(languageConfig.FileTypes) == 0 {
			return fmt.Errorf("file_types is required for language %s", language)
		}
		for _, fileType := range languageConfig.FileTypes {
			if strings.TrimSpace(fileType) == "" {
				return fmt.Errorf("empty file type for language %s", language)
			}
		}
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lsindex", "config.yaml")
}

// GetDefaultConfig returns a default configuration for common languages
func GetDefaultConfig() *Config {
	return &Config{
		Languages: map[string]*LanguageConfig{
			"go": {
				FileTypes: []string{"go"},
			},
			"rust": {
				FileTypes: []string{"rs"},
			},
			"python": {
				FileTypes: []string{"py"},
			},
			"javascript": {
				FileTypes: []string{"js", "jsx"},
			},
			"typescript": {
				FileTypes: []string{"ts", "tsx"},
			},
			"java": {
				FileTypes: []string{"java"},
			},
		},
		Scan: ScanConfig{
			RespectGitignore: true,
		},
	}
}

// LanguageFor returns the configuration for a language id
func (c *Config) LanguageFor(languageID string) (*LanguageConfig, error) {
	lang, ok := c.Languages[languageID]
	if !ok {
		return nil, fmt.Errorf("no configuration for language %s", languageID)
	}
	return lang, nil
}

// Extensions returns the bare-extension entries of FileTypes, used by the
// file watcher which filters on extension only
func (lc *LanguageConfig) Extensions() []string {
	exts := make([]string, 0, len(lc.FileTypes))
	for _, ft := range lc.FileTypes {
		if !strings.ContainsAny(ft, "*?[") {
			exts = append(exts, "."+strings.TrimPrefix(ft, "."))
		}
	}
	return exts
}
