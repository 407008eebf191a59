// Package config provides configuration loading and structs for the surveyrag server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/surveyrag/internal/models"
)

// Search backends.
const (
	BackendAzure = "azure"
	BackendLocal = "local"
)

// Generation providers.
const (
	ProviderAzureOpenAI = "azure-openai"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool               `yaml:"debug"`
	Server      ServerConfig       `yaml:"server"`
	Search      SearchConfig       `yaml:"search"`
	Collections []CollectionConfig `yaml:"collections"`
	Generation  GenerationConfig   `yaml:"generation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CORSOrigins    []string      `yaml:"cors_origins"`
}

// SearchConfig holds the search service connection and retrieval settings.
type SearchConfig struct {
	Backend    string        `yaml:"backend"`
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	APIVersion string        `yaml:"api_version"`
	QueryType  string        `yaml:"query_type"`
	TopK       int           `yaml:"top_k"`
	Timeout    time.Duration `yaml:"timeout"`
	Local      LocalConfig   `yaml:"local"`
}

// LocalConfig holds paths for the embedded Bleve/SQLite search backend.
type LocalConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexDir     string `yaml:"index_dir"`
}

// CollectionConfig is one row of the routing table: questions containing any keyword
// are answered from Index. Rows are evaluated in file order.
type CollectionConfig struct {
	Tag      models.IndexTag `yaml:"tag"`
	Index    string          `yaml:"index"`
	Keywords []string        `yaml:"keywords"`
}

// GenerationConfig holds the completion service settings. MaxTokens, Temperature and
// Candidates are fixed per process, never per request. Temperature is a pointer so
// an explicit 0 is kept; nil means the default of 0.7.
type GenerationConfig struct {
	Provider        string        `yaml:"provider"`
	Endpoint        string        `yaml:"endpoint"`
	APIKey          string        `yaml:"api_key"`
	APIVersion      string        `yaml:"api_version"`
	Model           string        `yaml:"model"`
	Deployment      string        `yaml:"deployment"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     *float32      `yaml:"temperature,omitempty"`
	Candidates      int           `yaml:"candidates"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxContextChars int           `yaml:"max_context_chars"` // negative disables truncation
}

// Load reads and parses the config file at path, applies environment overrides and defaults,
// and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg, os.Getenv)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Search.Local.DatabasePath = expandPath(cfg.Search.Local.DatabasePath, configDir)
	cfg.Search.Local.IndexDir = expandPath(cfg.Search.Local.IndexDir, configDir)

	return &cfg, nil
}

// LoadOrDefault loads path when it exists; otherwise it returns defaults plus environment
// overrides, so a deployment configured purely through the environment needs no file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			ApplyEnv(cfg, os.Getenv)
			ApplyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	return Load(path)
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

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if len(c.Collections) == 0 {
		return errors.New("at least one collection is required")
	}
	seen := make(map[models.IndexTag]struct{}, len(c.Collections))
	for i, col := range c.Collections {
		if col.Tag == "" {
			return fmt.Errorf("collection %d: tag is required", i)
		}
		if _, dup := seen[col.Tag]; dup {
			return fmt.Errorf("collection %q: duplicate tag", col.Tag)
		}
		seen[col.Tag] = struct{}{}
		if col.Index == "" {
			return fmt.Errorf("collection %q: index is required", col.Tag)
		}
		if !hasKeyword(col.Keywords) {
			return fmt.Errorf("collection %q: at least one keyword is required", col.Tag)
		}
	}
	if c.Search.TopK < 1 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	switch c.Search.Backend {
	case BackendAzure:
		if c.Search.Endpoint == "" {
			return errors.New("search.endpoint is required for the azure backend")
		}
	case BackendLocal:
	default:
		return fmt.Errorf("unknown search backend %q", c.Search.Backend)
	}
	switch c.Generation.Provider {
	case ProviderAzureOpenAI, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}
	return nil
}

// Collection returns the routing entry for tag.
func (c *Config) Collection(tag models.IndexTag) (CollectionConfig, bool) {
	for _, col := range c.Collections {
		if col.Tag == tag {
			return col, true
		}
	}
	return CollectionConfig{}, false
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
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

func hasKeyword(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
