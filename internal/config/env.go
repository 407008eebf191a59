package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. The AZURE_* names are what existing deployments export.
const (
	EnvSearchEndpoint   = "AZURE_SEARCH_ENDPOINT"
	EnvSearchAPIKey     = "AZURE_SEARCH_API_KEY"
	EnvOpenAIEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvOpenAIAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvOpenAIAPIVersion = "AZURE_OPENAI_API_VERSION"
	EnvSearchBackend    = "SURVEYRAG_SEARCH_BACKEND"
	EnvSearchTopK       = "SURVEYRAG_SEARCH_TOP_K"
	EnvGenProvider      = "SURVEYRAG_LLM_PROVIDER"
	EnvGenModel         = "SURVEYRAG_LLM_MODEL"
	EnvGenAPIKey        = "SURVEYRAG_LLM_API_KEY"
	EnvGenTimeout       = "SURVEYRAG_LLM_TIMEOUT"
	EnvServerPort       = "SURVEYRAG_PORT"
	EnvDebug            = "SURVEYRAG_DEBUG"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// ApplyEnv overrides cfg with non-empty values returned by getenv.
// Malformed numeric values are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Search.Endpoint, EnvSearchEndpoint)
	set(&cfg.Search.APIKey, EnvSearchAPIKey)
	set(&cfg.Search.Backend, EnvSearchBackend)
	set(&cfg.Generation.Endpoint, EnvOpenAIEndpoint)
	set(&cfg.Generation.APIVersion, EnvOpenAIAPIVersion)
	set(&cfg.Generation.Provider, EnvGenProvider)
	set(&cfg.Generation.Model, EnvGenModel)

	if v := getenv(EnvOpenAIAPIKey); v != "" && (cfg.Generation.Provider == "" || cfg.Generation.Provider == ProviderAzureOpenAI) {
		cfg.Generation.APIKey = v
	}
	set(&cfg.Generation.APIKey, EnvGenAPIKey)

	if n, err := strconv.Atoi(getenv(EnvSearchTopK)); err == nil && n > 0 {
		cfg.Search.TopK = n
	}
	if n, err := strconv.Atoi(getenv(EnvServerPort)); err == nil && n > 0 {
		cfg.Server.Port = n
	}
	if d, err := time.ParseDuration(getenv(EnvGenTimeout)); err == nil && d > 0 {
		cfg.Generation.Timeout = d
	}
	if b, err := strconv.ParseBool(getenv(EnvDebug)); err == nil {
		cfg.Debug = b
	}
}
