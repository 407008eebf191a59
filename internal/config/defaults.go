package config

import "time"

// DefaultCollections is the routing table used when the config defines none.
func DefaultCollections() []CollectionConfig {
	return []CollectionConfig{
		{Tag: "christmas", Index: "christmas-index", Keywords: []string{"christmas", "holiday", "festive"}},
		{Tag: "sustainability", Index: "sustainability-index", Keywords: []string{"sustainability", "environment", "green", "eco", "sustainable"}},
	}
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 90 * time.Second
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Search.Backend == "" {
		cfg.Search.Backend = BackendAzure
	}
	if cfg.Search.APIVersion == "" {
		cfg.Search.APIVersion = "2023-11-01"
	}
	if cfg.Search.QueryType == "" {
		cfg.Search.QueryType = "simple"
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 5
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 15 * time.Second
	}
	if cfg.Search.Local.DatabasePath == "" {
		cfg.Search.Local.DatabasePath = "/usr/local/var/surveyrag/data/documents.db"
	}
	if cfg.Search.Local.IndexDir == "" {
		cfg.Search.Local.IndexDir = "/usr/local/var/surveyrag/data/indices"
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = DefaultCollections()
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = ProviderAzureOpenAI
	}
	if cfg.Generation.APIVersion == "" {
		cfg.Generation.APIVersion = "2024-02-01"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = defaultModel(cfg.Generation.Provider)
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 150
	}
	if cfg.Generation.Temperature == nil {
		t := float32(0.7)
		cfg.Generation.Temperature = &t
	}
	if cfg.Generation.Candidates == 0 {
		cfg.Generation.Candidates = 1
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 60 * time.Second
	}
	if cfg.Generation.MaxContextChars == 0 {
		cfg.Generation.MaxContextChars = 12000
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-3.5-turbo"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-35-turbo"
	}
}
