package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	CatalogDir string // directory of catalog record files

	AzureEndpoint   string // e.g. https://myorg.openai.azure.com; empty = LLM disabled
	AzureDeployment string
	AzureKey        string
	AzureAPIVersion string
	ReasoningEffort string
	LLMTimeout      time.Duration
	LLMRPS          float64 // provider calls per second; <=0 = unlimited

	DatabaseURL  string // PostgreSQL insight store when set
	SQLitePath   string // SQLite insight store when set (and no DatabaseURL)
	InsightsPath string // JSON file store fallback

	HTTPClient *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (staffing, catalog).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}

// AzureConfigured reports whether the endpoint/deployment/key triple is
// complete enough to build a provider client.
func (c *Config) AzureConfigured() bool {
	return c.AzureEndpoint != "" && c.AzureDeployment != "" && c.AzureKey != ""
}
