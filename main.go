// go_staffing — Resource-Project Matching & Insight MCP server.
//
// Matches people to projects by skill coverage, availability and macro-area
// alignment, generates per-person insights (heuristic baseline, optional
// Azure OpenAI augmentation), and persists them in an idempotent store.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/catalog"
	"github.com/anatolykoptev/go_staffing/internal/engine"
	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
	"github.com/anatolykoptev/go_staffing/internal/staffserver"
)

var (
	version = "dev"
	mcpPort = env.Str("PORT", "8095")
)

func main() {
	initEngine()

	slog.Info("starting go_staffing",
		slog.String("port", mcpPort),
		slog.String("catalog_dir", engine.Cfg.CatalogDir),
	)

	ctx := context.Background()

	store := buildStore(ctx)
	holder := catalog.NewHolder(engine.Cfg.CatalogDir)
	if snap := holder.Refresh(); len(snap.Meta.Errors) > 0 {
		slog.Warn("catalog loaded with errors", slog.Int("errors", len(snap.Meta.Errors)))
	}

	var completer engine.ChatCompleter
	if client := engine.NewAzureClient(); client != nil {
		completer = client
		slog.Info("azure openai configured",
			slog.String("deployment", engine.Cfg.AzureDeployment),
			slog.String("api_version", engine.Cfg.AzureAPIVersion))
	} else {
		slog.Info("azure openai not configured, insights stay heuristic")
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_staffing",
		Version: version,
	}, nil)

	staffserver.RegisterTools(server, staffserver.Deps{
		Holder:    holder,
		Store:     store,
		Completer: completer,
	})
	slog.Info("tools registered", slog.Int("count", 7))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_staffing",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	engine.Init(engine.Config{
		CatalogDir: env.Str("CATALOG_DIR", "./data"),

		AzureEndpoint:   env.Str("AZURE_OPENAI_ENDPOINT", ""),
		AzureDeployment: env.Str("AZURE_OPENAI_DEPLOYMENT", ""),
		AzureKey:        env.Str("AZURE_OPENAI_KEY", ""),
		AzureAPIVersion: env.Str("AZURE_OPENAI_API_VERSION", "2025-01-01-preview"),
		ReasoningEffort: env.Str("REASONING_EFFORT", "low"),
		LLMTimeout:      env.Duration("LLM_TIMEOUT", 120*time.Second),
		LLMRPS:          env.Float("LLM_RPS", 0.5),

		DatabaseURL:  env.Str("DATABASE_URL", ""),
		SQLitePath:   env.Str("SQLITE_PATH", ""),
		InsightsPath: env.Str("INSIGHTS_PATH", "./data/insights.json"),
	})
}

// buildStore picks the insight store backend: PostgreSQL when DATABASE_URL
// is set, SQLite when SQLITE_PATH is set, a JSON file otherwise. A backend
// that fails to open falls back to the file store rather than aborting.
func buildStore(ctx context.Context) staffing.InsightStore {
	if engine.Cfg.DatabaseURL != "" {
		store, err := staffing.ConnectPGStore(ctx, engine.Cfg.DatabaseURL)
		if err == nil {
			return store
		}
		slog.Error("postgres insight store unavailable, using file store", slog.Any("error", err))
	}
	if engine.Cfg.SQLitePath != "" {
		store, err := staffing.OpenSQLiteStore(engine.Cfg.SQLitePath)
		if err == nil {
			return store
		}
		slog.Error("sqlite insight store unavailable, using file store", slog.Any("error", err))
	}
	slog.Info("insight store", slog.String("path", engine.Cfg.InsightsPath))
	return staffing.NewFileStore(engine.Cfg.InsightsPath)
}
