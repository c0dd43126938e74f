// Package staffserver exposes the staffing engine over MCP: matching,
// candidate selection, insight generation, batch re-analysis, and catalog
// and store introspection.
package staffserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/catalog"
	"github.com/anatolykoptev/go_staffing/internal/engine"
	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

// Deps are the collaborators the tools operate on. Completer is nil when
// the LLM provider is not configured; the pipeline then stays heuristic.
type Deps struct {
	Holder    *catalog.Holder
	Store     staffing.InsightStore
	Completer engine.ChatCompleter
}

// RegisterTools registers all staffing tools on the given MCP server:
// match_recommendations, select_candidates, generate_insights,
// reanalyze_resources, catalog_stats, catalog_refresh, list_insights.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerMatchRecommendations(server, deps)
	registerSelectCandidates(server, deps)
	registerGenerateInsights(server, deps)
	registerReanalyzeResources(server, deps)
	registerCatalogStats(server, deps)
	registerCatalogRefresh(server, deps)
	registerListInsights(server, deps)
}

// emptyInput is the schema for tools that take no arguments.
type emptyInput struct{}
