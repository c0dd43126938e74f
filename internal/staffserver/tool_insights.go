package staffserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

func registerGenerateInsights(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_insights",
		Description: "Run the full insight pipeline for the top candidates: heuristic analysis, optional Azure OpenAI augmentation merged field by field, and persistence to the insight store. Check using_azure, error, warning and store_error on the result.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, staffing.GenerateResult, error) {
		snap := deps.Holder.Get()
		recs := staffing.CombinedRecommendations(snap.Catalog, snap.Affinity)
		candidates := staffing.SelectCandidates(snap.Catalog, recs, 0, 0)
		result := staffing.GenerateInsights(ctx, snap.Catalog, candidates, deps.Completer, deps.Store)
		return nil, result, nil
	})
}
