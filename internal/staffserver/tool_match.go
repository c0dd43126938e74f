package staffserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

const defaultMatchLimit = 50

type matchInput struct {
	Source string `json:"source,omitempty" jsonschema:"Recommendation source: derived (computed from skill coverage, availability and macro-area), affinity (externally supplied scores, formula fallback), all (default: both merged, affinity wins per pair)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum recommendations to return (default 50)"`
}

type matchOutput struct {
	Recommendations []staffing.Recommendation `json:"recommendations"`
	Total           int                       `json:"total"`
	Summary         string                    `json:"summary"`
}

func registerMatchRecommendations(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "match_recommendations",
		Description: "Rank resource-project pairings by weighted match score (skill coverage, availability, macro-area alignment). Source: derived, affinity, or all. Returns recommendations sorted by score descending.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input matchInput) (*mcp.CallToolResult, matchOutput, error) {
		snap := deps.Holder.Get()

		var recs []staffing.Recommendation
		switch strings.ToLower(strings.TrimSpace(input.Source)) {
		case "", "all":
			recs = staffing.CombinedRecommendations(snap.Catalog, snap.Affinity)
		case "derived":
			recs = staffing.DeriveRecommendations(snap.Catalog)
		case "affinity":
			recs = staffing.AffinityRecommendations(snap.Catalog, snap.Affinity)
		default:
			return nil, matchOutput{}, fmt.Errorf("unknown source %q: want derived, affinity, or all", input.Source)
		}

		total := len(recs)
		limit := input.Limit
		if limit <= 0 {
			limit = defaultMatchLimit
		}
		if len(recs) > limit {
			recs = recs[:limit]
		}

		return nil, matchOutput{
			Recommendations: recs,
			Total:           total,
			Summary: fmt.Sprintf("%d recommendations over %d resources and %d projects",
				total, len(snap.Catalog.Resources), len(snap.Catalog.Projects)),
		}, nil
	})
}
