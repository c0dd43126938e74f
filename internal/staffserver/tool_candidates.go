package staffserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

type candidatesInput struct {
	TopProjects  int `json:"top_projects,omitempty" jsonschema:"Best recommendations kept per resource before averaging (default 3)"`
	TopResources int `json:"top_resources,omitempty" jsonschema:"Resources returned, ranked by average score (default 5)"`
}

type candidatesOutput struct {
	Candidates []staffing.Candidate `json:"candidates"`
	Summary    string               `json:"summary"`
}

func registerSelectCandidates(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_candidates",
		Description: "Pick the resources best worth an insight pass: group recommendations per resource, keep each one's top matches, average the scores, and rank. Returns the top resources with their best projects.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input candidatesInput) (*mcp.CallToolResult, candidatesOutput, error) {
		snap := deps.Holder.Get()
		recs := staffing.CombinedRecommendations(snap.Catalog, snap.Affinity)
		candidates := staffing.SelectCandidates(snap.Catalog, recs, input.TopProjects, input.TopResources)

		return nil, candidatesOutput{
			Candidates: candidates,
			Summary: fmt.Sprintf("%d candidates selected from %d resources",
				len(candidates), len(snap.Catalog.Resources)),
		}, nil
	})
}
