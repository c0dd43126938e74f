package staffserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

type reanalyzeInput struct {
	ResourceIDs []string `json:"resource_ids" jsonschema:"Resources to re-analyze, by ID, slug, or display name"`
}

// reanalyzeItem reports one resource of the batch. Status: ok (insight
// generated and stored), degraded (heuristic kept after a provider
// problem), error (resource unknown or store write failed).
type reanalyzeItem struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type reanalyzeOutput struct {
	RunID    string          `json:"run_id"`
	Items    []reanalyzeItem `json:"items"`
	OK       int             `json:"ok"`
	Degraded int             `json:"degraded"`
	Failed   int             `json:"failed"`
	Summary  string          `json:"summary"`
}

func registerReanalyzeResources(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reanalyze_resources",
		Description: "Regenerate and persist insights for specific resources, one at a time. A failing resource never stops the batch; each item reports its own status (ok, degraded, error).",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input reanalyzeInput) (*mcp.CallToolResult, reanalyzeOutput, error) {
		if len(input.ResourceIDs) == 0 {
			return nil, reanalyzeOutput{}, errors.New("resource_ids is required")
		}

		snap := deps.Holder.Get()
		recs := staffing.CombinedRecommendations(snap.Catalog, snap.Affinity)

		out := reanalyzeOutput{RunID: uuid.NewString()}
		for _, ref := range input.ResourceIDs {
			out.Items = append(out.Items, reanalyzeOne(ctx, deps, snap.Catalog, recs, ref))
		}
		for _, item := range out.Items {
			switch item.Status {
			case "ok":
				out.OK++
			case "degraded":
				out.Degraded++
			default:
				out.Failed++
			}
		}
		out.Summary = fmt.Sprintf("run %s: %d ok, %d degraded, %d failed of %d",
			out.RunID, out.OK, out.Degraded, out.Failed, len(out.Items))
		slog.Info("reanalysis finished", slog.String("run", out.RunID),
			slog.Int("ok", out.OK), slog.Int("degraded", out.Degraded), slog.Int("failed", out.Failed))
		return nil, out, nil
	})
}

func reanalyzeOne(ctx context.Context, deps Deps, cat *staffing.Catalog, recs []staffing.Recommendation, ref string) reanalyzeItem {
	r := cat.ResourceByRef(ref)
	if r == nil {
		return reanalyzeItem{ResourceID: ref, Status: "error", Error: "unknown resource"}
	}
	candidate, ok := staffing.CandidateFor(cat, recs, r.ID, staffing.DefaultTopProjects)
	if !ok {
		return reanalyzeItem{ResourceID: r.ID, Status: "error", Error: "unknown resource"}
	}

	result := staffing.GenerateInsights(ctx, cat, []staffing.Candidate{candidate}, deps.Completer, deps.Store)
	item := reanalyzeItem{ResourceID: r.ID, Status: "ok"}
	switch {
	case result.StoreError != "":
		item.Status = "error"
		item.Error = result.StoreError
	case result.Error != "":
		item.Status = "degraded"
		item.Error = result.Error
	case result.Warning != "":
		item.Status = "degraded"
		item.Error = result.Warning
	}
	return item
}
