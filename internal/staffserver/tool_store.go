package staffserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

type listInsightsOutput struct {
	Insights []staffing.StoredInsight `json:"insights"`
	Total    int                      `json:"total"`
}

func registerListInsights(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_insights",
		Description: "List every stored insight: one record per resource, the latest generation wins. Includes generation time, provider usage, and model.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, listInsightsOutput, error) {
		records, err := deps.Store.Load(ctx)
		if err != nil {
			return nil, listInsightsOutput{}, fmt.Errorf("load insight store: %w", err)
		}
		return nil, listInsightsOutput{Insights: records, Total: len(records)}, nil
	})
}
