package staffserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_staffing/internal/catalog"
)

func registerCatalogStats(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "catalog_stats",
		Description: "Show the current catalog snapshot: files loaded, resource/project/affinity counts, load errors, and load time.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, catalog.LoadMeta, error) {
		return nil, deps.Holder.Get().Meta, nil
	})
}

func registerCatalogRefresh(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "catalog_refresh",
		Description: "Reload the catalog files from disk and swap in the new snapshot. Load problems land in the returned metadata, not in a failure.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, catalog.LoadMeta, error) {
		return nil, deps.Holder.Refresh().Meta, nil
	})
}
