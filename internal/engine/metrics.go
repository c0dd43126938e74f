package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	CatalogLoads  atomic.Int64
	CatalogErrors atomic.Int64
	MatchRuns     atomic.Int64
	InsightRuns   atomic.Int64
	LLMCalls      atomic.Int64
	LLMErrors     atomic.Int64
	StoreLoads    atomic.Int64
	StoreUpserts  atomic.Int64
	StoreErrors   atomic.Int64
	EnrichParses  atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"catalog_loads":  metrics.CatalogLoads.Load(),
		"catalog_errors": metrics.CatalogErrors.Load(),
		"match_runs":     metrics.MatchRuns.Load(),
		"insight_runs":   metrics.InsightRuns.Load(),
		"llm_calls":      metrics.LLMCalls.Load(),
		"llm_errors":     metrics.LLMErrors.Load(),
		"store_loads":    metrics.StoreLoads.Load(),
		"store_upserts":  metrics.StoreUpserts.Load(),
		"store_errors":   metrics.StoreErrors.Load(),
		"enrich_parses":  metrics.EnrichParses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"catalog_loads", "catalog_errors",
		"match_runs", "insight_runs",
		"llm_calls", "llm_errors",
		"store_loads", "store_upserts", "store_errors",
		"enrich_parses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the staffing and catalog sub-packages.
func IncrCatalogLoads()  { metrics.CatalogLoads.Add(1) }
func IncrCatalogErrors() { metrics.CatalogErrors.Add(1) }
func IncrMatchRuns()     { metrics.MatchRuns.Add(1) }
func IncrInsightRuns()   { metrics.InsightRuns.Add(1) }
func IncrLLMCalls()      { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()     { metrics.LLMErrors.Add(1) }
func IncrStoreLoads()    { metrics.StoreLoads.Add(1) }
func IncrStoreUpserts()  { metrics.StoreUpserts.Add(1) }
func IncrStoreErrors()   { metrics.StoreErrors.Add(1) }
func IncrEnrichParses()  { metrics.EnrichParses.Add(1) }
