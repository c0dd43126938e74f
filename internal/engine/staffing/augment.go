package staffing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_staffing/internal/engine"
)

// Prompt digest limits. The provider sees a compact catalog slice, not the
// full dataset.
const (
	maxPromptResources = 10
	maxPromptProjects  = 10
	maxPromptNotes     = 280

	// maxRawResponse caps the provider reply kept for inspection when it
	// cannot be parsed.
	maxRawResponse = 2000
)

const insightSystemPrompt = `You are a staffing advisor for a software consultancy.
You receive a digest of people ("resources"), projects, and precomputed match scores.
For every candidate resource, refine the analysis: a sharper summary, a rationale per
suggested project, skill highlights, skill gaps, and one development idea.

Respond with valid JSON only: a JSON array, one element per candidate, shaped as
[
  {
    "resourceId": "as given",
    "summary": "2-3 sentences, plain text",
    "suggestedProjects": [{"projectId": "as given", "rationale": "1 sentence"}],
    "skillHighlights": ["skill", "..."],
    "skillGaps": ["skill", "..."],
    "developmentIdeas": "1-2 sentences"
  }
]

Rules:
- Keep every resourceId and projectId exactly as given. Do not invent new ones.
- Do not change or invent match scores; they are computed upstream.
- Plain text only inside strings: no markdown, no bullet characters.
- Return ONLY the JSON array, no markdown, no explanation.`

const insightUserPrompt = `RESOURCES:
%s
PROJECTS:
%s
CANDIDATE MATCHES:
%s
Write one insight object per candidate resourceId, in the same order.`

// GenerateInsights runs the full insight pipeline for the given candidates:
// heuristic baseline, optional provider augmentation, persistence. Every
// terminal branch persists its result except the configured-but-no-candidates
// one. Provider trouble degrades to the heuristic baseline, never fails the
// run.
func GenerateInsights(ctx context.Context, cat *Catalog, candidates []Candidate, completer engine.ChatCompleter, store InsightStore) GenerateResult {
	engine.IncrInsightRuns()

	if completer == nil {
		res := GenerateResult{Insights: BuildHeuristicInsights(cat, candidates)}
		persistInsights(ctx, store, &res)
		return res
	}
	if len(candidates) == 0 {
		return GenerateResult{Insights: []ResourceInsight{}, Error: "no candidates to analyze"}
	}

	base := BuildHeuristicInsights(cat, candidates)
	start := time.Now()
	reply, err := completer.Complete(ctx, []engine.ChatMessage{
		{Role: engine.RoleSystem, Content: insightSystemPrompt},
		{Role: engine.RoleUser, Content: buildInsightPrompt(cat, candidates)},
	})
	if err != nil {
		slog.Warn("insight augmentation failed, keeping heuristics", slog.Any("error", err))
		res := GenerateResult{Insights: base, Error: err.Error()}
		persistInsights(ctx, store, &res)
		return res
	}

	res := GenerateResult{Model: reply.Model, LatencyMs: time.Since(start).Milliseconds()}
	parsed, perr := parseInsightAnswer(reply.Content)
	if perr != nil {
		slog.Warn("unparseable provider answer, keeping heuristics", slog.Any("error", perr))
		res.Insights = base
		res.Warning = "unparseable provider response"
		res.RawProviderResponse = engine.TruncateRunes(reply.Content, maxRawResponse, "...")
		persistInsights(ctx, store, &res)
		return res
	}

	res.Insights = mergeInsights(base, parsed)
	res.UsingAzure = true
	persistInsights(ctx, store, &res)
	return res
}

func persistInsights(ctx context.Context, store InsightStore, res *GenerateResult) {
	if store == nil || len(res.Insights) == 0 {
		return
	}
	now := time.Now().UTC()
	records := make([]StoredInsight, 0, len(res.Insights))
	for _, ins := range res.Insights {
		records = append(records, StoredInsight{
			ResourceInsight:     ins,
			GeneratedAt:         now,
			UsingAzure:          res.UsingAzure,
			Model:               res.Model,
			LatencyMs:           res.LatencyMs,
			RawProviderResponse: res.RawProviderResponse,
		})
	}
	if err := store.Upsert(ctx, records); err != nil {
		engine.IncrStoreErrors()
		slog.Warn("insight store upsert failed", slog.Any("error", err))
		res.StoreError = err.Error()
	}
}

// buildInsightPrompt renders the compact digest: candidate resources first,
// the projects they matched, then per-candidate match context.
func buildInsightPrompt(cat *Catalog, candidates []Candidate) string {
	var resources strings.Builder
	for i, c := range candidates {
		if i >= maxPromptResources {
			break
		}
		r := cat.ResourceByID(c.ResourceID)
		if r == nil {
			continue
		}
		names := make([]string, 0, len(r.Skills))
		for _, s := range r.Skills {
			names = append(names, s.Name)
		}
		fmt.Fprintf(&resources, "- %s | %s | %s | %s | %.0fh/month | skills: %s\n",
			r.ID, r.Name, valueOr(r.MacroArea, "n/a"), valueOr(r.Seniority, "n/a"),
			r.AvailabilityHours, valueOr(strings.Join(names, ", "), "none"))
		if len(r.PreferredTechs) > 0 {
			fmt.Fprintf(&resources, "  prefers: %s\n", strings.Join(r.PreferredTechs, ", "))
		}
		if r.Notes != "" {
			fmt.Fprintf(&resources, "  notes: %s\n", engine.TruncateRunes(r.Notes, maxPromptNotes, "..."))
		}
	}

	var projects strings.Builder
	listed := make(map[string]bool)
	count := 0
	addProject := func(p *Project) {
		if p == nil || listed[p.ID] || count >= maxPromptProjects {
			return
		}
		listed[p.ID] = true
		count++
		needs := make([]string, 0, len(p.Needs))
		for _, n := range p.Needs {
			needs = append(needs, fmt.Sprintf("%s (%s)", n.Label, n.Priority))
		}
		fmt.Fprintf(&projects, "- %s | %s | %s | needs: %s\n",
			p.ID, p.Title, valueOr(p.MacroArea, "n/a"), valueOr(strings.Join(needs, ", "), "none"))
	}
	for _, c := range candidates {
		for _, rec := range c.TopProjects {
			addProject(cat.ProjectByID(rec.ProjectID))
		}
	}
	for i := range cat.Projects {
		addProject(&cat.Projects[i])
	}

	var matches strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&matches, "- %s | average score %.2f\n", c.ResourceID, c.AverageScore)
		for _, rec := range c.TopProjects {
			fmt.Fprintf(&matches, "  * %s | score %.2f | matched: %s | missing: %s\n",
				rec.ProjectID, rec.Score,
				valueOr(strings.Join(rec.MatchedSkills, ", "), "none"),
				valueOr(strings.Join(rec.MissingSkills, ", "), "none"))
		}
	}

	return fmt.Sprintf(insightUserPrompt, resources.String(), projects.String(), matches.String())
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// --- Provider answer parsing ---

// llmInsight mirrors the documented answer shape with tolerant field types:
// models occasionally emit numbers or bools where strings belong.
type llmInsight struct {
	ResourceID        any             `json:"resourceId"`
	Summary           any             `json:"summary"`
	SuggestedProjects []llmSuggestion `json:"suggestedProjects"`
	SkillHighlights   []any           `json:"skillHighlights"`
	SkillGaps         []any           `json:"skillGaps"`
	DevelopmentIdeas  any             `json:"developmentIdeas"`
}

type llmSuggestion struct {
	ProjectID any `json:"projectId"`
	Rationale any `json:"rationale"`
}

// parseInsightAnswer accepts either a bare JSON array or an object wrapping
// it under "insights", with or without markdown fences.
func parseInsightAnswer(content string) ([]llmInsight, error) {
	s := engine.StripFences(content)
	if s == "" {
		return nil, errors.New("empty answer")
	}
	var arr []llmInsight
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		return arr, nil
	}
	var wrapped struct {
		Insights []llmInsight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err == nil && wrapped.Insights != nil {
		return wrapped.Insights, nil
	}
	return nil, errors.New("answer is neither an insight array nor an insights object")
}

// mergeInsights overlays parsed provider fields onto the heuristic baseline.
// Merge is field-level by resourceId: only non-empty values override, scores
// stay computed, unknown resourceIds are dropped, candidate order is kept.
func mergeInsights(base []ResourceInsight, parsed []llmInsight) []ResourceInsight {
	byID := make(map[string]llmInsight, len(parsed))
	for _, li := range parsed {
		if id := strings.TrimSpace(coerceString(li.ResourceID)); id != "" {
			byID[id] = li
		}
	}

	out := make([]ResourceInsight, len(base))
	copy(out, base)
	for i := range out {
		li, ok := byID[out[i].ResourceID]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(coerceString(li.Summary)); s != "" {
			out[i].Summary = s
		}
		if vs := coerceStrings(li.SkillHighlights); len(vs) > 0 {
			out[i].SkillHighlights = vs
		}
		if vs := coerceStrings(li.SkillGaps); len(vs) > 0 {
			out[i].SkillGaps = vs
		}
		if s := strings.TrimSpace(coerceString(li.DevelopmentIdeas)); s != "" {
			out[i].DevelopmentIdeas = s
		}
		if len(li.SuggestedProjects) > 0 {
			rationaleByProject := make(map[string]string, len(li.SuggestedProjects))
			for _, sp := range li.SuggestedProjects {
				id := strings.TrimSpace(coerceString(sp.ProjectID))
				rationale := strings.TrimSpace(coerceString(sp.Rationale))
				if id != "" && rationale != "" {
					rationaleByProject[id] = rationale
				}
			}
			if len(rationaleByProject) > 0 {
				merged := make([]SuggestedProject, len(out[i].SuggestedProjects))
				copy(merged, out[i].SuggestedProjects)
				for j := range merged {
					if r, ok := rationaleByProject[merged[j].ProjectID]; ok {
						merged[j].Rationale = r
					}
				}
				out[i].SuggestedProjects = merged
			}
		}
	}
	return out
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func coerceStrings(vals []any) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(coerceString(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
