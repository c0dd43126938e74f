package staffing

import (
	"fmt"
	"math"
	"strings"
)

// BuildHeuristicInsights produces a deterministic insight for every
// candidate, in candidate order. Pure: no I/O, no failure paths.
func BuildHeuristicInsights(cat *Catalog, candidates []Candidate) []ResourceInsight {
	insights := make([]ResourceInsight, 0, len(candidates))
	for _, c := range candidates {
		insights = append(insights, buildInsight(cat, c))
	}
	return insights
}

func buildInsight(cat *Catalog, c Candidate) ResourceInsight {
	ins := ResourceInsight{
		ResourceID:   c.ResourceID,
		ResourceName: c.ResourceName,
		Summary:      summarySentence(c),
	}
	for _, rec := range c.TopProjects {
		ins.SuggestedProjects = append(ins.SuggestedProjects, SuggestedProject{
			ProjectID:    rec.ProjectID,
			ProjectTitle: rec.ProjectTitle,
			Score:        rec.Score,
			Rationale:    rationaleSentence(rec),
		})
	}
	ins.SkillHighlights, ins.SkillGaps = highlightsAndGaps(cat, c)
	ins.DevelopmentIdeas = developmentSentence(ins.SkillGaps)
	return ins
}

func summarySentence(c Candidate) string {
	area := c.MacroArea
	if area == "" {
		area = "unassigned"
	}
	if len(c.TopProjects) == 0 {
		return fmt.Sprintf("%s (%s, %.0fh available) has no project matches in the current catalog.",
			c.ResourceName, area, c.AvailabilityHours)
	}
	best := c.TopProjects[0]
	unit := "projects"
	if len(c.TopProjects) == 1 {
		unit = "project"
	}
	return fmt.Sprintf("%s (%s, %.0fh available) fits %s best at %d%%, averaging %d%% across %d suggested %s.",
		c.ResourceName, area, c.AvailabilityHours, best.ProjectTitle, pct(best.Score),
		pct(c.AverageScore), len(c.TopProjects), unit)
}

func rationaleSentence(rec Recommendation) string {
	var b strings.Builder
	if len(rec.MatchedSkills) > 0 {
		fmt.Fprintf(&b, "match %d%%, covers %s", pct(rec.Score), strings.Join(rec.MatchedSkills, ", "))
	} else {
		fmt.Fprintf(&b, "match %d%%, no skill mapped to this project's needs", pct(rec.Score))
	}
	if len(rec.MissingSkills) > 0 {
		fmt.Fprintf(&b, "; missing %s", strings.Join(rec.MissingSkills, ", "))
	}
	return b.String()
}

// highlightsAndGaps builds the deduplicated skill lists. Highlights union
// the resource's own skills, preferred techs and every matched need label;
// gaps are the missing need labels not already highlighted. First
// occurrence wins, original casing kept.
func highlightsAndGaps(cat *Catalog, c Candidate) (highlights, gaps []string) {
	seen := make(map[string]bool)
	add := func(dst []string, label string) []string {
		label = strings.TrimSpace(label)
		key := NormalizeKey(label)
		if key == "" || seen[key] {
			return dst
		}
		seen[key] = true
		return append(dst, label)
	}

	if r := cat.ResourceByID(c.ResourceID); r != nil {
		for _, s := range r.Skills {
			highlights = add(highlights, s.Name)
		}
		for _, tech := range r.PreferredTechs {
			highlights = add(highlights, tech)
		}
	}
	for _, rec := range c.TopProjects {
		for _, label := range rec.MatchedSkills {
			highlights = add(highlights, label)
		}
	}
	for _, rec := range c.TopProjects {
		for _, label := range rec.MissingSkills {
			gaps = add(gaps, label)
		}
	}
	return highlights, gaps
}

func developmentSentence(gaps []string) string {
	if len(gaps) == 0 {
		return "Keep deepening current strengths; no skill gaps surfaced for the suggested projects."
	}
	named := gaps
	if len(named) > 3 {
		named = named[:3]
	}
	return fmt.Sprintf("Invest in %s to qualify for more of the current project demand.", joinAnd(named))
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func pct(score float64) int {
	return int(math.Round(score * 100))
}
