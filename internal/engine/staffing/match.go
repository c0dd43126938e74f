package staffing

import (
	"log/slog"
	"math"
	"sort"

	"github.com/anatolykoptev/go_staffing/internal/engine"
)

// Scoring model: weighted sum of skill coverage, availability and
// macro-area alignment, clamped to [0,1].
const (
	weightCoverage     = 0.5
	weightAvailability = 0.3
	weightCoordination = 0.2

	fullTimeHours = 160.0
)

// ScorePair computes the compatibility score for one resource-project
// pairing and returns the sub-scores and the matched and missing need labels.
func ScorePair(r *Resource, p *Project) (score float64, detail MatchDetail, matched, missing []string) {
	matched, missing = MatchSkills(r, p)
	coverage := 0.0
	if len(p.Needs) > 0 {
		coverage = float64(len(matched)) / float64(len(p.Needs))
	}
	availability := clamp01(r.AvailabilityHours / fullTimeHours)
	coordination := 0.0
	if AreasAligned(r.MacroArea, p.MacroArea) {
		coordination = 1.0
	}
	detail = MatchDetail{
		SkillCoverage:     round2(coverage),
		AvailabilityScore: round2(availability),
		CoordinationScore: coordination,
	}
	score = clamp01(weightCoverage*coverage + weightAvailability*availability + weightCoordination*coordination)
	return score, detail, matched, missing
}

// MatchSkills joins project needs against resource skills by skill ID.
// Returned labels keep the project's need order.
func MatchSkills(r *Resource, p *Project) (matched, missing []string) {
	have := make(map[string]bool, len(r.Skills))
	for _, s := range r.Skills {
		have[s.ID] = true
	}
	for _, need := range p.Needs {
		if have[need.SkillID] {
			matched = append(matched, need.Label)
		} else {
			missing = append(missing, need.Label)
		}
	}
	return matched, missing
}

// AreasAligned reports whether two macro areas name the same unit,
// ignoring case and whitespace.
func AreasAligned(a, b string) bool {
	ka, kb := NormalizeKey(a), NormalizeKey(b)
	return ka != "" && ka == kb
}

// DeriveRecommendations scores every resource against every project.
// Pairings with no matched skill or with no availability are dropped.
// Output is sorted by score descending, ties in enumeration order.
func DeriveRecommendations(cat *Catalog) []Recommendation {
	engine.IncrMatchRuns()
	var recs []Recommendation
	for i := range cat.Resources {
		r := &cat.Resources[i]
		if r.AvailabilityHours <= 0 {
			continue
		}
		for j := range cat.Projects {
			p := &cat.Projects[j]
			score, detail, matched, missing := ScorePair(r, p)
			if len(matched) == 0 {
				continue
			}
			recs = append(recs, newRecommendation(r, p, score, detail, matched, missing, SourceDerivedMatch, ""))
		}
	}
	SortRecommendations(recs)
	return recs
}

// AffinityRecommendations builds recommendations from externally supplied
// pairings. A positive affinity value wins verbatim (clamped to [0,1]);
// otherwise the pairing is scored with the standard formula. Rows whose
// refs resolve to nothing are skipped.
func AffinityRecommendations(cat *Catalog, rows []AffinityRow) []Recommendation {
	engine.IncrMatchRuns()
	var recs []Recommendation
	for _, row := range rows {
		r := cat.ResourceByRef(row.ResourceRef)
		p := cat.ProjectByRef(row.ProjectRef)
		if r == nil || p == nil {
			slog.Warn("affinity row skipped: unresolved ref",
				slog.String("resource", row.ResourceRef),
				slog.String("project", row.ProjectRef))
			continue
		}
		score, detail, matched, missing := ScorePair(r, p)
		notes := ""
		if row.Affinity > 0 {
			score = clamp01(row.Affinity)
			notes = "externally supplied affinity score"
		}
		recs = append(recs, newRecommendation(r, p, score, detail, matched, missing, SourceAffinity, notes))
	}
	SortRecommendations(recs)
	return recs
}

// CombinedRecommendations merges both builder paths into one ranked list.
// Affinity rows take precedence: a derived pairing is dropped when the same
// resource-project pair already has an affinity recommendation.
func CombinedRecommendations(cat *Catalog, rows []AffinityRow) []Recommendation {
	recs := AffinityRecommendations(cat, rows)
	covered := make(map[[2]string]bool, len(recs))
	for _, rec := range recs {
		covered[[2]string{rec.ResourceID, rec.ProjectID}] = true
	}
	for _, rec := range DeriveRecommendations(cat) {
		if covered[[2]string{rec.ResourceID, rec.ProjectID}] {
			continue
		}
		recs = append(recs, rec)
	}
	SortRecommendations(recs)
	return recs
}

// SortRecommendations orders by score descending, keeping input order on ties.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

func newRecommendation(r *Resource, p *Project, score float64, detail MatchDetail, matched, missing []string, source, notes string) Recommendation {
	return Recommendation{
		ResourceID:        r.ID,
		ResourceName:      r.Name,
		ProjectID:         p.ID,
		ProjectTitle:      p.Title,
		MacroArea:         p.MacroArea,
		Score:             round2(score),
		MatchDetail:       detail,
		MatchedSkills:     matched,
		MissingSkills:     missing,
		AvailabilityHours: r.AvailabilityHours,
		MacroAreaMatch:    AreasAligned(r.MacroArea, p.MacroArea),
		Source:            source,
		Notes:             notes,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
