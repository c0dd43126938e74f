package staffing

import "sort"

// Default candidate selection sizes.
const (
	DefaultTopProjects  = 3
	DefaultTopResources = 5
)

// SelectCandidates groups recommendations per resource, keeps each
// resource's topProjects best ones, averages them, and returns the
// topResources best resources. Every cataloged resource participates;
// ones with no recommendation carry an average of 0 and rank last.
func SelectCandidates(cat *Catalog, recs []Recommendation, topProjects, topResources int) []Candidate {
	if topProjects <= 0 {
		topProjects = DefaultTopProjects
	}
	if topResources <= 0 {
		topResources = DefaultTopResources
	}

	byResource := make(map[string][]Recommendation)
	for _, rec := range recs {
		byResource[rec.ResourceID] = append(byResource[rec.ResourceID], rec)
	}

	candidates := make([]Candidate, 0, len(cat.Resources))
	for i := range cat.Resources {
		r := &cat.Resources[i]
		candidates = append(candidates, buildCandidate(r, byResource[r.ID], topProjects))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AverageScore > candidates[j].AverageScore
	})
	if len(candidates) > topResources {
		candidates = candidates[:topResources]
	}
	return candidates
}

// CandidateFor builds the candidate view of one resource, for targeted
// re-analysis. Returns the zero Candidate and false when the resource is
// not in the catalog.
func CandidateFor(cat *Catalog, recs []Recommendation, resourceID string, topProjects int) (Candidate, bool) {
	r := cat.ResourceByID(resourceID)
	if r == nil {
		return Candidate{}, false
	}
	if topProjects <= 0 {
		topProjects = DefaultTopProjects
	}
	var own []Recommendation
	for _, rec := range recs {
		if rec.ResourceID == resourceID {
			own = append(own, rec)
		}
	}
	return buildCandidate(r, own, topProjects), true
}

func buildCandidate(r *Resource, own []Recommendation, topProjects int) Candidate {
	SortRecommendations(own)
	if len(own) > topProjects {
		own = own[:topProjects]
	}
	avg := 0.0
	if len(own) > 0 {
		sum := 0.0
		for _, rec := range own {
			sum += rec.Score
		}
		avg = round2(sum / float64(len(own)))
	}
	return Candidate{
		ResourceID:        r.ID,
		ResourceName:      r.Name,
		MacroArea:         r.MacroArea,
		Seniority:         r.Seniority,
		AvailabilityHours: r.AvailabilityHours,
		AverageScore:      avg,
		TopProjects:       own,
	}
}
