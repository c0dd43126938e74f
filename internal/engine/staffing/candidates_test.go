package staffing

import "testing"

func rec(resourceID, projectID string, score float64) Recommendation {
	return Recommendation{
		ResourceID:   resourceID,
		ResourceName: resourceID,
		ProjectID:    projectID,
		ProjectTitle: projectID,
		Score:        score,
		Source:       SourceDerivedMatch,
	}
}

func TestSelectCandidates(t *testing.T) {
	resources := []Resource{
		{ID: "r1", Name: "R1", AvailabilityHours: 100},
		{ID: "r2", Name: "R2", AvailabilityHours: 80},
		{ID: "r3", Name: "R3", AvailabilityHours: 40}, // no recommendations
	}
	cat := NewCatalog(resources, nil)
	recs := []Recommendation{
		rec("r1", "p1", 0.9),
		rec("r1", "p2", 0.8),
		rec("r1", "p3", 0.7),
		rec("r1", "p4", 0.6), // beyond top 3, must not count
		rec("r2", "p1", 0.5),
	}

	out := SelectCandidates(cat, recs, 3, 5)
	if len(out) != 3 {
		t.Fatalf("got %d candidates, want 3", len(out))
	}

	if out[0].ResourceID != "r1" {
		t.Fatalf("top candidate = %s, want r1", out[0].ResourceID)
	}
	if len(out[0].TopProjects) != 3 {
		t.Errorf("r1 top projects = %d, want 3", len(out[0].TopProjects))
	}
	if out[0].AverageScore != 0.8 { // (0.9+0.8+0.7)/3
		t.Errorf("r1 average = %v, want 0.8", out[0].AverageScore)
	}

	if out[1].ResourceID != "r2" || out[1].AverageScore != 0.5 {
		t.Errorf("second candidate = %s avg %v, want r2 avg 0.5", out[1].ResourceID, out[1].AverageScore)
	}

	if out[2].ResourceID != "r3" {
		t.Fatalf("last candidate = %s, want r3", out[2].ResourceID)
	}
	if out[2].AverageScore != 0 || len(out[2].TopProjects) != 0 {
		t.Errorf("r3 should have zero average and no projects, got %v / %d",
			out[2].AverageScore, len(out[2].TopProjects))
	}
}

func TestSelectCandidatesCapsResources(t *testing.T) {
	var resources []Resource
	var recs []Recommendation
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, id := range ids {
		resources = append(resources, Resource{ID: id, Name: id})
		recs = append(recs, rec(id, "p", float64(len(ids)-i)/10))
	}
	cat := NewCatalog(resources, nil)

	out := SelectCandidates(cat, recs, 0, 0) // defaults: 3 projects, 5 resources
	if len(out) != DefaultTopResources {
		t.Fatalf("got %d candidates, want %d", len(out), DefaultTopResources)
	}
	if out[0].ResourceID != "a" || out[4].ResourceID != "e" {
		t.Errorf("order = %s..%s, want a..e", out[0].ResourceID, out[4].ResourceID)
	}
}

func TestSelectCandidatesStableOnTies(t *testing.T) {
	resources := []Resource{
		{ID: "first", Name: "First"},
		{ID: "second", Name: "Second"},
	}
	cat := NewCatalog(resources, nil)
	recs := []Recommendation{
		rec("second", "p", 0.5),
		rec("first", "p", 0.5),
	}

	out := SelectCandidates(cat, recs, 3, 5)
	// Equal averages keep catalog enumeration order.
	if out[0].ResourceID != "first" || out[1].ResourceID != "second" {
		t.Errorf("tie order = %s, %s; want first, second", out[0].ResourceID, out[1].ResourceID)
	}
}

func TestCandidateFor(t *testing.T) {
	resources := []Resource{
		{ID: "r1", Name: "R1", MacroArea: "Data", AvailabilityHours: 100},
		{ID: "r2", Name: "R2", AvailabilityHours: 80},
	}
	cat := NewCatalog(resources, nil)
	recs := []Recommendation{
		rec("r1", "p1", 0.9),
		rec("r2", "p1", 0.5),
		rec("r1", "p2", 0.8),
		rec("r1", "p3", 0.7),
		rec("r1", "p4", 0.6),
	}

	c, ok := CandidateFor(cat, recs, "r1", 3)
	if !ok {
		t.Fatal("expected r1 to resolve")
	}
	if len(c.TopProjects) != 3 || c.AverageScore != 0.8 {
		t.Errorf("r1 candidate = %d projects avg %v, want 3 projects avg 0.8",
			len(c.TopProjects), c.AverageScore)
	}
	for _, tp := range c.TopProjects {
		if tp.ResourceID != "r1" {
			t.Errorf("foreign recommendation leaked in: %s", tp.ResourceID)
		}
	}

	if _, ok := CandidateFor(cat, recs, "ghost", 3); ok {
		t.Error("unknown resource should not resolve")
	}
}

func TestSelectCandidatesCopiesCandidateFields(t *testing.T) {
	resources := []Resource{
		{ID: "r1", Name: "Maria", MacroArea: "Data", Seniority: "mid", AvailabilityHours: 96},
	}
	cat := NewCatalog(resources, nil)

	out := SelectCandidates(cat, []Recommendation{rec("r1", "p", 0.4)}, 3, 5)
	c := out[0]
	if c.ResourceName != "Maria" || c.MacroArea != "Data" || c.Seniority != "mid" || c.AvailabilityHours != 96 {
		t.Errorf("candidate fields not carried over: %+v", c)
	}
}
