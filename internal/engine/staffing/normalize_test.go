package staffing

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeResourceCompact(t *testing.T) {
	raw := json.RawMessage(`["Lucía Gómez", "Cloud Infrastructure", "senior", "120,5", "DevOps|Terraform", "Azure", "prefers platform work"]`)

	r, err := DecodeResource(raw)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}
	if r.ID != "lucia-gomez" {
		t.Errorf("id = %q, want lucia-gomez", r.ID)
	}
	if r.MacroArea != "Cloud Infrastructure" || r.Seniority != "senior" {
		t.Errorf("area/seniority = %q/%q", r.MacroArea, r.Seniority)
	}
	if r.AvailabilityHours != 120.5 {
		t.Errorf("hours = %v, want 120.5", r.AvailabilityHours)
	}
	if len(r.Skills) != 3 {
		t.Fatalf("skills = %d, want 3", len(r.Skills))
	}
	if r.Skills[0].ID != "devops" || r.Skills[0].Source != SourceCompetency || r.Skills[0].Level != "senior" {
		t.Errorf("first skill = %+v", r.Skills[0])
	}
	if r.Skills[2].ID != "azure" || r.Skills[2].Source != SourceTechnology {
		t.Errorf("tech skill = %+v", r.Skills[2])
	}
	if r.Notes != "prefers platform work" {
		t.Errorf("notes = %q", r.Notes)
	}
}

func TestDecodeResourceCompactShortRow(t *testing.T) {
	r, err := DecodeResource(json.RawMessage(`["Ann Lee", "Data", "mid", "80"]`))
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}
	if r.AvailabilityHours != 80 || len(r.Skills) != 0 {
		t.Errorf("got hours %v, skills %d", r.AvailabilityHours, len(r.Skills))
	}
}

func TestDecodeResourceKeyed(t *testing.T) {
	raw := json.RawMessage(`{"id": "EMP-7", "name": "Marco Bianchi", "area": "Delivery", "seniority": "mid",
		"hours": 96, "skills": "Project Management|Scrum", "techs": "Jira", "note": "part time"}`)

	r, err := DecodeResource(raw)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}
	if r.ID != "EMP-7" {
		t.Errorf("id = %q, want explicit EMP-7", r.ID)
	}
	if r.AvailabilityHours != 96 {
		t.Errorf("hours = %v, want 96", r.AvailabilityHours)
	}
	ids := skillIDs(r.Skills)
	if !reflect.DeepEqual(ids, []string{"project-management", "scrum", "jira"}) {
		t.Errorf("skill ids = %v", ids)
	}
}

func TestDecodeResourceKeyedStringHours(t *testing.T) {
	raw := json.RawMessage(`{"name": "Eva Braun", "area": "Data", "hours": "1.234,5"}`)
	r, err := DecodeResource(raw)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}
	if r.AvailabilityHours != 1234.5 {
		t.Errorf("hours = %v, want 1234.5", r.AvailabilityHours)
	}
	if r.ID != "eva-braun" {
		t.Errorf("id = %q, want slug of name", r.ID)
	}
}

func TestDecodeResourceEnriched(t *testing.T) {
	raw := json.RawMessage(`{
		"registration": "REG-042",
		"fullName": "Sofía Álvarez",
		"macroArea": "Data & AI",
		"seniority": "senior",
		"availabilityHours": "64",
		"profile": {
			"competencies": [{"name": "Machine Learning", "level": "expert"}, "Data Engineering"],
			"technologies": ["Python", {"name": "Spark", "level": "advanced"}],
			"preferredTechs": ["dbt", "Airflow"]
		},
		"notes": "returning from leave in October"
	}`)

	r, err := DecodeResource(raw)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}
	if r.ID != "REG-042" {
		t.Errorf("id = %q, want registration", r.ID)
	}
	if r.Name != "Sofía Álvarez" || r.MacroArea != "Data & AI" {
		t.Errorf("name/area = %q/%q", r.Name, r.MacroArea)
	}
	if r.AvailabilityHours != 64 {
		t.Errorf("hours = %v, want 64", r.AvailabilityHours)
	}
	ids := skillIDs(r.Skills)
	want := []string{"machine-learning", "data-engineering", "python", "spark"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("skill ids = %v, want %v", ids, want)
	}
	if r.Skills[0].Level != "expert" {
		t.Errorf("explicit level lost: %+v", r.Skills[0])
	}
	if r.Skills[1].Level != "senior" {
		t.Errorf("competency without level should inherit seniority: %+v", r.Skills[1])
	}
	if !reflect.DeepEqual(r.PreferredTechs, []string{"dbt", "Airflow"}) {
		t.Errorf("preferred techs = %v", r.PreferredTechs)
	}
}

func TestDecodeResourceBadRows(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"not json", `{{`},
		{"compact too short", `["Only Name", "Area"]`},
		{"keyed no name", `{"area": "Data", "hours": 10}`},
		{"enriched no name", `{"registration": "R1", "availabilityHours": 10}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeResource(json.RawMessage(tt.raw)); err == nil {
				t.Errorf("DecodeResource(%s) expected error", tt.raw)
			}
		})
	}
}

func TestDecodeResourceUnparseableHoursDefaultsZero(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"compact", `["Ann", "Data", "mid", "n/d", "Go"]`},
		{"keyed", `{"name": "Ann", "area": "Data", "hours": "n/d", "skills": "Go"}`},
		{"enriched", `{"registration": "R1", "fullName": "Ann", "availabilityHours": "n/d"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeResource(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("DecodeResource: %v", err)
			}
			if r.Name != "Ann" {
				t.Errorf("name = %q, want Ann", r.Name)
			}
			if r.AvailabilityHours != 0 {
				t.Errorf("hours = %v, want 0 for unparseable input", r.AvailabilityHours)
			}
		})
	}
}

func TestDecodeProject(t *testing.T) {
	raw := json.RawMessage(`{"code": "CLD-01", "name": "Billing Core", "title": "Cloud Revamp",
		"area": "Infrastructure", "status": "active", "complexity": "high",
		"technologyCategory": "Cloud", "idealTeam": "2 seniors, 1 mid", "aiNote": "prefers ops background",
		"profiles": "DevOps|Azure| Site Reliability "}`)

	p, embedded, err := DecodeProject(raw)
	if err != nil {
		t.Fatalf("DecodeProject: %v", err)
	}
	if p.ID != "cld-01-cloud-revamp" || p.Code != "CLD-01" {
		t.Errorf("id/code = %q/%q, want slug of code plus title", p.ID, p.Code)
	}
	if p.SystemName != "Billing Core" || p.TechCategory != "Cloud" {
		t.Errorf("name/category = %q/%q", p.SystemName, p.TechCategory)
	}
	if p.IdealTeam != "2 seniors, 1 mid" || p.AINote != "prefers ops background" {
		t.Errorf("team/note = %q/%q", p.IdealTeam, p.AINote)
	}
	if len(embedded) != 0 {
		t.Errorf("embedded affinity = %v, want none", embedded)
	}
	if len(p.Needs) != 3 {
		t.Fatalf("needs = %d, want 3", len(p.Needs))
	}
	if p.Needs[2].SkillID != "site-reliability" || p.Needs[2].Label != "Site Reliability" {
		t.Errorf("third need = %+v", p.Needs[2])
	}
	for _, n := range p.Needs {
		if n.Priority != "high" {
			t.Errorf("need %s priority = %q, want high", n.SkillID, n.Priority)
		}
	}
}

func TestDecodeProjectEmbeddedAffinity(t *testing.T) {
	raw := json.RawMessage(`{"code": "CLD-01", "title": "Cloud Revamp",
		"affinity": "0,82", "resources": "maria-rossi| luca-bianchi "}`)

	p, embedded, err := DecodeProject(raw)
	if err != nil {
		t.Fatalf("DecodeProject: %v", err)
	}
	want := []AffinityRow{
		{ResourceRef: "maria-rossi", ProjectRef: "cld-01-cloud-revamp", Affinity: 0.82},
		{ResourceRef: "luca-bianchi", ProjectRef: "cld-01-cloud-revamp", Affinity: 0.82},
	}
	if !reflect.DeepEqual(embedded, want) {
		t.Errorf("embedded = %+v, want %+v", embedded, want)
	}
	if p.ID != "cld-01-cloud-revamp" {
		t.Errorf("id = %q", p.ID)
	}
}

func TestCatalogProjectByCompositeRef(t *testing.T) {
	p := Project{ID: "cld-01-cloud-revamp", Code: "CLD-01", Title: "Cloud Revamp"}
	cat := NewCatalog(nil, []Project{p})

	if got := cat.ProjectByKey("cld-01", "cloud revamp"); got == nil || got.ID != p.ID {
		t.Errorf("ProjectByKey = %v, want %q (case-insensitive)", got, p.ID)
	}
	if got := cat.ProjectByRef("CLD-01 :: Cloud Revamp"); got == nil || got.ID != p.ID {
		t.Errorf("ProjectByRef composite = %v, want %q", got, p.ID)
	}
	if got := cat.ProjectByKey("CLD-01", "Other Title"); got != nil {
		t.Errorf("ProjectByKey mismatch = %v, want nil", got)
	}
}

func TestDecodeProjectPriorityDefaults(t *testing.T) {
	tests := []struct {
		complexity string
		want       string
	}{
		{"high", "high"},
		{"HIGH", "high"},
		{"medium", "medium"},
		{"low", "low"},
		{"undefined", "medium"},
		{"", "medium"},
	}
	for _, tt := range tests {
		t.Run("complexity "+tt.complexity, func(t *testing.T) {
			raw := json.RawMessage(`{"title": "T", "complexity": "` + tt.complexity + `", "profiles": "Go"}`)
			p, _, err := DecodeProject(raw)
			if err != nil {
				t.Fatalf("DecodeProject: %v", err)
			}
			if p.Needs[0].Priority != tt.want {
				t.Errorf("priority = %q, want %q", p.Needs[0].Priority, tt.want)
			}
		})
	}
}

func TestDecodeAffinity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AffinityRow
	}{
		{"number", `{"resource": "maria", "project": "cloud", "affinity": 0.82}`,
			AffinityRow{ResourceRef: "maria", ProjectRef: "cloud", Affinity: 0.82}},
		{"locale string", `{"resource": "maria", "project": "cloud", "affinity": "0,82"}`,
			AffinityRow{ResourceRef: "maria", ProjectRef: "cloud", Affinity: 0.82}},
		{"missing value", `{"resource": "maria", "project": "cloud"}`,
			AffinityRow{ResourceRef: "maria", ProjectRef: "cloud", Affinity: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAffinity(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("DecodeAffinity: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := DecodeAffinity(json.RawMessage(`{"resource": "", "project": "cloud"}`)); err == nil {
		t.Error("expected error for missing resource ref")
	}
}

func TestNormalizeCatalogSkipsBadRows(t *testing.T) {
	resourceRows := []RawRow{
		{File: "resources.json", Index: 0, Data: json.RawMessage(`["Good One", "Data", "mid", "80", "Go"]`)},
		{File: "resources.json", Index: 1, Data: json.RawMessage(`["Broken"]`)},
		{File: "resources.json", Index: 2, Data: json.RawMessage(`["Good One", "Data", "mid", "80", "Go"]`)}, // duplicate id
	}
	projectRows := []RawRow{
		{File: "projects.json", Index: 0, Data: json.RawMessage(`{"title": "P", "profiles": "Go", "affinity": 0.6, "resources": "good-one"}`)},
		{File: "projects.json", Index: 1, Data: json.RawMessage(`{"profiles": "Go"}`)}, // no title
	}

	cat, embedded, errs := NormalizeCatalog(resourceRows, projectRows)
	if len(cat.Resources) != 1 || len(cat.Projects) != 1 {
		t.Fatalf("got %d resources, %d projects; want 1 and 1", len(cat.Resources), len(cat.Projects))
	}
	if len(embedded) != 1 || embedded[0].ProjectRef != "p" || embedded[0].Affinity != 0.6 {
		t.Fatalf("embedded affinity = %+v, want one row for project p", embedded)
	}
	if len(errs) != 3 {
		t.Fatalf("got %d error markers, want 3: %v", len(errs), errs)
	}
	for _, e := range errs {
		if !strings.Contains(e, ".json[") {
			t.Errorf("marker %q missing file[index] origin", e)
		}
	}
}

func skillIDs(skills []Skill) []string {
	ids := make([]string, 0, len(skills))
	for _, s := range skills {
		ids = append(ids, s.ID)
	}
	return ids
}
