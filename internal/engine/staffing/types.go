package staffing

import (
	"strings"
	"time"
)

// --- Catalog types ---

// Skill source markers.
const (
	SourceCompetency = "competency"
	SourceTechnology = "technology"
	SourceDerived    = "derived"
)

// Skill is a single normalized capability of a resource.
type Skill struct {
	ID     string `json:"id"`     // slug, join key against project needs
	Name   string `json:"name"`   // original label
	Level  string `json:"level,omitempty"`
	Source string `json:"source"` // competency, technology, derived
}

// Resource is a person available for project work.
type Resource struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	MacroArea         string   `json:"macro_area"`
	Seniority         string   `json:"seniority,omitempty"`
	AvailabilityHours float64  `json:"availability_hours"`
	Skills            []Skill  `json:"skills"`
	PreferredTechs    []string `json:"preferred_techs,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}

// ProjectNeed is one capability a project asks for.
type ProjectNeed struct {
	SkillID  string `json:"skill_id"` // slug of Label
	Label    string `json:"label"`
	Priority string `json:"priority"` // high, medium, low
}

// Project is a staffing target with its required capabilities.
// ID is the slug of the system code plus title, the stable join key.
type Project struct {
	ID           string        `json:"id"`
	Code         string        `json:"code,omitempty"`
	SystemName   string        `json:"system_name,omitempty"`
	Title        string        `json:"title"`
	MacroArea    string        `json:"macro_area"`
	TechCategory string        `json:"tech_category,omitempty"`
	Complexity   string        `json:"complexity,omitempty"`
	Status       string        `json:"status,omitempty"`
	IdealTeam    string        `json:"ideal_team,omitempty"`
	AINote       string        `json:"ai_note,omitempty"`
	Needs        []ProjectNeed `json:"needs"`
}

// AffinityRow is an externally supplied resource-project pairing with an
// optional precomputed score. Refs may be IDs, slugs, or display names.
type AffinityRow struct {
	ResourceRef string  `json:"resource"`
	ProjectRef  string  `json:"project"`
	Affinity    float64 `json:"affinity"`
}

// Catalog is an immutable snapshot of normalized resources and projects.
// Lookup maps are built once at construction; mutate nothing after that.
type Catalog struct {
	Resources []Resource
	Projects  []Project

	resourceByID   map[string]*Resource
	resourceByName map[string]*Resource // NormalizeKey(name)
	projectByID    map[string]*Project
	projectByTitle map[string]*Project // NormalizeKey(title)
	projectByKey   map[string]*Project // projectKey(code, title)
}

// projectKey builds the composite lookup key for a project. Source files
// routinely reference projects by code and title together, with drifting
// case, so both halves are uppercased.
func projectKey(code, title string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	title = strings.ToUpper(strings.TrimSpace(title))
	if code == "" && title == "" {
		return ""
	}
	return code + " :: " + title
}

// NewCatalog builds the lookup indices over the given slices.
func NewCatalog(resources []Resource, projects []Project) *Catalog {
	c := &Catalog{
		Resources:      resources,
		Projects:       projects,
		resourceByID:   make(map[string]*Resource, len(resources)),
		resourceByName: make(map[string]*Resource, len(resources)),
		projectByID:    make(map[string]*Project, len(projects)),
		projectByTitle: make(map[string]*Project, len(projects)),
		projectByKey:   make(map[string]*Project, len(projects)),
	}
	for i := range c.Resources {
		r := &c.Resources[i]
		c.resourceByID[r.ID] = r
		if k := NormalizeKey(r.Name); k != "" {
			c.resourceByName[k] = r
		}
	}
	for i := range c.Projects {
		p := &c.Projects[i]
		c.projectByID[p.ID] = p
		if k := NormalizeKey(p.Title); k != "" {
			c.projectByTitle[k] = p
		}
		if k := projectKey(p.Code, p.Title); k != "" {
			c.projectByKey[k] = p
		}
	}
	return c
}

// ResourceByRef resolves a resource by ID, slug of the ref, or display name.
func (c *Catalog) ResourceByRef(ref string) *Resource {
	if r, ok := c.resourceByID[ref]; ok {
		return r
	}
	if r, ok := c.resourceByID[Slugify(ref)]; ok {
		return r
	}
	if r, ok := c.resourceByName[NormalizeKey(ref)]; ok {
		return r
	}
	return nil
}

// ProjectByRef resolves a project by ID, slug of the ref, title, or a
// composite "CODE :: Title" reference.
func (c *Catalog) ProjectByRef(ref string) *Project {
	if code, title, ok := strings.Cut(ref, "::"); ok {
		if p, found := c.projectByKey[projectKey(code, title)]; found {
			return p
		}
	}
	if p, ok := c.projectByID[ref]; ok {
		return p
	}
	if p, ok := c.projectByID[Slugify(ref)]; ok {
		return p
	}
	if p, ok := c.projectByTitle[NormalizeKey(ref)]; ok {
		return p
	}
	return nil
}

// ResourceByID returns the resource with the given ID, or nil.
func (c *Catalog) ResourceByID(id string) *Resource {
	return c.resourceByID[id]
}

// ProjectByID returns the project with the given ID, or nil.
func (c *Catalog) ProjectByID(id string) *Project {
	return c.projectByID[id]
}

// ProjectByKey returns the project with the given code and title, or nil.
func (c *Catalog) ProjectByKey(code, title string) *Project {
	return c.projectByKey[projectKey(code, title)]
}

// --- Matching types ---

// Recommendation sources.
const (
	SourceDerivedMatch = "derived"
	SourceAffinity     = "affinity"
)

// MatchDetail carries the sub-scores behind a recommendation score, in the
// same [0,1] range as the score itself.
type MatchDetail struct {
	SkillCoverage     float64 `json:"skill_coverage"`
	AvailabilityScore float64 `json:"availability_score"`
	CoordinationScore float64 `json:"coordination_score"`
}

// Recommendation is one scored resource-project pairing.
type Recommendation struct {
	ResourceID        string      `json:"resource_id"`
	ResourceName      string      `json:"resource_name"`
	ProjectID         string      `json:"project_id"`
	ProjectTitle      string      `json:"project_title"`
	MacroArea         string      `json:"macro_area,omitempty"` // project's area
	Score             float64     `json:"score"`                // [0,1], 2 decimals
	MatchDetail       MatchDetail `json:"match_detail"`
	MatchedSkills     []string    `json:"matched_skills,omitempty"`
	MissingSkills     []string    `json:"missing_skills,omitempty"`
	AvailabilityHours float64     `json:"availability_hours"`
	MacroAreaMatch    bool        `json:"macro_area_match"`
	Source            string      `json:"source"` // derived, affinity
	Notes             string      `json:"notes,omitempty"`
}

// Candidate is a resource ranked by its best recommendations.
type Candidate struct {
	ResourceID        string           `json:"resource_id"`
	ResourceName      string           `json:"resource_name"`
	MacroArea         string           `json:"macro_area"`
	Seniority         string           `json:"seniority,omitempty"`
	AvailabilityHours float64          `json:"availability_hours"`
	AverageScore      float64          `json:"average_score"`
	TopProjects       []Recommendation `json:"top_projects"`
}

// --- Insight types ---

// SuggestedProject is one project proposal inside an insight.
type SuggestedProject struct {
	ProjectID    string  `json:"project_id"`
	ProjectTitle string  `json:"project_title"`
	Score        float64 `json:"score"`
	Rationale    string  `json:"rationale"`
}

// ResourceInsight is the generated analysis for one resource.
type ResourceInsight struct {
	ResourceID        string             `json:"resource_id"`
	ResourceName      string             `json:"resource_name"`
	Summary           string             `json:"summary"`
	SuggestedProjects []SuggestedProject `json:"suggested_projects,omitempty"`
	SkillHighlights   []string           `json:"skill_highlights,omitempty"`
	SkillGaps         []string           `json:"skill_gaps,omitempty"`
	DevelopmentIdeas  string             `json:"development_ideas,omitempty"`
}

// StoredInsight is the persisted form of an insight. RawProviderResponse is
// kept only when the provider answer could not be parsed, so the reply can
// be inspected after the fact.
type StoredInsight struct {
	ResourceInsight
	GeneratedAt         time.Time `json:"generated_at"`
	UsingAzure          bool      `json:"using_azure"`
	Model               string    `json:"model,omitempty"`
	LatencyMs           int64     `json:"latency_ms,omitempty"`
	RawProviderResponse string    `json:"raw_provider_response,omitempty"`
}

// GenerateResult is the outcome of one insight generation run.
type GenerateResult struct {
	Insights   []ResourceInsight `json:"insights"`
	UsingAzure bool              `json:"using_azure"`
	Model      string            `json:"model,omitempty"`
	LatencyMs  int64             `json:"latency_ms,omitempty"`
	Error      string            `json:"error,omitempty"`
	Warning    string            `json:"warning,omitempty"`
	StoreError string            `json:"store_error,omitempty"`

	// RawProviderResponse holds the truncated provider reply when it could
	// not be parsed into insights.
	RawProviderResponse string `json:"raw_provider_response,omitempty"`
}
