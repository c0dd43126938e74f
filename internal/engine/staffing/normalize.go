package staffing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RawRow is one undecoded catalog record plus its origin, for error markers.
type RawRow struct {
	File  string
	Index int
	Data  json.RawMessage
}

// Person rows arrive in three shapes: a legacy compact array, a legacy keyed
// object, and the enriched export object. The enriched shape is recognized
// structurally by its "registration" field; arrays are the compact shape;
// everything else is treated as the keyed shape.

// compact array layout: name, macroArea, seniority, hours, competencies|,
// technologies|, notes. Fields past hours are optional.
const compactMinFields = 4

type keyedResourceRow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Area      string          `json:"area"`
	Seniority string          `json:"seniority"`
	Hours     json.RawMessage `json:"hours"`
	Skills    string          `json:"skills"`
	Techs     string          `json:"techs"`
	Note      string          `json:"note"`
}

type enrichedResourceRow struct {
	Registration string          `json:"registration"`
	FullName     string          `json:"fullName"`
	Name         string          `json:"name"`
	MacroArea    string          `json:"macroArea"`
	Seniority    string          `json:"seniority"`
	Availability json.RawMessage `json:"availabilityHours"`
	Profile      struct {
		Competencies   []enrichedSkill `json:"competencies"`
		Technologies   []enrichedSkill `json:"technologies"`
		PreferredTechs []string        `json:"preferredTechs"`
	} `json:"profile"`
	Notes string `json:"notes"`
}

// enrichedSkill accepts either a bare label or {name, level}.
type enrichedSkill struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

func (s *enrichedSkill) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		s.Name, s.Level = label, ""
		return nil
	}
	type plain enrichedSkill
	return json.Unmarshal(data, (*plain)(s))
}

type projectRow struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Area         string          `json:"area"`
	Status       string          `json:"status"`
	Complexity   string          `json:"complexity"`
	TechCategory string          `json:"technologyCategory"`
	IdealTeam    string          `json:"idealTeam"`
	AINote       string          `json:"aiNote"`
	Profiles     string          `json:"profiles"`
	Affinity     json.RawMessage `json:"affinity"`
	Resources    string          `json:"resources"` // pipe-delimited indicated resource refs
}

// DecodeResource maps one person row in any supported shape to a Resource.
func DecodeResource(raw json.RawMessage) (Resource, error) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return Resource{}, errors.New("empty record")
	}
	if t[0] == '[' {
		return decodeCompactResource(t)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(t, &probe); err != nil {
		return Resource{}, fmt.Errorf("decode person row: %w", err)
	}
	if _, ok := probe["registration"]; ok {
		return decodeEnrichedResource(t)
	}
	return decodeKeyedResource(t)
}

func decodeCompactResource(data []byte) (Resource, error) {
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return Resource{}, fmt.Errorf("decode compact row: %w", err)
	}
	if len(fields) < compactMinFields {
		return Resource{}, fmt.Errorf("compact row: want at least %d fields, got %d", compactMinFields, len(fields))
	}
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	name := get(0)
	if name == "" {
		return Resource{}, errors.New("compact row: empty name")
	}
	// Unparseable hours degrade to zero availability; the row survives.
	hours, _ := ParseLocaleFloat(get(3))
	r := Resource{
		ID:                Slugify(name),
		Name:              name,
		MacroArea:         get(1),
		Seniority:         get(2),
		AvailabilityHours: clampMin(hours, 0),
		Notes:             get(6),
	}
	r.Skills = buildSkills(r.Seniority, SplitMulti(get(4)), SplitMulti(get(5)))
	return r, nil
}

func decodeKeyedResource(data []byte) (Resource, error) {
	var row keyedResourceRow
	if err := json.Unmarshal(data, &row); err != nil {
		return Resource{}, fmt.Errorf("decode keyed row: %w", err)
	}
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return Resource{}, errors.New("keyed row: empty name")
	}
	hours, _ := decodeHours(row.Hours)
	id := strings.TrimSpace(row.ID)
	if id == "" {
		id = Slugify(name)
	}
	r := Resource{
		ID:                id,
		Name:              name,
		MacroArea:         strings.TrimSpace(row.Area),
		Seniority:         strings.TrimSpace(row.Seniority),
		AvailabilityHours: clampMin(hours, 0),
		Notes:             strings.TrimSpace(row.Note),
	}
	r.Skills = buildSkills(r.Seniority, SplitMulti(row.Skills), SplitMulti(row.Techs))
	return r, nil
}

func decodeEnrichedResource(data []byte) (Resource, error) {
	var row enrichedResourceRow
	if err := json.Unmarshal(data, &row); err != nil {
		return Resource{}, fmt.Errorf("decode enriched row: %w", err)
	}
	name := strings.TrimSpace(row.FullName)
	if name == "" {
		name = strings.TrimSpace(row.Name)
	}
	if name == "" {
		return Resource{}, errors.New("enriched row: empty name")
	}
	hours, _ := decodeHours(row.Availability)
	id := strings.TrimSpace(row.Registration)
	if id == "" {
		id = Slugify(name)
	}
	r := Resource{
		ID:                id,
		Name:              name,
		MacroArea:         strings.TrimSpace(row.MacroArea),
		Seniority:         strings.TrimSpace(row.Seniority),
		AvailabilityHours: clampMin(hours, 0),
		PreferredTechs:    trimAll(row.Profile.PreferredTechs),
		Notes:             strings.TrimSpace(row.Notes),
	}
	seen := make(map[string]bool)
	for _, c := range row.Profile.Competencies {
		addSkill(&r.Skills, seen, c.Name, firstNonEmpty(c.Level, r.Seniority), SourceCompetency)
	}
	for _, tech := range row.Profile.Technologies {
		addSkill(&r.Skills, seen, tech.Name, tech.Level, SourceTechnology)
	}
	return r, nil
}

// DecodeProject maps one project row to a Project. The complexity field sets
// the default priority of every derived need. Rows may embed an affinity
// score plus a pipe-delimited list of indicated resources; those expand into
// one AffinityRow per resource, keyed by the project ID.
func DecodeProject(raw json.RawMessage) (Project, []AffinityRow, error) {
	var row projectRow
	if err := json.Unmarshal(bytes.TrimSpace(raw), &row); err != nil {
		return Project{}, nil, fmt.Errorf("decode project row: %w", err)
	}
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return Project{}, nil, errors.New("project row: empty title")
	}
	code := strings.TrimSpace(row.Code)
	p := Project{
		ID:           Slugify(code + " " + title),
		Code:         code,
		SystemName:   strings.TrimSpace(row.Name),
		Title:        title,
		MacroArea:    strings.TrimSpace(row.Area),
		TechCategory: strings.TrimSpace(row.TechCategory),
		Complexity:   strings.TrimSpace(row.Complexity),
		Status:       strings.TrimSpace(row.Status),
		IdealTeam:    strings.TrimSpace(row.IdealTeam),
		AINote:       strings.TrimSpace(row.AINote),
	}
	priority := needPriority(row.Complexity)
	for _, label := range SplitMulti(row.Profiles) {
		p.Needs = append(p.Needs, ProjectNeed{
			SkillID:  Slugify(label),
			Label:    label,
			Priority: priority,
		})
	}
	var embedded []AffinityRow
	if refs := SplitMulti(row.Resources); len(refs) > 0 {
		affinity, _ := decodeHours(row.Affinity)
		for _, ref := range refs {
			embedded = append(embedded, AffinityRow{
				ResourceRef: ref,
				ProjectRef:  p.ID,
				Affinity:    affinity,
			})
		}
	}
	return p, embedded, nil
}

// DecodeAffinity maps one precomputed pairing row. The affinity value may be
// a JSON number or a locale-formatted string.
func DecodeAffinity(raw json.RawMessage) (AffinityRow, error) {
	var row struct {
		Resource string          `json:"resource"`
		Project  string          `json:"project"`
		Affinity json.RawMessage `json:"affinity"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(raw), &row); err != nil {
		return AffinityRow{}, fmt.Errorf("decode affinity row: %w", err)
	}
	if strings.TrimSpace(row.Resource) == "" || strings.TrimSpace(row.Project) == "" {
		return AffinityRow{}, errors.New("affinity row: missing resource or project ref")
	}
	out := AffinityRow{
		ResourceRef: strings.TrimSpace(row.Resource),
		ProjectRef:  strings.TrimSpace(row.Project),
	}
	if len(row.Affinity) > 0 {
		v, err := decodeHours(row.Affinity)
		if err != nil {
			return AffinityRow{}, fmt.Errorf("affinity row %s/%s: %w", out.ResourceRef, out.ProjectRef, err)
		}
		out.Affinity = v
	}
	return out, nil
}

// NormalizeCatalog decodes every row, skipping bad ones. It never fails;
// each skipped row contributes one error marker string. Affinity rows
// embedded in project records are collected and returned alongside.
func NormalizeCatalog(resourceRows, projectRows []RawRow) (*Catalog, []AffinityRow, []string) {
	var errs []string
	resources := make([]Resource, 0, len(resourceRows))
	seenRes := make(map[string]bool)
	for _, row := range resourceRows {
		r, err := DecodeResource(row.Data)
		if err != nil {
			errs = append(errs, rowError(row, err))
			continue
		}
		if seenRes[r.ID] {
			errs = append(errs, rowError(row, fmt.Errorf("duplicate resource id %q", r.ID)))
			continue
		}
		seenRes[r.ID] = true
		resources = append(resources, r)
	}
	projects := make([]Project, 0, len(projectRows))
	seenProj := make(map[string]bool)
	var embedded []AffinityRow
	for _, row := range projectRows {
		p, rows, err := DecodeProject(row.Data)
		if err != nil {
			errs = append(errs, rowError(row, err))
			continue
		}
		if seenProj[p.ID] {
			errs = append(errs, rowError(row, fmt.Errorf("duplicate project id %q", p.ID)))
			continue
		}
		seenProj[p.ID] = true
		projects = append(projects, p)
		embedded = append(embedded, rows...)
	}
	return NewCatalog(resources, projects), embedded, errs
}

func rowError(row RawRow, err error) string {
	return fmt.Sprintf("%s[%d]: %v", row.File, row.Index, err)
}

func decodeHours(raw json.RawMessage) (float64, error) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(t, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(t, &s); err != nil {
		return 0, fmt.Errorf("numeric field is neither number nor string: %s", t)
	}
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseLocaleFloat(s)
}

func buildSkills(seniority string, competencies, technologies []string) []Skill {
	if len(competencies)+len(technologies) == 0 {
		return nil
	}
	skills := make([]Skill, 0, len(competencies)+len(technologies))
	seen := make(map[string]bool)
	for _, label := range competencies {
		addSkill(&skills, seen, label, seniority, SourceCompetency)
	}
	for _, label := range technologies {
		addSkill(&skills, seen, label, "", SourceTechnology)
	}
	return skills
}

func addSkill(skills *[]Skill, seen map[string]bool, label, level, source string) {
	label = strings.TrimSpace(label)
	id := Slugify(label)
	if id == "" || seen[id] {
		return
	}
	seen[id] = true
	*skills = append(*skills, Skill{ID: id, Name: label, Level: level, Source: source})
}

func needPriority(complexity string) string {
	switch NormalizeKey(complexity) {
	case "high":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func trimAll(vals []string) []string {
	var out []string
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}
