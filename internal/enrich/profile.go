// Package enrich parses saved intranet profile export pages into enriched
// person rows for the catalog. Input is always a local file; nothing here
// talks to the network.
package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_staffing/internal/engine"
	"github.com/anatolykoptev/go_staffing/internal/engine/staffing"
)

// ProfileExport is a parsed profile page. Its JSON form is the enriched
// person row shape accepted by the catalog normalizer.
type ProfileExport struct {
	Registration      string        `json:"registration"`
	FullName          string        `json:"fullName"`
	MacroArea         string        `json:"macroArea,omitempty"`
	Seniority         string        `json:"seniority,omitempty"`
	AvailabilityHours float64       `json:"availabilityHours"`
	Profile           ProfileSkills `json:"profile"`
	Notes             string        `json:"notes,omitempty"`
}

// ProfileSkills groups the skill sections of a profile page.
type ProfileSkills struct {
	Competencies   []ProfileSkill `json:"competencies,omitempty"`
	Technologies   []ProfileSkill `json:"technologies,omitempty"`
	PreferredTechs []string       `json:"preferredTechs,omitempty"`
}

// ProfileSkill is one skill entry with its optional level.
type ProfileSkill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Profile export markup, as produced by the intranet "save page" action:
//
//	<h1 class="profile-name">
//	<span class="profile-registration" data-registration="...">
//	<span class="profile-area"> / <span class="profile-seniority">
//	<span class="profile-hours" data-hours="...">
//	<ul class="competency-list"><li data-level="...">
//	<ul class="technology-list"><li>
//	<ul class="preferred-list"><li>
//	<section class="profile-bio">  free HTML, converted to markdown

// ParseProfileHTML parses one saved profile page.
func ParseProfileHTML(r io.Reader) (*ProfileExport, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse profile html: %w", err)
	}
	engine.IncrEnrichParses()

	p := &ProfileExport{}
	if n := findByClass(doc, "profile-name"); n != nil {
		p.FullName = strings.TrimSpace(textContent(n))
	}
	if p.FullName == "" {
		return nil, errors.New("profile page has no name")
	}

	if n := findByClass(doc, "profile-registration"); n != nil {
		p.Registration = strings.TrimSpace(getAttr(n, "data-registration"))
		if p.Registration == "" {
			p.Registration = strings.TrimSpace(textContent(n))
		}
	}
	if p.Registration == "" {
		p.Registration = staffing.Slugify(p.FullName)
	}

	if n := findByClass(doc, "profile-area"); n != nil {
		p.MacroArea = strings.TrimSpace(textContent(n))
	}
	if n := findByClass(doc, "profile-seniority"); n != nil {
		p.Seniority = strings.TrimSpace(textContent(n))
	}
	if n := findByClass(doc, "profile-hours"); n != nil {
		raw := strings.TrimSpace(getAttr(n, "data-hours"))
		if raw == "" {
			raw = strings.TrimSpace(textContent(n))
		}
		// Unparseable hours degrade to zero availability, like catalog rows.
		hours, _ := staffing.ParseLocaleFloat(raw)
		p.AvailabilityHours = hours
	}

	p.Profile.Competencies = parseSkillList(doc, "competency-list")
	p.Profile.Technologies = parseSkillList(doc, "technology-list")
	for _, s := range parseSkillList(doc, "preferred-list") {
		p.Profile.PreferredTechs = append(p.Profile.PreferredTechs, s.Name)
	}

	if bio := findByClass(doc, "profile-bio"); bio != nil {
		md, err := htmltomarkdown.ConvertString(renderChildren(bio))
		if err == nil {
			p.Notes = strings.TrimSpace(md)
		} else {
			p.Notes = strings.TrimSpace(textContent(bio))
		}
	}
	return p, nil
}

// Row encodes the export as an enriched catalog person row.
func (p *ProfileExport) Row() (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile row: %w", err)
	}
	return data, nil
}

// Resource runs the export through the catalog normalizer, so enriched
// pages and enriched file rows share one decode path.
func (p *ProfileExport) Resource() (staffing.Resource, error) {
	row, err := p.Row()
	if err != nil {
		return staffing.Resource{}, err
	}
	return staffing.DecodeResource(row)
}

func parseSkillList(doc *html.Node, listClass string) []ProfileSkill {
	list := findByClass(doc, listClass)
	if list == nil {
		return nil
	}
	var skills []ProfileSkill
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		name := strings.TrimSpace(textContent(li))
		if name == "" {
			continue
		}
		skills = append(skills, ProfileSkill{
			Name:  name,
			Level: strings.TrimSpace(getAttr(li, "data-level")),
		})
	}
	return skills
}

// --- HTML tree helpers ---

// getAttr returns the value of an attribute on a node, or "".
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasClass checks if a node's class attribute contains the given class name.
func hasClass(n *html.Node, className string) bool {
	return strings.Contains(getAttr(n, "class"), className)
}

// textContent recursively extracts all text from a node.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// findByClass finds the first descendant element with the given class.
func findByClass(n *html.Node, className string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, className) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, className); found != nil {
			return found
		}
	}
	return nil
}

// renderChildren renders a node's children back to HTML.
func renderChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}
