// Package content loads the static portfolio data: projects, qualifications,
// specializations and the copy shown around them.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var embeddedSite []byte

var (
	ErrDuplicateID       = errors.New("duplicate project id")
	ErrMissingKeyInsight = errors.New("project has no key insight")
	ErrMissingTitle      = errors.New("project has no title")
)

// ProjectType is the category label of a project. It only drives styling.
type ProjectType string

const (
	TypeAnalysis          ProjectType = "Analysis"
	TypeDataVisualization ProjectType = "Data Visualization"
)

// Style is the set of CSS class tokens for a project category.
type Style struct {
	Border string
	Badge  string
	Glow   string
}

var styles = map[ProjectType]Style{
	TypeAnalysis: {
		Border: "border-orange",
		Badge:  "badge-orange",
		Glow:   "glow-orange",
	},
	TypeDataVisualization: {
		Border: "border-cyan",
		Badge:  "badge-cyan",
		Glow:   "glow-cyan",
	},
}

var defaultStyle = Style{
	Border: "border-neutral",
	Badge:  "badge-neutral",
	Glow:   "glow-neutral",
}

// Known reports whether t is one of the recognized categories.
func (t ProjectType) Known() bool {
	_, ok := styles[t]
	return ok
}

// Style returns the style tokens for t, or the default style for
// unrecognized categories.
func (t ProjectType) Style() Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return defaultStyle
}

// Project is one entry of the project gallery.
type Project struct {
	ID              int         `yaml:"id"`
	Title           string      `yaml:"title"`
	Type            ProjectType `yaml:"type"`
	Summary         string      `yaml:"summary"`
	Tools           []string    `yaml:"tools"`
	KeyInsight      string      `yaml:"keyInsight"`
	Details         []string    `yaml:"details,omitempty"`
	ExternalLinkURL string      `yaml:"externalLinkUrl,omitempty"`
}

type Qualification struct {
	Title       string `yaml:"title"`
	Institution string `yaml:"institution"`
	Status      string `yaml:"status,omitempty"`
}

type Specialization struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Hero struct {
	Name     string `yaml:"name"`
	Headline string `yaml:"headline"`
	Tagline  string `yaml:"tagline"`
	Role     string `yaml:"role"`
}

// About holds markdown copy for the about section.
type About struct {
	Philosophy string `yaml:"philosophy"`
	Approach   string `yaml:"approach"`
}

type Highlight struct {
	Title       string `yaml:"title"`
	Emphasis    string `yaml:"emphasis"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
}

type ContactInfo struct {
	Intro    string `yaml:"intro"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	LinkedIn string `yaml:"linkedin"`
}

// Site is the full static content of the page.
type Site struct {
	Hero            Hero             `yaml:"hero"`
	About           About            `yaml:"about"`
	Highlight       Highlight        `yaml:"highlight"`
	Projects        []Project        `yaml:"projects"`
	Specializations []Specialization `yaml:"specializations"`
	Tools           []string         `yaml:"tools"`
	Qualifications  []Qualification  `yaml:"qualifications"`
	Contact         ContactInfo      `yaml:"contact"`
	Footer          string           `yaml:"footer"`
}

// Sections lists the page sections tagged for scroll reveal, in page order.
var Sections = []string{
	"about",
	"highlight",
	"projects",
	"specializations",
	"tools",
	"qualifications",
	"contact",
}

// Load reads site content from path, or the embedded default when path is empty.
func Load(path string) (*Site, error) {
	data := embeddedSite
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates site content.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &site, nil
}

// Validate checks the project invariants. Unknown categories are allowed.
func (s *Site) Validate() error {
	seen := make(map[int]struct{}, len(s.Projects))
	for _, p := range s.Projects {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Title == "" {
			return fmt.Errorf("%w: id %d", ErrMissingTitle, p.ID)
		}
		if p.KeyInsight == "" {
			return fmt.Errorf("%w: id %d", ErrMissingKeyInsight, p.ID)
		}
	}
	return nil
}
