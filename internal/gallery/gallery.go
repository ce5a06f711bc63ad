// Package gallery owns the expand/collapse state of the project cards.
//
// At most one card is expanded at a time. Toggling the expanded card
// collapses it; toggling any other card replaces the selection.
package gallery

import (
	"sync"

	"github.com/kathitsondhi/portfolio/internal/content"
)

// Selection is an optional project id. The zero value selects nothing.
type Selection struct {
	id  int
	set bool
}

// Select returns a selection holding id.
func Select(id int) Selection {
	return Selection{id: id, set: true}
}

// ID returns the selected id and whether one is set.
func (s Selection) ID() (int, bool) {
	return s.id, s.set
}

// Is reports whether id is the selected one.
func (s Selection) Is(id int) bool {
	return s.set && s.id == id
}

// Controller holds the gallery state for one visitor.
type Controller struct {
	mu       sync.Mutex
	expanded Selection
}

// NewController creates a controller with every card collapsed.
func NewController() *Controller {
	return &Controller{}
}

// Toggle collapses id if it is expanded, otherwise expands it and
// collapses whatever was expanded before.
func (c *Controller) Toggle(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded.Is(id) {
		c.expanded = Selection{}
		return
	}
	c.expanded = Select(id)
}

// IsExpanded reports whether id is the expanded card.
func (c *Controller) IsExpanded(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded.Is(id)
}

// Expanded returns the current selection.
func (c *Controller) Expanded() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}

// Card is the render model for one project card.
type Card struct {
	ID          int
	Title       string
	Type        string
	Style       content.Style
	Summary     string
	Tools       []string
	Expanded    bool
	KeyInsight  string
	Details     []string
	ExternalURL string
	ToggleLabel string
}

// ShowDetails reports whether the details list should be rendered.
func (c Card) ShowDetails() bool {
	return c.Expanded && len(c.Details) > 0
}

// ShowLink reports whether the external link should be rendered.
func (c Card) ShowLink() bool {
	return c.Expanded && c.ExternalURL != ""
}

const (
	labelShowMore = "Show More"
	labelShowLess = "Show Less"
)

// Cards builds the render models for projects against the current state.
// Expanded-only fields are left empty on collapsed cards.
func (c *Controller) Cards(projects []content.Project) []Card {
	sel := c.Expanded()
	cards := make([]Card, 0, len(projects))
	for _, p := range projects {
		card := Card{
			ID:          p.ID,
			Title:       p.Title,
			Type:        string(p.Type),
			Style:       p.Type.Style(),
			Summary:     p.Summary,
			Tools:       p.Tools,
			ToggleLabel: labelShowMore,
		}
		if sel.Is(p.ID) {
			card.Expanded = true
			card.KeyInsight = p.KeyInsight
			card.Details = p.Details
			card.ExternalURL = p.ExternalLinkURL
			card.ToggleLabel = labelShowLess
		}
		cards = append(cards, card)
	}
	return cards
}
