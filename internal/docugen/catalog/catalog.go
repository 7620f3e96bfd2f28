// Package catalog holds the registered document templates and selects the
// one matching a generation request.
package catalog

import (
	"errors"
	"fmt"

	"docugen-workers/internal/models"
)

var (
	ErrTemplateNotFound      = errors.New("TEMPLATE_NOT_FOUND")
	ErrTemplateNotApplicable = errors.New("TEMPLATE_NOT_APPLICABLE")
	ErrInvalidCatalog        = errors.New("INVALID_CATALOG")
)

// Catalog is populated once and never mutated afterwards, so it is safe for
// concurrent readers without locking.
type Catalog struct {
	version   string
	templates []models.Template
	index     map[string]int
}

// New builds a catalog from templates, rejecting duplicate or empty ids.
func New(version string, templates []models.Template) (*Catalog, error) {
	c := &Catalog{
		version:   version,
		templates: make([]models.Template, 0, len(templates)),
		index:     make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: template without id", ErrInvalidCatalog)
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidCatalog, t.ID)
		}
		c.index[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

func (c *Catalog) Version() string { return c.version }

// Get returns a copy of the template registered under id.
func (c *Catalog) Get(id string) (*models.Template, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	t := c.templates[i]
	return &t, true
}

// List returns every template in registration order.
func (c *Catalog) List() []models.Template {
	out := make([]models.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Select returns the template for id after checking it applies to profile.
func (c *Catalog) Select(id string, profile models.CompanyProfile) (*models.Template, error) {
	t, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if !t.AppliesToSize(profile.Size) {
		return nil, fmt.Errorf("%w: template %s is for %s companies, profile has %d employees",
			ErrTemplateNotApplicable, t.ID, t.CompanySize, profile.Size)
	}
	if !t.AppliesToSector(profile.Sector) {
		return nil, fmt.Errorf("%w: template %s does not target sector %q",
			ErrTemplateNotApplicable, t.ID, profile.Sector)
	}
	return t, nil
}

// ByProfile returns every template compatible with a company of the given
// size and sector, in registration order.
func (c *Catalog) ByProfile(size int, sector string) []models.Template {
	var out []models.Template
	for i := range c.templates {
		t := &c.templates[i]
		if t.AppliesToSize(size) && t.AppliesToSector(sector) {
			out = append(out, *t)
		}
	}
	return out
}
