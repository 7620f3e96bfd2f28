// Package legal maps a company profile onto the Québec SST legal ontology.
package legal

import (
	"context"
	"errors"

	"docugen-workers/internal/models"
)

var ErrSourceUnavailable = errors.New("LEGAL_SOURCE_UNAVAILABLE")

// ArticleSource supplies the legal frameworks and their articles.
type ArticleSource interface {
	Frameworks(ctx context.Context) ([]models.LegalFramework, error)
}

// StaticSource serves the ontology compiled into the binary.
type StaticSource struct {
	frameworks []models.LegalFramework
}

func NewStaticSource() *StaticSource {
	return &StaticSource{frameworks: Frameworks}
}

// NewStaticSourceWith serves an explicit framework list.
func NewStaticSourceWith(frameworks []models.LegalFramework) *StaticSource {
	return &StaticSource{frameworks: frameworks}
}

func (s *StaticSource) Frameworks(ctx context.Context) ([]models.LegalFramework, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.frameworks, nil
}
