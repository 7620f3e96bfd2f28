package legal

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"docugen-workers/internal/models"
)

// Mapper computes the legal context of a generation request. It holds no
// mutable state and may be shared between goroutines.
type Mapper struct {
	source ArticleSource
	now    func() time.Time
}

type Option func(*Mapper)

// WithClock fixes the reference date used by date conditions.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) { m.now = now }
}

func NewMapper(source ArticleSource, opts ...Option) *Mapper {
	if source == nil {
		source = NewStaticSource()
	}
	m := &Mapper{source: source, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map returns the articles, subjects and coverage that apply to profile for
// the given template.
func (m *Mapper) Map(ctx context.Context, profile models.CompanyProfile, tpl *models.Template) (*models.LegalContext, error) {
	return m.MapAt(ctx, profile, tpl, m.now())
}

// MapAt is Map with date-dependent conditions evaluated at ref.
func (m *Mapper) MapAt(ctx context.Context, profile models.CompanyProfile, tpl *models.Template, ref time.Time) (*models.LegalContext, error) {
	frameworks, err := m.source.Frameworks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	applicable := make([]models.LegalArticle, 0)
	var related []models.LegalArticle
	for _, fw := range frameworks {
		for _, art := range fw.Articles {
			if m.articleApplies(art, profile, ref) {
				applicable = append(applicable, art)
			}
			if tpl != nil && slices.Contains(art.RelatedSubjects, tpl.Subject) {
				related = append(related, art)
			}
		}
	}
	if related == nil {
		related = []models.LegalArticle{}
	}

	lc := &models.LegalContext{
		ApplicableLaws:   applicable,
		RequiredSubjects: requiredSubjects(profile, applicable),
		RelatedArticles:  related,
		ComplianceMatrix: complianceMatrix(tpl, applicable),
	}
	return lc, nil
}

func (m *Mapper) articleApplies(art models.LegalArticle, profile models.CompanyProfile, ref time.Time) bool {
	for _, c := range art.Conditions {
		if !evaluateCondition(c, profile, ref) {
			return false
		}
	}
	return true
}

func evaluateCondition(c models.ApplicabilityCondition, profile models.CompanyProfile, ref time.Time) bool {
	switch c.Kind {
	case models.ConditionCompanySize:
		want, ok := toFloat(c.Value)
		if !ok {
			return false
		}
		return compareNumbers(float64(profile.Size), c.Operator, want)

	case models.ConditionSector:
		switch c.Operator {
		case "==", "includes":
			return inValue(c.Value, profile.Sector)
		case "!=", "excludes":
			return !inValue(c.Value, profile.Sector)
		}
		return false

	case models.ConditionDate:
		s, ok := c.Value.(string)
		if !ok {
			return false
		}
		want, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return false
		}
		today, _ := time.Parse(time.DateOnly, ref.Format(time.DateOnly))
		switch c.Operator {
		case ">=":
			return !today.Before(want)
		case "<=":
			return !today.After(want)
		case "==":
			return today.Equal(want)
		}
		return false

	case models.ConditionActivity:
		has := false
		for _, a := range profile.Activities {
			if inValue(c.Value, a) {
				has = true
				break
			}
		}
		switch c.Operator {
		case "includes":
			return has
		case "excludes":
			return !has
		}
		return false
	}
	return true
}

func compareNumbers(have float64, op string, want float64) bool {
	switch op {
	case ">=":
		return have >= want
	case "<=":
		return have <= want
	case ">":
		return have > want
	case "<":
		return have < want
	case "==":
		return have == want
	case "!=":
		return have != want
	}
	return false
}

// inValue reports whether s equals v, or is an element of v when v is a list.
func inValue(v any, s string) bool {
	switch val := v.(type) {
	case string:
		return val == s
	case []string:
		return slices.Contains(val, s)
	case []any:
		for _, item := range val {
			if str, ok := item.(string); ok && str == s {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func requiredSubjects(profile models.CompanyProfile, applicable []models.LegalArticle) []models.SSTSubject {
	risk := profile.EffectiveRiskLevel()
	out := make([]models.SSTSubject, 0)
	for _, s := range Subjects {
		if !slices.Contains(s.Sectors, models.AllSectors) && !slices.Contains(s.Sectors, profile.Sector) {
			continue
		}
		if !slices.Contains(s.RiskLevels, risk) {
			continue
		}
		if !anyPrefixed(applicable, s.ApplicableLaws) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func anyPrefixed(articles []models.LegalArticle, laws []string) bool {
	for _, law := range laws {
		for _, a := range articles {
			if strings.HasPrefix(a.ID, law) {
				return true
			}
		}
	}
	return false
}

func complianceMatrix(tpl *models.Template, applicable []models.LegalArticle) models.ComplianceMatrix {
	ids := make([]string, 0, len(applicable))
	for _, a := range applicable {
		ids = append(ids, a.ID)
	}
	cm := models.ComplianceMatrix{ApplicableLawIDs: ids, Coverage: true, TemplateRequirements: []string{}}
	if tpl == nil {
		return cm
	}
	cm.TemplateRequirements = append(cm.TemplateRequirements, tpl.Legislation...)
	for _, law := range tpl.Legislation {
		if !anyPrefixed(applicable, []string{law}) {
			cm.Coverage = false
		}
	}
	return cm
}

// SectorDefinition returns the SCIAN sector entry for id.
func SectorDefinition(id string) (models.SectorDefinition, bool) {
	for _, s := range Sectors {
		if s.ID == id {
			return s, true
		}
	}
	return models.SectorDefinition{}, false
}

// SubjectByID looks up an SST subject.
func SubjectByID(id string) (models.SSTSubject, bool) {
	for _, s := range Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return models.SSTSubject{}, false
}
