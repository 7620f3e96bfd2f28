// Package resolver fills a template's placeholders from the request and the
// legal context.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"unicode/utf8"

	"docugen-workers/internal/models"
)

var (
	ErrMissingRequiredField  = errors.New("MISSING_REQUIRED_FIELD")
	ErrPlaceholderValidation = errors.New("PLACEHOLDER_VALIDATION_FAILED")
	ErrUnknownSource         = errors.New("UNKNOWN_PLACEHOLDER_SOURCE")
)

// MissingFieldError names the required placeholder that had no value.
type MissingFieldError struct {
	PlaceholderID string
	Name          string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrMissingRequiredField, e.PlaceholderID, e.Name)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// Context is what a provider may read while producing a value.
type Context struct {
	Request  *models.GenerationRequest
	Template *models.Template
	Legal    *models.LegalContext
}

// Provider produces the value of placeholders bound to one source.
type Provider interface {
	ProvideValue(ctx context.Context, placeholder models.Placeholder, rc *Context) (any, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, placeholder models.Placeholder, rc *Context) (any, error)

func (f ProviderFunc) ProvideValue(ctx context.Context, placeholder models.Placeholder, rc *Context) (any, error) {
	return f(ctx, placeholder, rc)
}

type Resolver struct {
	providers map[models.Source]Provider
}

// New returns a resolver with the default providers registered.
func New() *Resolver {
	r := &Resolver{providers: make(map[models.Source]Provider)}
	r.Register(models.SourceCaller, CallerProvider{})
	r.Register(models.SourceDiagnostic, DiagnosticProvider{})
	r.Register(models.SourceKnowledge, KnowledgeProvider{})
	r.Register(models.SourceLegal, LegalProvider{})
	return r
}

// Register binds p to source, replacing any previous provider.
func (r *Resolver) Register(source models.Source, p Provider) {
	r.providers[source] = p
}

// Resolve returns a map from placeholder id to value. Optional placeholders
// with no value are omitted.
func (r *Resolver) Resolve(ctx context.Context, tpl *models.Template, req *models.GenerationRequest, legal *models.LegalContext) (map[string]any, error) {
	rc := &Context{Request: req, Template: tpl, Legal: legal}
	out := make(map[string]any, len(tpl.Placeholders))

	for _, ph := range tpl.Placeholders {
		p, ok := r.providers[ph.Source]
		if !ok {
			return nil, fmt.Errorf("%w: %q for placeholder %s", ErrUnknownSource, ph.Source, ph.ID)
		}
		v, err := p.ProvideValue(ctx, ph, rc)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ph.ID, err)
		}
		if isEmpty(v) {
			if ph.Required {
				return nil, &MissingFieldError{PlaceholderID: ph.ID, Name: ph.Name}
			}
			continue
		}
		if err := validate(ph, v); err != nil {
			return nil, err
		}
		out[ph.ID] = v
	}
	return out, nil
}

// isEmpty treats nil and "" as absent. An empty list is a value.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func validate(ph models.Placeholder, v any) error {
	rule := ph.Validation
	if rule == nil {
		return nil
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrPlaceholderValidation, ph.ID, fmt.Sprintf(format, args...))
	}

	if s, ok := v.(string); ok {
		n := utf8.RuneCountInString(s)
		if rule.MinLength != nil && n < *rule.MinLength {
			return fail("length %d below minimum %d", n, *rule.MinLength)
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			return fail("length %d above maximum %d", n, *rule.MaxLength)
		}
		if rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return fail("invalid pattern %q", rule.Pattern)
			}
			if !re.MatchString(s) {
				return fail("value does not match %q", rule.Pattern)
			}
		}
		if len(rule.AllowedValues) > 0 && !slices.Contains(rule.AllowedValues, s) {
			return fail("value %q not allowed", s)
		}
	}

	if n, ok := number(v); ok {
		if rule.MinValue != nil && n < *rule.MinValue {
			return fail("value %v below minimum %v", n, *rule.MinValue)
		}
		if rule.MaxValue != nil && n > *rule.MaxValue {
			return fail("value %v above maximum %v", n, *rule.MaxValue)
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
