// Package quality runs a template's quality checks over a rendered document.
package quality

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"docugen-workers/internal/docugen/render"
	"docugen-workers/internal/models"
)

var ErrQualityCheck = errors.New("QUALITY_CHECK_ERROR")

const passedMessage = "Check passed"

// State is what checks are evaluated against: the rendered content and the
// data it was rendered from.
type State struct {
	Content string
	Data    map[string]any
}

type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate returns one result per check, in order. A check whose predicate
// cannot be evaluated is reported as a warning.
func (v *Validator) Validate(checks []models.QualityCheck, state State) []models.QualityResult {
	results := make([]models.QualityResult, 0, len(checks))
	for _, c := range checks {
		r := models.QualityResult{CheckID: c.ID, CheckName: c.Name, Severity: c.Severity}

		ok, err := Check(c.Rule, state)
		switch {
		case err != nil:
			r.Status = models.QualityWarning
			r.Message = fmt.Sprintf("%s: %v", ErrQualityCheck, err)
		case ok:
			r.Status = models.QualityPass
			r.Message = passedMessage
		default:
			r.Status = models.QualityFail
			r.Message = c.ErrorMessage
			if r.Message == "" {
				r.Message = "Check failed"
			}
		}
		results = append(results, r)
	}
	return results
}

// Check evaluates a single predicate.
func Check(p models.Predicate, state State) (bool, error) {
	switch pred := p.(type) {
	case models.FieldPresent:
		return present(state.Data[pred.Field]), nil

	case models.FieldsPresent:
		for _, f := range pred.Fields {
			if !present(state.Data[f]) {
				return false, nil
			}
		}
		return true, nil

	case models.MinItems:
		v, ok := state.Data[pred.Field]
		if !ok || v == nil {
			return pred.Min <= 0, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false, fmt.Errorf("field %q is %T, not a list", pred.Field, v)
		}
		return rv.Len() >= pred.Min, nil

	case models.CitesArticle:
		for _, f := range pred.Fields {
			if cites(state.Data[f], pred.ArticleID) {
				return true, nil
			}
		}
		return false, nil

	case models.ContentContains:
		return strings.Contains(strings.ToLower(state.Content), strings.ToLower(pred.Text)), nil

	case models.NoUnresolvedTokens:
		return !render.TokenPattern().MatchString(state.Content), nil

	case nil:
		return false, errors.New("check has no rule")
	}
	return false, fmt.Errorf("unsupported predicate %T", p)
}

func present(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return rv.Len() > 0
	}
	return true
}

func cites(v any, articleID string) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val == articleID
	case models.LegalArticle:
		return val.ID == articleID
	case map[string]any:
		id, _ := val["id"].(string)
		return id == articleID
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if cites(rv.Index(i).Interface(), articleID) {
			return true
		}
	}
	return false
}

// Summary aggregates results for callers that apply an approval policy.
type Summary struct {
	Total            int  `json:"total"`
	Passed           int  `json:"passed"`
	Failed           int  `json:"failed"`
	Warnings         int  `json:"warnings"`
	HasErrorFailures bool `json:"hasErrorFailures"`
}

func Summarize(results []models.QualityResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case models.QualityPass:
			s.Passed++
		case models.QualityFail:
			s.Failed++
			if r.Severity == models.SeverityError {
				s.HasErrorFailures = true
			}
		case models.QualityWarning:
			s.Warnings++
		}
	}
	return s
}
