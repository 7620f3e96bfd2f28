// Package rules applies a template's generation rules to resolved
// placeholder data before rendering.
package rules

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"docugen-workers/internal/models"
)

var ErrRuleEvaluation = errors.New("RULE_EVALUATION_ERROR")

// RuleEvaluationError is a non-fatal warning raised when a rule condition
// cannot be evaluated. The rule is treated as not matching.
type RuleEvaluationError struct {
	RuleID  string
	Message string
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("%s: rule %s: %s", ErrRuleEvaluation, e.RuleID, e.Message)
}

func (e *RuleEvaluationError) Is(target error) bool { return target == ErrRuleEvaluation }

// IncludeFlag is the data key set by an include_section rule for target.
func IncludeFlag(target string) string { return "include_" + target }

type Result struct {
	Data     map[string]any
	Warnings []*RuleEvaluationError
}

type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Apply evaluates rules in order against a copy of resolved. Later rules see
// the effects of earlier ones.
func (e *Engine) Apply(rules []models.GenerationRule, resolved map[string]any, req *models.GenerationRequest, tpl *models.Template) Result {
	data := maps.Clone(resolved)
	if data == nil {
		data = make(map[string]any)
	}
	res := Result{Data: data}

	for _, rule := range rules {
		ok, err := Evaluate(rule.Condition, environment(data, req, tpl))
		if err != nil {
			res.Warnings = append(res.Warnings, &RuleEvaluationError{RuleID: rule.ID, Message: err.Error()})
			continue
		}
		if !ok {
			continue
		}
		switch rule.Action {
		case models.ActionIncludeSection:
			data[IncludeFlag(rule.Target)] = true
		case models.ActionInjectValues:
			data[rule.Target] = append([]string(nil), rule.Value...)
		default:
			res.Warnings = append(res.Warnings, &RuleEvaluationError{
				RuleID:  rule.ID,
				Message: fmt.Sprintf("unknown action %q", rule.Action),
			})
		}
	}
	return res
}

func environment(data map[string]any, req *models.GenerationRequest, tpl *models.Template) map[string]any {
	env := maps.Clone(data)
	if req != nil {
		env["profile.size"] = req.CompanyProfile.Size
		env["profile.sector"] = req.CompanyProfile.Sector
		env["profile.risk_level"] = string(req.CompanyProfile.EffectiveRiskLevel())
	}
	if tpl != nil {
		env["template.legislation"] = tpl.Legislation
		env["template.subject"] = tpl.Subject
	}
	return env
}

// Evaluate reports whether expr holds in env. An error means the expression
// could not be evaluated; the boolean is then false.
func Evaluate(expr models.Expr, env map[string]any) (bool, error) {
	switch x := expr.(type) {
	case models.Comparison:
		return compare(x, env)
	case models.And:
		for _, term := range x.Terms {
			ok, err := Evaluate(term, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case models.Or:
		for _, term := range x.Terms {
			ok, err := Evaluate(term, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case nil:
		return false, errors.New("empty condition")
	default:
		return false, fmt.Errorf("unsupported expression %T", expr)
	}
}

func compare(c models.Comparison, env map[string]any) (bool, error) {
	left, ok := env[c.Field]
	if !ok {
		return false, fmt.Errorf("field %q not found", c.Field)
	}

	switch c.Operator {
	case models.OpEq, models.OpNe:
		eq, err := equal(left, c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", c.Field, err)
		}
		return eq == (c.Operator == models.OpEq), nil

	case models.OpGt, models.OpGte, models.OpLt, models.OpLte:
		l, lok := toFloat(left)
		r, rok := toFloat(c.Value)
		if !lok || !rok {
			return false, fmt.Errorf("field %q: %s needs numbers, got %T and %T", c.Field, c.Operator, left, c.Value)
		}
		switch c.Operator {
		case models.OpGt:
			return l > r, nil
		case models.OpGte:
			return l >= r, nil
		case models.OpLt:
			return l < r, nil
		default:
			return l <= r, nil
		}

	case models.OpContains, models.OpNotContains:
		has, err := contains(left, c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", c.Field, err)
		}
		return has == (c.Operator == models.OpContains), nil
	}
	return false, fmt.Errorf("unknown operator %q", c.Operator)
}

func equal(a, b any) (bool, error) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return false, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return af == bf, nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return false, fmt.Errorf("cannot compare string with %T", b)
		}
		return av == bv, nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return false, fmt.Errorf("cannot compare bool with %T", b)
		}
		return av == bv, nil
	}
	return false, fmt.Errorf("cannot compare %T", a)
}

func contains(haystack, needle any) (bool, error) {
	if s, ok := haystack.(string); ok {
		n, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("cannot search string for %T", needle)
		}
		return strings.Contains(s, n), nil
	}

	v := reflect.ValueOf(haystack)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return false, fmt.Errorf("contains needs a list or string, got %T", haystack)
	}
	for i := 0; i < v.Len(); i++ {
		if eq, err := equal(v.Index(i).Interface(), needle); err == nil && eq {
			return true, nil
		}
	}
	return false, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
