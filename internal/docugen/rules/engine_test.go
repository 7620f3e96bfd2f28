package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/models"
)

var committeeRule = models.GenerationRule{
	ID:        "include_committee_section",
	Condition: models.Comparison{Field: "company_size", Operator: models.OpGte, Value: 20},
	Action:    models.ActionIncludeSection,
	Target:    "comite_sst",
}

// ==========================
// Apply
// ==========================

func TestApply_IncludeSectionBySize(t *testing.T) {
	tests := []struct {
		size     int
		wantFlag bool
	}{
		{size: 25, wantFlag: true},
		{size: 20, wantFlag: true},
		{size: 10, wantFlag: false},
	}

	for _, tt := range tests {
		res := NewEngine().Apply([]models.GenerationRule{committeeRule}, map[string]any{"company_size": tt.size}, nil, nil)

		v, ok := res.Data["include_comite_sst"]
		assert.Equal(t, tt.wantFlag, ok, "size %d", tt.size)
		if tt.wantFlag {
			assert.Equal(t, true, v)
		}
		assert.Empty(t, res.Warnings)
	}
}

func TestApply_InjectValuesOverwrites(t *testing.T) {
	rule := models.GenerationRule{
		ID:        "inject_lmrsst_articles",
		Condition: models.Comparison{Field: "template.legislation", Operator: models.OpContains, Value: "LMRSST"},
		Action:    models.ActionInjectValues,
		Target:    "legal_references",
		Value:     []string{"LMRSST_90", "LMRSST_101"},
	}
	tpl := &models.Template{Legislation: []string{"LMRSST", "LSST"}}
	resolved := map[string]any{"legal_references": []string{"old"}}

	res := NewEngine().Apply([]models.GenerationRule{rule}, resolved, nil, tpl)

	assert.Equal(t, []string{"LMRSST_90", "LMRSST_101"}, res.Data["legal_references"])
	assert.Equal(t, []string{"old"}, resolved["legal_references"], "input map must not be mutated")
}

func TestApply_ProfileEnvironment(t *testing.T) {
	rule := models.GenerationRule{
		ID: "chantier",
		Condition: models.And{Terms: []models.Expr{
			models.Comparison{Field: "profile.sector", Operator: models.OpEq, Value: "construction"},
			models.Or{Terms: []models.Expr{
				models.Comparison{Field: "profile.risk_level", Operator: models.OpEq, Value: "critical"},
				models.Comparison{Field: "profile.size", Operator: models.OpGt, Value: 50},
			}},
		}},
		Action: models.ActionIncludeSection,
		Target: "chantier",
	}
	req := &models.GenerationRequest{CompanyProfile: models.CompanyProfile{Sector: "construction", Size: 12, RiskLevel: models.RiskCritical}}

	res := NewEngine().Apply([]models.GenerationRule{rule}, nil, req, nil)
	assert.Equal(t, true, res.Data["include_chantier"])
}

func TestApply_LaterRulesSeeEarlierEffects(t *testing.T) {
	rules := []models.GenerationRule{
		committeeRule,
		{
			ID:        "formation",
			Condition: models.Comparison{Field: "include_comite_sst", Operator: models.OpEq, Value: true},
			Action:    models.ActionIncludeSection,
			Target:    "formation",
		},
	}

	res := NewEngine().Apply(rules, map[string]any{"company_size": 30}, nil, nil)
	assert.Equal(t, true, res.Data["include_formation"])
}

func TestApply_WarningsDoNotAbort(t *testing.T) {
	rules := []models.GenerationRule{
		{ID: "missing", Condition: models.Comparison{Field: "headcount", Operator: models.OpGte, Value: 20}, Action: models.ActionIncludeSection, Target: "a"},
		{ID: "mismatch", Condition: models.Comparison{Field: "company_name", Operator: models.OpGte, Value: 20}, Action: models.ActionIncludeSection, Target: "b"},
		{ID: "operator", Condition: models.Comparison{Field: "company_size", Operator: "~=", Value: 20}, Action: models.ActionIncludeSection, Target: "c"},
		committeeRule,
	}
	resolved := map[string]any{"company_size": 25, "company_name": "ABC"}

	res := NewEngine().Apply(rules, resolved, nil, nil)

	require.Len(t, res.Warnings, 3)
	assert.Equal(t, "missing", res.Warnings[0].RuleID)
	assert.Equal(t, "mismatch", res.Warnings[1].RuleID)
	assert.Equal(t, "operator", res.Warnings[2].RuleID)
	assert.True(t, errors.Is(res.Warnings[0], ErrRuleEvaluation))
	assert.Equal(t, true, res.Data["include_comite_sst"])
	assert.NotContains(t, res.Data, "include_a")
}

// ==========================
// Evaluate
// ==========================

func TestEvaluate(t *testing.T) {
	env := map[string]any{
		"size":        25,
		"ratio":       0.5,
		"sector":      "construction",
		"legislation": []string{"LMRSST", "LSST"},
		"risks":       []any{"chutes", "bruit"},
		"flag":        true,
	}

	tests := []struct {
		name    string
		expr    models.Expr
		want    bool
		wantErr bool
	}{
		{name: "eq number int vs float", expr: models.Comparison{Field: "size", Operator: models.OpEq, Value: 25.0}, want: true},
		{name: "ne string", expr: models.Comparison{Field: "sector", Operator: models.OpNe, Value: "services"}, want: true},
		{name: "lt float", expr: models.Comparison{Field: "ratio", Operator: models.OpLt, Value: 1}, want: true},
		{name: "lte boundary", expr: models.Comparison{Field: "size", Operator: models.OpLte, Value: 25}, want: true},
		{name: "contains list", expr: models.Comparison{Field: "legislation", Operator: models.OpContains, Value: "LSST"}, want: true},
		{name: "not_contains list", expr: models.Comparison{Field: "risks", Operator: models.OpNotContains, Value: "chutes"}, want: false},
		{name: "contains substring", expr: models.Comparison{Field: "sector", Operator: models.OpContains, Value: "struct"}, want: true},
		{name: "eq bool", expr: models.Comparison{Field: "flag", Operator: models.OpEq, Value: true}, want: true},
		{name: "empty and", expr: models.And{}, want: true},
		{name: "empty or", expr: models.Or{}, want: false},
		{name: "missing field", expr: models.Comparison{Field: "nope", Operator: models.OpEq, Value: 1}, wantErr: true},
		{name: "type mismatch eq", expr: models.Comparison{Field: "sector", Operator: models.OpEq, Value: 3}, wantErr: true},
		{name: "contains on number", expr: models.Comparison{Field: "size", Operator: models.OpContains, Value: 2}, wantErr: true},
		{name: "unknown operator", expr: models.Comparison{Field: "size", Operator: "between", Value: 2}, wantErr: true},
		{name: "error inside and", expr: models.And{Terms: []models.Expr{
			models.Comparison{Field: "size", Operator: models.OpGt, Value: 1},
			models.Comparison{Field: "nope", Operator: models.OpGt, Value: 1},
		}}, wantErr: true},
		{name: "or short circuits", expr: models.Or{Terms: []models.Expr{
			models.Comparison{Field: "size", Operator: models.OpGt, Value: 1},
			models.Comparison{Field: "nope", Operator: models.OpGt, Value: 1},
		}}, want: true},
		{name: "nil expression", expr: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, env)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
