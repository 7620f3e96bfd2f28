package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/models"
)

func TestCheck(t *testing.T) {
	state := State{
		Content: "# PLAN D'ACTION\n\n**Agent de liaison:** Jean Tremblay\n\n{{alss_position}}",
		Data: map[string]any{
			"alss_name":           "Jean Tremblay",
			"blank":               "   ",
			"empty_list":          []any{},
			"risk_inventory":      []any{"chutes", "bruit"},
			"company_name":        "ABC",
			"applicable_articles": []models.LegalArticle{{ID: "LMRSST_90"}},
			"legal_references":    []string{"LMRSST_101"},
			"raw_articles":        []any{map[string]any{"id": "LMRSST_123"}},
		},
	}

	tests := []struct {
		name    string
		pred    models.Predicate
		want    bool
		wantErr bool
	}{
		{name: "field present", pred: models.FieldPresent{Field: "alss_name"}, want: true},
		{name: "field blank", pred: models.FieldPresent{Field: "blank"}, want: false},
		{name: "field empty list", pred: models.FieldPresent{Field: "empty_list"}, want: false},
		{name: "field absent", pred: models.FieldPresent{Field: "missing"}, want: false},
		{name: "fields present", pred: models.FieldsPresent{Fields: []string{"alss_name", "company_name"}}, want: true},
		{name: "fields partly present", pred: models.FieldsPresent{Fields: []string{"alss_name", "alss_position"}}, want: false},
		{name: "min items met", pred: models.MinItems{Field: "risk_inventory", Min: 2}, want: true},
		{name: "min items short", pred: models.MinItems{Field: "risk_inventory", Min: 3}, want: false},
		{name: "min items absent", pred: models.MinItems{Field: "missing", Min: 1}, want: false},
		{name: "min items not a list", pred: models.MinItems{Field: "company_name", Min: 1}, wantErr: true},
		{name: "cites resolved article", pred: models.CitesArticle{ArticleID: "LMRSST_90", Fields: []string{"applicable_articles"}}, want: true},
		{name: "cites injected id", pred: models.CitesArticle{ArticleID: "LMRSST_101", Fields: []string{"applicable_articles", "legal_references"}}, want: true},
		{name: "cites map item", pred: models.CitesArticle{ArticleID: "LMRSST_123", Fields: []string{"raw_articles"}}, want: true},
		{name: "cites missing", pred: models.CitesArticle{ArticleID: "LMRSST_27", Fields: []string{"applicable_articles", "legal_references"}}, want: false},
		{name: "content contains ignores case", pred: models.ContentContains{Text: "plan d'action"}, want: true},
		{name: "content lacks", pred: models.ContentContains{Text: "comité"}, want: false},
		{name: "unresolved tokens", pred: models.NoUnresolvedTokens{}, want: false},
		{name: "nil predicate", pred: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Check(tt.pred, state)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	checks := []models.QualityCheck{
		{ID: "check_alss_designation", Name: "ALSS désigné", Rule: models.FieldPresent{Field: "alss_name"},
			ErrorMessage: "Un agent de liaison doit être désigné", Severity: models.SeverityError},
		{ID: "check_risk_count", Name: "Nombre minimum de risques", Rule: models.MinItems{Field: "risk_inventory", Min: 3},
			ErrorMessage: "Au moins 3 risques doivent être identifiés", Severity: models.SeverityWarning},
		{ID: "check_bad_type", Name: "Liste attendue", Rule: models.MinItems{Field: "alss_name", Min: 1},
			ErrorMessage: "unused", Severity: models.SeverityError},
		{ID: "check_article_90", Name: "Article 90", Rule: models.CitesArticle{ArticleID: "LMRSST_90", Fields: []string{"applicable_articles"}},
			ErrorMessage: "L'article 90 LMRSST doit être référencé", Severity: models.SeverityError},
	}
	state := State{Data: map[string]any{"alss_name": "Jean Tremblay", "risk_inventory": []any{"a"}}}

	results := NewValidator().Validate(checks, state)
	require.Len(t, results, 4)

	assert.Equal(t, models.QualityPass, results[0].Status)
	assert.Equal(t, "Check passed", results[0].Message)
	assert.Equal(t, models.SeverityError, results[0].Severity)

	assert.Equal(t, models.QualityFail, results[1].Status)
	assert.Equal(t, "Au moins 3 risques doivent être identifiés", results[1].Message)

	assert.Equal(t, models.QualityWarning, results[2].Status)
	assert.Contains(t, results[2].Message, "QUALITY_CHECK_ERROR")
	assert.Contains(t, results[2].Message, "not a list")

	assert.Equal(t, models.QualityFail, results[3].Status)
	assert.Equal(t, "check_article_90", results[3].CheckID)

	summary := Summarize(results)
	assert.Equal(t, Summary{Total: 4, Passed: 1, Failed: 2, Warnings: 1, HasErrorFailures: true}, summary)
}

func TestSummarize_WarningFailuresDoNotFlag(t *testing.T) {
	s := Summarize([]models.QualityResult{
		{Status: models.QualityFail, Severity: models.SeverityWarning},
		{Status: models.QualityPass, Severity: models.SeverityError},
	})
	assert.False(t, s.HasErrorFailures)
	assert.Equal(t, 1, s.Failed)
}
