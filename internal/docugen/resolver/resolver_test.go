package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/models"
)

func ptr[T any](v T) *T { return &v }

func testTemplate(placeholders ...models.Placeholder) *models.Template {
	return &models.Template{ID: "t", Subject: "plan-action", Placeholders: placeholders}
}

// ==========================
// Providers
// ==========================

func TestResolve_DefaultProviders(t *testing.T) {
	tpl := testTemplate(
		models.Placeholder{ID: "company_name", Name: "Nom", Required: true, Source: models.SourceCaller},
		models.Placeholder{ID: "company_size", Name: "Taille", Required: true, Source: models.SourceCaller},
		models.Placeholder{ID: "company_address", Name: "Adresse", Required: true, Source: models.SourceCaller},
		models.Placeholder{ID: "alss_name", Name: "ALSS", Required: true, Source: models.SourceCaller},
		models.Placeholder{ID: "risks", Name: "Risques", Required: true, Source: models.SourceDiagnostic},
		models.Placeholder{ID: "actions", Name: "Actions", Required: true, Source: models.SourceKnowledge},
		models.Placeholder{ID: "articles", Name: "Articles", Required: true, Source: models.SourceLegal},
	)
	req := &models.GenerationRequest{
		CompanyProfile: models.CompanyProfile{Name: "Boulangerie Dubois", Size: 12, Sector: "commerce"},
		AdditionalData: map[string]any{
			"company_address": "12 rue Principale, Québec",
			"alss_name":       "Jean Tremblay",
		},
		DiagnosticData: []any{"chutes", "coupures"},
	}
	legal := &models.LegalContext{RelatedArticles: []models.LegalArticle{{ID: "LMRSST_64"}}}

	got, err := New().Resolve(context.Background(), tpl, req, legal)
	require.NoError(t, err)

	assert.Equal(t, "Boulangerie Dubois", got["company_name"])
	assert.Equal(t, 12, got["company_size"])
	assert.Equal(t, "12 rue Principale, Québec", got["company_address"])
	assert.Equal(t, "Jean Tremblay", got["alss_name"])
	assert.Equal(t, []any{"chutes", "coupures"}, got["risks"])
	assert.Equal(t, []any{}, got["actions"])
	assert.Equal(t, []models.LegalArticle{{ID: "LMRSST_64"}}, got["articles"])
}

func TestResolve_ProfileAddressWins(t *testing.T) {
	tpl := testTemplate(models.Placeholder{ID: "company_address", Required: true, Source: models.SourceCaller})
	req := &models.GenerationRequest{
		CompanyProfile: models.CompanyProfile{Address: "1 boul. Laurier"},
		AdditionalData: map[string]any{"company_address": "ignored"},
	}

	got, err := New().Resolve(context.Background(), tpl, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "1 boul. Laurier", got["company_address"])
}

func TestResolve_CustomProvider(t *testing.T) {
	r := New()
	r.Register("erp", ProviderFunc(func(_ context.Context, ph models.Placeholder, _ *Context) (any, error) {
		return "from-erp:" + ph.ID, nil
	}))

	tpl := testTemplate(models.Placeholder{ID: "payroll", Required: true, Source: "erp"})
	got, err := r.Resolve(context.Background(), tpl, &models.GenerationRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-erp:payroll", got["payroll"])
}

// ==========================
// Failures
// ==========================

func TestResolve_MissingRequired(t *testing.T) {
	tpl := testTemplate(
		models.Placeholder{ID: "company_name", Name: "Nom", Required: true, Source: models.SourceCaller},
		models.Placeholder{ID: "committee_members", Name: "Membres du comité SST", Required: true, Source: models.SourceCaller},
	)
	req := &models.GenerationRequest{CompanyProfile: models.CompanyProfile{Name: "Construction ABC"}}

	got, err := New().Resolve(context.Background(), tpl, req, nil)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "committee_members", missing.PlaceholderID)
	assert.Equal(t, "Membres du comité SST", missing.Name)
}

func TestResolve_EmptyValues(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		required bool
		wantErr  bool
		present  bool
	}{
		{name: "empty string required", value: "", required: true, wantErr: true},
		{name: "nil required", value: nil, required: true, wantErr: true},
		{name: "empty list required", value: []any{}, required: true, present: true},
		{name: "empty string optional", value: "", required: false},
		{name: "zero number", value: 0, required: true, present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := testTemplate(models.Placeholder{ID: "f", Required: tt.required, Source: models.SourceCaller})
			req := &models.GenerationRequest{AdditionalData: map[string]any{"f": tt.value}}

			got, err := New().Resolve(context.Background(), tpl, req, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingRequiredField)
				return
			}
			require.NoError(t, err)
			_, ok := got["f"]
			assert.Equal(t, tt.present, ok)
		})
	}
}

func TestResolve_UnknownSource(t *testing.T) {
	tpl := testTemplate(models.Placeholder{ID: "x", Source: "crystal-ball"})

	_, err := New().Resolve(context.Background(), tpl, &models.GenerationRequest{}, nil)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestResolve_ProviderError(t *testing.T) {
	boom := errors.New("erp down")
	r := New()
	r.Register(models.SourceCaller, ProviderFunc(func(context.Context, models.Placeholder, *Context) (any, error) {
		return nil, boom
	}))

	tpl := testTemplate(models.Placeholder{ID: "company_name", Required: true, Source: models.SourceCaller})
	_, err := r.Resolve(context.Background(), tpl, &models.GenerationRequest{}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		rule    models.PlaceholderValidation
		value   any
		wantErr bool
	}{
		{name: "min value ok", rule: models.PlaceholderValidation{MinValue: ptr(20.0)}, value: 25},
		{name: "min value violated", rule: models.PlaceholderValidation{MinValue: ptr(20.0)}, value: 19, wantErr: true},
		{name: "max value violated", rule: models.PlaceholderValidation{MaxValue: ptr(19.0)}, value: 20.0, wantErr: true},
		{name: "pattern ok", rule: models.PlaceholderValidation{Pattern: `^[A-Z]\d[A-Z] ?\d[A-Z]\d$`}, value: "G1R 4P5"},
		{name: "pattern violated", rule: models.PlaceholderValidation{Pattern: `^\d+$`}, value: "abc", wantErr: true},
		{name: "min length", rule: models.PlaceholderValidation{MinLength: ptr(3)}, value: "ab", wantErr: true},
		{name: "max length counts runes", rule: models.PlaceholderValidation{MaxLength: ptr(5)}, value: "été!!"},
		{name: "allowed values", rule: models.PlaceholderValidation{AllowedValues: []string{"fr", "en"}}, value: "de", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := tt.rule
			tpl := testTemplate(models.Placeholder{ID: "v", Required: true, Source: models.SourceCaller, Validation: &rule})
			req := &models.GenerationRequest{AdditionalData: map[string]any{"v": tt.value}}

			_, err := New().Resolve(context.Background(), tpl, req, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPlaceholderValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolve_ZeroHeadcountIsMissing(t *testing.T) {
	tpl := testTemplate(models.Placeholder{ID: "company_size", Name: "Nombre d'employés", Required: true, Source: models.SourceCaller})

	_, err := New().Resolve(context.Background(), tpl, &models.GenerationRequest{}, nil)
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	got, err := New().Resolve(context.Background(), tpl, &models.GenerationRequest{
		AdditionalData: map[string]any{"company_size": 8},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, got["company_size"])
}
