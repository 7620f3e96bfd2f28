package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/models"
)

func defaultCatalogT(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

// ==========================
// Loading
// ==========================

func TestDefault_LoadsBuiltInTemplates(t *testing.T) {
	c := defaultCatalogT(t)

	ids := make([]string, 0)
	for _, tpl := range c.List() {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{
		"prog_prev_LMRSST_v2",
		"plan_action_LMRSST_v1",
		"registre_incidents_v1",
		"designation_alss_v1",
	}, ids)

	prog, ok := c.Get("prog_prev_LMRSST_v2")
	require.True(t, ok)
	assert.Equal(t, "2.1", prog.Version)
	assert.Equal(t, models.SizeLarge, prog.CompanySize)
	assert.Len(t, prog.Placeholders, 7)
	require.Len(t, prog.GenerationRules, 2)

	cond, ok := prog.GenerationRules[0].Condition.(models.Comparison)
	require.True(t, ok)
	assert.Equal(t, "company_size", cond.Field)
	assert.Equal(t, models.OpGte, cond.Operator)
	assert.EqualValues(t, 20, cond.Value)

	assert.Equal(t, []string{"LMRSST_90", "LMRSST_101"}, prog.GenerationRules[1].Value)

	require.NotNil(t, prog.Placeholders[2].Validation)
	require.NotNil(t, prog.Placeholders[2].Validation.MinValue)
	assert.Equal(t, 20.0, *prog.Placeholders[2].Validation.MinValue)

	check := prog.QualityChecks[1]
	assert.Equal(t, models.CitesArticle{ArticleID: "LMRSST_90", Fields: []string{"applicable_articles", "legal_references"}}, check.Rule)
}

func TestParse_CombinatorConditions(t *testing.T) {
	doc := []byte(`
templates:
  - id: t1
    subject: custom
    companySize: all
    generationRules:
      - id: r1
        condition:
          all:
            - {field: profile.size, op: ">=", value: 10}
            - any:
                - {field: profile.sector, op: "==", value: construction}
                - {field: profile.sector, op: "==", value: manufacturier}
        action: include_section
        target: chantier
`)
	c, err := Parse(doc)
	require.NoError(t, err)

	tpl, ok := c.Get("t1")
	require.True(t, ok)
	and, ok := tpl.GenerationRules[0].Condition.(models.And)
	require.True(t, ok)
	require.Len(t, and.Terms, 2)
	or, ok := and.Terms[1].(models.Or)
	require.True(t, ok)
	assert.Len(t, or.Terms, 2)
	assert.Equal(t, []string{models.AllSectors}, tpl.TargetSectors)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "duplicate ids",
			doc: `
templates:
  - id: a
  - id: a
`,
		},
		{
			name: "unknown predicate",
			doc: `
templates:
  - id: a
    qualityChecks:
      - id: c
        rule: {kind: sounds_legal}
`,
		},
		{
			name: "unknown action",
			doc: `
templates:
  - id: a
    generationRules:
      - id: r
        condition: {field: x, op: "==", value: 1}
        action: delete_everything
`,
		},
		{
			name: "empty condition",
			doc: `
templates:
  - id: a
    generationRules:
      - id: r
        action: include_section
`,
		},
		{
			name: "bad size",
			doc: `
templates:
  - id: a
    companySize: medium
`,
		},
		{
			name: "malformed yaml",
			doc:  "templates: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

// ==========================
// Selection
// ==========================

func TestSelect(t *testing.T) {
	c := defaultCatalogT(t)

	tests := []struct {
		name       string
		templateID string
		profile    models.CompanyProfile
		wantErr    error
	}{
		{
			name:       "large template large company",
			templateID: "prog_prev_LMRSST_v2",
			profile:    models.CompanyProfile{Size: 25, Sector: "construction"},
		},
		{
			name:       "large template small company",
			templateID: "prog_prev_LMRSST_v2",
			profile:    models.CompanyProfile{Size: 19, Sector: "construction"},
			wantErr:    ErrTemplateNotApplicable,
		},
		{
			name:       "small template at threshold",
			templateID: "plan_action_LMRSST_v1",
			profile:    models.CompanyProfile{Size: 20, Sector: "services"},
			wantErr:    ErrTemplateNotApplicable,
		},
		{
			name:       "small template small company",
			templateID: "plan_action_LMRSST_v1",
			profile:    models.CompanyProfile{Size: 15, Sector: "services"},
		},
		{
			name:       "all-size template",
			templateID: "registre_incidents_v1",
			profile:    models.CompanyProfile{Size: 500, Sector: "santé"},
		},
		{
			name:       "unknown template",
			templateID: "nope",
			profile:    models.CompanyProfile{Size: 5},
			wantErr:    ErrTemplateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := c.Select(tt.templateID, tt.profile)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tpl)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.templateID, tpl.ID)
		})
	}
}

func TestSelect_SizeCategoryProperty(t *testing.T) {
	c := defaultCatalogT(t)

	for _, tpl := range c.List() {
		for size := 1; size <= 60; size++ {
			_, err := c.Select(tpl.ID, models.CompanyProfile{Size: size, Sector: "commerce"})
			switch {
			case tpl.CompanySize == models.SizeSmall && size >= 20:
				assert.ErrorIs(t, err, ErrTemplateNotApplicable, "%s size %d", tpl.ID, size)
			case tpl.CompanySize == models.SizeLarge && size < 20:
				assert.ErrorIs(t, err, ErrTemplateNotApplicable, "%s size %d", tpl.ID, size)
			default:
				assert.NoError(t, err, "%s size %d", tpl.ID, size)
			}
		}
	}
}

func TestSelect_SectorMismatch(t *testing.T) {
	c, err := New("test", []models.Template{{
		ID:            "chantier_v1",
		CompanySize:   models.SizeAll,
		TargetSectors: []string{"construction"},
	}})
	require.NoError(t, err)

	_, err = c.Select("chantier_v1", models.CompanyProfile{Size: 30, Sector: "services"})
	assert.ErrorIs(t, err, ErrTemplateNotApplicable)

	_, err = c.Select("chantier_v1", models.CompanyProfile{Size: 30, Sector: "construction"})
	assert.NoError(t, err)
}

func TestByProfile(t *testing.T) {
	c := defaultCatalogT(t)

	ids := func(ts []models.Template) []string {
		out := make([]string, 0, len(ts))
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t,
		[]string{"plan_action_LMRSST_v1", "registre_incidents_v1", "designation_alss_v1"},
		ids(c.ByProfile(12, "commerce")))
	assert.Equal(t,
		[]string{"prog_prev_LMRSST_v2", "registre_incidents_v1"},
		ids(c.ByProfile(45, "construction")))
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := defaultCatalogT(t)

	tpl, ok := c.Get("designation_alss_v1")
	require.True(t, ok)
	tpl.Name = "changed"

	again, _ := c.Get("designation_alss_v1")
	assert.NotEqual(t, "changed", again.Name)
}
