package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"templateId", "companyProfile"},
	"properties": map[string]interface{}{
		"templateId": map[string]interface{}{"type": "string", "minLength": 1},
		"companyProfile": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"name", "size"},
			"properties": map[string]interface{}{
				"name": map[string]interface{}{"type": "string"},
				"size": map[string]interface{}{"type": "integer", "minimum": 1},
			},
		},
		"outputFormat": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"markdown", "pdf", "docx", "html"},
		},
	},
}

// ==========================
// Schema validation
// ==========================

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		valid      bool
		wantFields []string
	}{
		{
			name:  "valid request",
			doc:   `{"templateId":"plan_action_LMRSST_v1","companyProfile":{"name":"ABC","size":15},"outputFormat":"pdf"}`,
			valid: true,
		},
		{
			name:       "missing template id",
			doc:        `{"companyProfile":{"name":"ABC","size":15}}`,
			wantFields: []string{"templateId"},
		},
		{
			name:       "nested required",
			doc:        `{"templateId":"x","companyProfile":{"name":"ABC"}}`,
			wantFields: []string{"companyProfile.size"},
		},
		{
			name:       "bad enum and size",
			doc:        `{"templateId":"x","companyProfile":{"name":"ABC","size":0},"outputFormat":"odt"}`,
			wantFields: []string{"companyProfile.size", "outputFormat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateJSON(requestSchema, []byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.wantFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
			assert.Len(t, res.Errors, len(tt.wantFields))
		})
	}
}

func TestValidateSchema_EmptySchemaAcceptsAll(t *testing.T) {
	res, err := ValidateSchema(nil, map[string]interface{}{"anything": true})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	_, err := ValidateJSON(requestSchema, []byte(`{`))
	assert.Error(t, err)
}

func TestGetErrorsForField(t *testing.T) {
	vr := &ValidationResult{Errors: []ValidationError{
		{Field: "companyProfile.size"},
		{Field: "companyProfile.name"},
		{Field: "companyProfileX"},
		{Field: "templateId"},
	}}
	assert.Len(t, vr.GetErrorsForField("companyProfile"), 2)
	assert.Equal(t, []string{"templateId: "}, (&ValidationResult{Errors: vr.Errors[3:]}).GetErrorMessages())
}

// ==========================
// Helpers
// ==========================

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		tag     string
		want    string
		wantErr bool
	}{
		{tag: "", want: "fr"},
		{tag: "fr", want: "fr"},
		{tag: "fr-CA", want: "fr"},
		{tag: "en-US", want: "en"},
		{tag: "es", want: "es"},
		{tag: "es-MX", want: "es"},
		{tag: "de", wantErr: true},
		{tag: "not a tag!", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := NormalizeLanguage(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("docugen.document.generate"))
	assert.Error(t, ValidateActivityNaming("docugen-generate-document"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("sst@entreprise.qc.ca"))
	assert.False(t, ValidateEmail("pas-une-adresse"))
}
