package trace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/docugen/audit"
	"docugen-workers/internal/docugen/export"
	"docugen-workers/internal/models"
)

var (
	t0 = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 2, 9, 16, 30, 0, 0, time.UTC)
)

func fixed(t time.Time) func() time.Time { return func() time.Time { return t } }

func sampleRequest() *models.GenerationRequest {
	return &models.GenerationRequest{
		TemplateID:     "plan_action_LMRSST_v1",
		CompanyProfile: models.CompanyProfile{Name: "Boulangerie Dubois", Size: 15, Sector: "commerce"},
		AdditionalData: map[string]any{"alss_name": "Jean Tremblay"},
		OutputFormat:   models.FormatPDF,
	}
}

var sampleTemplate = &models.Template{ID: "plan_action_LMRSST_v1", Version: "1.0", Agent: "ALSS"}

func compiled(content string) *export.Compiled {
	return &export.Compiled{Content: content, Format: models.FormatPDF}
}

func TestRecord(t *testing.T) {
	doc := compiled("---\ngenerated: \"2026-01-05T08:00:00Z\"\n---\n\n# PLAN")

	info, err := NewRecorder(nil, fixed(t0)).Record(context.Background(), sampleRequest(), sampleTemplate, doc)
	require.NoError(t, err)

	assert.Len(t, info.DocumentHash, 64)
	assert.Len(t, info.SourceDataHash, 64)
	assert.Equal(t, "sha256", info.HashAlgorithm)
	assert.Equal(t, t0, info.GenerationTimestamp)
	assert.Equal(t, []string{"plan_action_LMRSST_v1"}, info.TemplatesUsed)
	assert.Equal(t, "1.0", info.TemplateVersion)
	assert.Equal(t, []string{"DocuGen", "ALSS"}, info.AgentsInvolved)
	assert.Equal(t, map[string]string{"LMRSST": "2021", "LSST": "S-2.1"}, info.LegalFrameworkVersions)

	require.Len(t, info.AuditTrail, 1)
	assert.Equal(t, "document_generated", info.AuditTrail[0].Action)
	assert.Equal(t, "system", info.AuditTrail[0].User)
	assert.Equal(t, "pdf", info.AuditTrail[0].Details["format"])
}

func TestRecordAt_UsesSuppliedTimestamp(t *testing.T) {
	doc := compiled("# PLAN")

	info, err := NewRecorder(nil, fixed(t0)).RecordAt(context.Background(), sampleRequest(), sampleTemplate, doc, t1)
	require.NoError(t, err)
	assert.Equal(t, t1, info.GenerationTimestamp)
	require.Len(t, info.AuditTrail, 1)
	assert.Equal(t, t1, info.AuditTrail[0].Timestamp)
}

func TestRecord_Deterministic(t *testing.T) {
	a := compiled("---\ngenerated: \"2026-01-05T08:00:00Z\"\n---\n\n# PLAN")
	b := compiled("---\ngenerated: \"2026-02-09T16:30:00Z\"\n---\n\n# PLAN")

	first, err := NewRecorder(nil, fixed(t0)).Record(context.Background(), sampleRequest(), sampleTemplate, a)
	require.NoError(t, err)
	second, err := NewRecorder(nil, fixed(t1)).Record(context.Background(), sampleRequest(), sampleTemplate, b)
	require.NoError(t, err)

	assert.Equal(t, first.DocumentHash, second.DocumentHash)
	assert.Equal(t, first.SourceDataHash, second.SourceDataHash)
	assert.NotEqual(t, first.GenerationTimestamp, second.GenerationTimestamp)

	changed := sampleRequest()
	changed.CompanyProfile.Size = 16
	h, err := SourceHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first.SourceDataHash, h)
}

func TestVerify(t *testing.T) {
	doc := compiled("# PLAN\n\ncontenu")
	info, err := NewRecorder(nil, fixed(t0)).Record(context.Background(), sampleRequest(), sampleTemplate, doc)
	require.NoError(t, err)

	assert.True(t, Verify(info, doc))
	assert.False(t, Verify(info, compiled("# PLAN\n\ncontenu modifié")))
	assert.False(t, Verify(nil, doc))
}

type recordingStore struct {
	saved []*models.TraceabilityInfo
	err   error
}

func (s *recordingStore) Save(_ context.Context, info *models.TraceabilityInfo) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.saved = append(s.saved, info)
	return true, nil
}

func TestRecord_PersistsToStore(t *testing.T) {
	store := &recordingStore{}
	info, err := NewRecorder(store, fixed(t0)).Record(context.Background(), sampleRequest(), sampleTemplate, compiled("x"))
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, info.DocumentHash, store.saved[0].DocumentHash)
}

func TestRecord_StoreFailure(t *testing.T) {
	store := &recordingStore{err: errors.Join(audit.ErrAuditWriteFailed, errors.New("db down"))}

	info, err := NewRecorder(store, fixed(t0)).Record(context.Background(), sampleRequest(), sampleTemplate, compiled("x"))
	assert.Nil(t, info)
	assert.ErrorIs(t, err, audit.ErrAuditWriteFailed)
}
