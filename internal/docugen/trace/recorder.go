// Package trace computes the tamper-evidence record of a generated document.
package trace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"docugen-workers/internal/docugen/audit"
	"docugen-workers/internal/docugen/export"
	"docugen-workers/internal/models"
)

const (
	HashAlgorithm    = "sha256"
	ActionGenerated  = "document_generated"
	SystemUser       = "system"
	DefaultAgentName = "DocuGen"
)

// FrameworkVersions are the legal framework labels recorded on every trace.
var FrameworkVersions = map[string]string{
	"LMRSST": "2021",
	"LSST":   "S-2.1",
}

type Recorder struct {
	store audit.Store
	now   func() time.Time
}

// NewRecorder returns a recorder. store may be nil, in which case nothing is
// persisted.
func NewRecorder(store audit.Store, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: store, now: now}
}

func (r *Recorder) Record(ctx context.Context, req *models.GenerationRequest, tpl *models.Template, doc *export.Compiled) (*models.TraceabilityInfo, error) {
	return r.RecordAt(ctx, req, tpl, doc, r.now())
}

// RecordAt is Record with the generation timestamp supplied by the caller.
func (r *Recorder) RecordAt(ctx context.Context, req *models.GenerationRequest, tpl *models.Template, doc *export.Compiled, ts time.Time) (*models.TraceabilityInfo, error) {
	sourceHash, err := SourceHash(req)
	if err != nil {
		return nil, err
	}

	agents := []string{DefaultAgentName}
	if tpl.Agent != "" {
		agents = append(agents, tpl.Agent)
	}
	versions := make(map[string]string, len(FrameworkVersions))
	for k, v := range FrameworkVersions {
		versions[k] = v
	}

	info := &models.TraceabilityInfo{
		DocumentHash:           DocumentHash(doc),
		SourceDataHash:         sourceHash,
		HashAlgorithm:          HashAlgorithm,
		GenerationTimestamp:    ts,
		TemplatesUsed:          []string{tpl.ID},
		TemplateVersion:        tpl.Version,
		AgentsInvolved:         agents,
		LegalFrameworkVersions: versions,
		AuditTrail: []models.AuditEntry{{
			Timestamp: ts,
			Action:    ActionGenerated,
			User:      SystemUser,
			Details: map[string]string{
				"templateId":      tpl.ID,
				"templateVersion": tpl.Version,
				"format":          string(doc.Format),
			},
		}},
	}

	if r.store != nil {
		if _, err := r.store.Save(ctx, info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// DocumentHash hashes the compiled content with timestamps normalised out.
func DocumentHash(doc *export.Compiled) string {
	return hashString(doc.HashInput())
}

// SourceHash hashes the canonical JSON encoding of the request.
func SourceHash(req *models.GenerationRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Verify reports whether doc still matches the hash recorded in info.
func Verify(info *models.TraceabilityInfo, doc *export.Compiled) bool {
	return info != nil && info.HashAlgorithm == HashAlgorithm && info.DocumentHash == DocumentHash(doc)
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
