package pipeline

import (
	"context"

	"docugen-workers/internal/docugen/export"
	dtrace "docugen-workers/internal/docugen/trace"
	"docugen-workers/internal/models"
)

// Verification compares a stored document against a fresh generation from
// the same request.
type Verification struct {
	// RecordedHash is the hash stored in the document's traceability info.
	RecordedHash string
	// ContentHash is recomputed from the stored content.
	ContentHash string
	// RegeneratedHash comes from generating the request again.
	RegeneratedHash string
	Regenerated     *models.GeneratedDocument
}

// Intact reports whether the stored content still matches its recorded hash.
func (v *Verification) Intact() bool {
	return v.RecordedHash == v.ContentHash
}

// Reproducible reports whether regenerating yields the same document.
func (v *Verification) Reproducible() bool {
	return v.ContentHash == v.RegeneratedHash
}

func (v *Verification) OK() bool {
	return v.Intact() && v.Reproducible()
}

// Verify regenerates req and compares the result with doc.
func (p *Pipeline) Verify(ctx context.Context, req models.GenerationRequest, doc *models.GeneratedDocument) (*Verification, error) {
	regenerated, _, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Verification{
		RecordedHash:    doc.Traceability.DocumentHash,
		ContentHash:     dtrace.DocumentHash(&export.Compiled{Content: doc.Content, Format: doc.Format}),
		RegeneratedHash: regenerated.Traceability.DocumentHash,
		Regenerated:     regenerated,
	}, nil
}
