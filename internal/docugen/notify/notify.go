// Package notify announces generated documents to downstream systems and
// alerts reviewers when a document fails error-severity quality checks.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"docugen-workers/internal/models"
)

var ErrNotificationFailed = errors.New("NOTIFICATION_SEND_FAILED")

const EventDocumentGenerated = "document.generated"

// Event is the payload published after a successful generation.
type Event struct {
	Type            string    `json:"type"`
	DocumentID      string    `json:"documentId"`
	TemplateID      string    `json:"templateId"`
	TemplateVersion string    `json:"templateVersion"`
	DocumentHash    string    `json:"documentHash"`
	Company         string    `json:"company"`
	Format          string    `json:"format"`
	ApprovalStatus  string    `json:"approvalStatus"`
	FailedChecks    []string  `json:"failedChecks,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NewDocumentEvent builds the document.generated event for doc.
func NewDocumentEvent(doc *models.GeneratedDocument) Event {
	ev := Event{
		Type:            EventDocumentGenerated,
		DocumentID:      doc.ID,
		TemplateID:      doc.TemplateID,
		TemplateVersion: doc.Traceability.TemplateVersion,
		DocumentHash:    doc.Traceability.DocumentHash,
		Company:         doc.Metadata.Company,
		Format:          string(doc.Format),
		ApprovalStatus:  string(doc.Metadata.ApprovalStatus),
		OccurredAt:      doc.Traceability.GenerationTimestamp,
	}
	for _, r := range FailedErrorChecks(doc.QualityResults) {
		ev.FailedChecks = append(ev.FailedChecks, r.CheckID)
	}
	return ev
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to a message channel.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// FailedErrorChecks returns the error-severity checks that did not pass.
func FailedErrorChecks(results []models.QualityResult) []models.QualityResult {
	var out []models.QualityResult
	for _, r := range results {
		if r.Severity == models.SeverityError && r.Status != models.QualityPass {
			out = append(out, r)
		}
	}
	return out
}
