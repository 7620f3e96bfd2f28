// internal/models/document.go
package models

import "time"

type ApprovalStatus string

const (
	ApprovalDraft    ApprovalStatus = "draft"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type DocumentMetadata struct {
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	GeneratedDate  time.Time      `json:"generatedDate"`
	GeneratedBy    string         `json:"generatedBy"`
	Version        string         `json:"version"`
	Language       string         `json:"language"`
	WordCount      int            `json:"wordCount"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	ValidUntil     *time.Time     `json:"validUntil,omitempty"`
}

type QualityStatus string

const (
	QualityPass    QualityStatus = "pass"
	QualityFail    QualityStatus = "fail"
	QualityWarning QualityStatus = "warning"
)

type QualityResult struct {
	CheckID   string        `json:"checkId"`
	CheckName string        `json:"checkName"`
	Severity  Severity      `json:"severity"`
	Status    QualityStatus `json:"status"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
}

type AuditEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	User      string            `json:"user"`
	Details   map[string]string `json:"details,omitempty"`
}

type TraceabilityInfo struct {
	DocumentHash           string            `json:"documentHash"`
	SourceDataHash         string            `json:"sourceDataHash"`
	HashAlgorithm          string            `json:"hashAlgorithm"`
	GenerationTimestamp    time.Time         `json:"generationTimestamp"`
	TemplatesUsed          []string          `json:"templatesUsed"`
	TemplateVersion        string            `json:"templateVersion"`
	AgentsInvolved         []string          `json:"agentsInvolved"`
	LegalFrameworkVersions map[string]string `json:"legalFrameworkVersions"`
	AuditTrail             []AuditEntry      `json:"auditTrail"`
}

// GeneratedDocument is the artifact returned to callers; the pipeline does
// not persist it.
type GeneratedDocument struct {
	ID             string           `json:"id"`
	TemplateID     string           `json:"templateId"`
	Content        string           `json:"content"`
	Format         OutputFormat     `json:"format"`
	Metadata       DocumentMetadata `json:"metadata"`
	QualityResults []QualityResult  `json:"qualityResults"`
	Traceability   TraceabilityInfo `json:"traceability"`
}
