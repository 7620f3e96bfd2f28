// internal/models/request.go
package models

type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatPDF      OutputFormat = "pdf"
	FormatDOCX     OutputFormat = "docx"
	FormatHTML     OutputFormat = "html"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type CompanyProfile struct {
	Name       string    `json:"name"`
	Address    string    `json:"address,omitempty"`
	Size       int       `json:"size"`
	Sector     string    `json:"sector"`
	RiskLevel  RiskLevel `json:"riskLevel,omitempty"`
	SCIANCode  string    `json:"scianCode,omitempty"`
	Activities []string  `json:"activities,omitempty"`
}

// EffectiveRiskLevel returns the declared risk level, medium when unset.
func (p CompanyProfile) EffectiveRiskLevel() RiskLevel {
	if p.RiskLevel == "" {
		return RiskMedium
	}
	return p.RiskLevel
}

type GenerationOptions struct {
	Language           string `json:"language,omitempty"`
	IncludeSignatures  bool   `json:"includeSignatures,omitempty"`
	IncludeTimestamp   bool   `json:"includeTimestamp,omitempty"`
	GenerateTOC        bool   `json:"generateTOC,omitempty"`
	AddLegalHyperlinks bool   `json:"addLegalHyperlinks,omitempty"`
	ValidityPeriod     int    `json:"validityPeriod,omitempty"` // months
}

// GenerationRequest is the input to one pipeline run.
type GenerationRequest struct {
	TemplateID       string            `json:"templateId"`
	CompanyProfile   CompanyProfile    `json:"companyProfile"`
	DiagnosticData   []any             `json:"diagnosticData,omitempty"`
	CuratedKnowledge []any             `json:"curatedKnowledgeItems,omitempty"`
	AdditionalData   map[string]any    `json:"additionalData,omitempty"`
	OutputFormat     OutputFormat      `json:"outputFormat"`
	Options          GenerationOptions `json:"options"`
}
