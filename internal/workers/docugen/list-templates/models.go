package listtemplates

import "docugen-workers/internal/models"

// Input selects either one template by id or every template applicable to a
// company of the given size and sector.
type Input struct {
	TemplateID string `json:"templateId,omitempty"`
	Size       int    `json:"size,omitempty"`
	Sector     string `json:"sector,omitempty"`
}

type Output struct {
	Templates []TemplateSummary `json:"templates"`
	Count     int               `json:"count"`
}

type TemplateSummary struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	Version              string                `json:"version"`
	Subject              string                `json:"subject"`
	CompanySize          models.CompanySize    `json:"companySize"`
	Priority             models.Priority       `json:"priority"`
	Agent                string                `json:"agent"`
	Legislation          []string              `json:"legislation"`
	RequiredPlaceholders []string              `json:"requiredPlaceholders"`
	OutputFormats        []models.OutputFormat `json:"outputFormats"`
}

func summarize(t models.Template) TemplateSummary {
	s := TemplateSummary{
		ID:            t.ID,
		Name:          t.Name,
		Version:       t.Version,
		Subject:       t.Subject,
		CompanySize:   t.CompanySize,
		Priority:      t.Priority,
		Agent:         t.Agent,
		Legislation:   t.Legislation,
		OutputFormats: t.Metadata.OutputFormats,
	}
	for _, p := range t.Placeholders {
		if p.Required {
			s.RequiredPlaceholders = append(s.RequiredPlaceholders, p.ID)
		}
	}
	return s
}
