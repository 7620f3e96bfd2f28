// internal/models/template.go
package models

// CompanySize is the size category a template applies to.
type CompanySize string

const (
	SizeSmall CompanySize = "small"
	SizeLarge CompanySize = "large"
	SizeAll   CompanySize = "all"
)

// SmallCompanyThreshold is the headcount from which a company is "large".
const SmallCompanyThreshold = 20

// AllSectors is the target-sector wildcard used by the catalog.
const AllSectors = "tous"

type Priority string

const (
	PriorityMandatory   Priority = "mandatory"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

type ValueType string

const (
	TypeString ValueType = "string"
	TypeNumber ValueType = "number"
	TypeArray  ValueType = "array"
)

// Source names the collaborator that supplies a placeholder value.
type Source string

const (
	SourceCaller     Source = "caller-supplied"
	SourceDiagnostic Source = "diagnostic-data"
	SourceKnowledge  Source = "curated-knowledge"
	SourceLegal      Source = "legal-database"
)

type Template struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Version         string           `json:"version"`
	Legislation     []string         `json:"legislation"`
	Subject         string           `json:"subject"`
	TargetSectors   []string         `json:"targetSectors"`
	CompanySize     CompanySize      `json:"companySize"`
	Priority        Priority         `json:"priority"`
	Agent           string           `json:"agent"`
	Placeholders    []Placeholder    `json:"placeholders"`
	GenerationRules []GenerationRule `json:"generationRules"`
	QualityChecks   []QualityCheck   `json:"qualityChecks"`
	Metadata        TemplateMetadata `json:"metadata"`
}

// AppliesToSize reports whether a company of the given headcount fits the
// template's size category.
func (t *Template) AppliesToSize(size int) bool {
	switch t.CompanySize {
	case SizeSmall:
		return size < SmallCompanyThreshold
	case SizeLarge:
		return size >= SmallCompanyThreshold
	default:
		return true
	}
}

// AppliesToSector reports whether the template targets sector.
func (t *Template) AppliesToSector(sector string) bool {
	for _, s := range t.TargetSectors {
		if s == AllSectors || s == "all" || s == sector {
			return true
		}
	}
	return false
}

func (t *Template) SupportsFormat(format OutputFormat) bool {
	if len(t.Metadata.OutputFormats) == 0 {
		return true
	}
	for _, f := range t.Metadata.OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

type TemplateMetadata struct {
	Author                  string         `json:"author"`
	CreatedDate             string         `json:"createdDate"`
	LastModified            string         `json:"lastModified"`
	Tags                    []string       `json:"tags,omitempty"`
	EstimatedGenerationTime int            `json:"estimatedGenerationTime"` // seconds
	OutputFormats           []OutputFormat `json:"outputFormats"`
}

type Placeholder struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Type        ValueType              `json:"type"`
	Required    bool                   `json:"required"`
	Source      Source                 `json:"source"`
	Description string                 `json:"description,omitempty"`
	Validation  *PlaceholderValidation `json:"validation,omitempty"`
}

// PlaceholderValidation bounds a resolved value. Nil fields are unchecked.
type PlaceholderValidation struct {
	Pattern       string   `json:"pattern,omitempty"`
	MinLength     *int     `json:"minLength,omitempty"`
	MaxLength     *int     `json:"maxLength,omitempty"`
	MinValue      *float64 `json:"minValue,omitempty"`
	MaxValue      *float64 `json:"maxValue,omitempty"`
	AllowedValues []string `json:"allowedValues,omitempty"`
}

type RuleAction string

const (
	ActionIncludeSection RuleAction = "include_section"
	ActionInjectValues   RuleAction = "inject_values"
)

// GenerationRule mutates resolved data before rendering when Condition holds.
type GenerationRule struct {
	ID          string     `json:"id"`
	Description string     `json:"description,omitempty"`
	Condition   Expr       `json:"condition"`
	Action      RuleAction `json:"action"`
	Target      string     `json:"target"`
	Value       []string   `json:"value,omitempty"`
}

type CheckType string

const (
	CheckContent  CheckType = "content_validation"
	CheckLegal    CheckType = "legal_compliance"
	CheckComplete CheckType = "completeness"
	CheckFormat   CheckType = "format_check"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type QualityCheck struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         CheckType `json:"type"`
	Rule         Predicate `json:"rule"`
	ErrorMessage string    `json:"errorMessage"`
	Severity     Severity  `json:"severity"`
}
