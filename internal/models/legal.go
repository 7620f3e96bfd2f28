// internal/models/legal.go
package models

import "fmt"

type LegalFramework struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated,omitempty"`
	Articles    []LegalArticle `json:"articles"`
}

type ConditionKind string

const (
	ConditionCompanySize ConditionKind = "company_size"
	ConditionSector      ConditionKind = "sector"
	ConditionDate        ConditionKind = "date"
	ConditionActivity    ConditionKind = "activity"
)

// ApplicabilityCondition restricts when an article applies to a company.
type ApplicabilityCondition struct {
	Kind        ConditionKind `json:"type"`
	Operator    string        `json:"operator"`
	Value       any           `json:"value"`
	Description string        `json:"description,omitempty"`
}

type LegalArticle struct {
	ID              string                   `json:"id"`
	FrameworkID     string                   `json:"frameworkId"`
	Number          string                   `json:"number"`
	Title           string                   `json:"title"`
	Content         string                   `json:"content"`
	Conditions      []ApplicabilityCondition `json:"applicabilityConditions"`
	RelatedSubjects []string                 `json:"relatedSubjects"`
	OfficialURL     string                   `json:"officialUrl,omitempty"`
}

// String renders the article the way it is cited in generated documents.
func (a LegalArticle) String() string {
	return fmt.Sprintf("Article %s %s : %s", a.Number, a.FrameworkID, a.Title)
}

type SSTSubject struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Description    string      `json:"description,omitempty"`
	ApplicableLaws []string    `json:"applicableLaws"`
	Sectors        []string    `json:"sectors"`
	RiskLevels     []RiskLevel `json:"riskLevels"`
}

type SectorDefinition struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	SCIANCodes           []string  `json:"scianCodes"`
	RiskProfile          RiskLevel `json:"riskProfile"`
	SpecificRequirements []string  `json:"specificRequirements"`
}

// ComplianceMatrix states whether the template's legislation is covered by
// the laws applicable to the company.
type ComplianceMatrix struct {
	TemplateRequirements []string `json:"templateRequirements"`
	ApplicableLawIDs     []string `json:"applicableLaws"`
	Coverage             bool     `json:"coverage"`
}

type LegalContext struct {
	ApplicableLaws   []LegalArticle   `json:"applicableLaws"`
	RequiredSubjects []SSTSubject     `json:"requiredSubjects"`
	RelatedArticles  []LegalArticle   `json:"relatedArticles"`
	ComplianceMatrix ComplianceMatrix `json:"complianceMatrix"`
}
