package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"docugen-workers/internal/models"
)

//go:embed templates.yaml
var defaultCatalog []byte

type catalogFile struct {
	Version   string         `yaml:"version"`
	Templates []templateNode `yaml:"templates"`
}

type templateNode struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Version         string            `yaml:"version"`
	Legislation     []string          `yaml:"legislation"`
	Subject         string            `yaml:"subject"`
	TargetSectors   []string          `yaml:"targetSectors"`
	CompanySize     string            `yaml:"companySize"`
	Priority        string            `yaml:"priority"`
	Agent           string            `yaml:"agent"`
	Placeholders    []placeholderNode `yaml:"placeholders"`
	GenerationRules []ruleNode        `yaml:"generationRules"`
	QualityChecks   []checkNode       `yaml:"qualityChecks"`
	Metadata        metadataNode      `yaml:"metadata"`
}

type placeholderNode struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Required    bool            `yaml:"required"`
	Source      string          `yaml:"source"`
	Description string          `yaml:"description"`
	Validation  *validationNode `yaml:"validation"`
}

type validationNode struct {
	Pattern       string   `yaml:"pattern"`
	MinLength     *int     `yaml:"minLength"`
	MaxLength     *int     `yaml:"maxLength"`
	MinValue      *float64 `yaml:"minValue"`
	MaxValue      *float64 `yaml:"maxValue"`
	AllowedValues []string `yaml:"allowedValues"`
}

type ruleNode struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Condition   conditionNode `yaml:"condition"`
	Action      string        `yaml:"action"`
	Target      string        `yaml:"target"`
	Value       []string      `yaml:"value"`
}

// conditionNode is either a comparison (field/op/value) or a combinator
// (all/any) in the catalog file.
type conditionNode struct {
	Field string          `yaml:"field"`
	Op    string          `yaml:"op"`
	Value any             `yaml:"value"`
	All   []conditionNode `yaml:"all"`
	Any   []conditionNode `yaml:"any"`
}

type checkNode struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Type         string        `yaml:"type"`
	Rule         predicateNode `yaml:"rule"`
	ErrorMessage string        `yaml:"errorMessage"`
	Severity     string        `yaml:"severity"`
}

type predicateNode struct {
	Kind    string   `yaml:"kind"`
	Field   string   `yaml:"field"`
	Fields  []string `yaml:"fields"`
	Min     int      `yaml:"min"`
	Article string   `yaml:"article"`
	Text    string   `yaml:"text"`
}

type metadataNode struct {
	Author                  string   `yaml:"author"`
	CreatedDate             string   `yaml:"createdDate"`
	LastModified            string   `yaml:"lastModified"`
	Tags                    []string `yaml:"tags"`
	EstimatedGenerationTime int      `yaml:"estimatedGenerationTime"`
	OutputFormats           []string `yaml:"outputFormats"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	templates := make([]models.Template, 0, len(file.Templates))
	for _, node := range file.Templates {
		tpl, err := node.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrInvalidCatalog, node.ID, err)
		}
		templates = append(templates, tpl)
	}
	return New(file.Version, templates)
}

func (n templateNode) toModel() (models.Template, error) {
	tpl := models.Template{
		ID:            n.ID,
		Name:          n.Name,
		Version:       n.Version,
		Legislation:   n.Legislation,
		Subject:       n.Subject,
		TargetSectors: n.TargetSectors,
		CompanySize:   models.CompanySize(n.CompanySize),
		Priority:      models.Priority(n.Priority),
		Agent:         n.Agent,
		Metadata: models.TemplateMetadata{
			Author:                  n.Metadata.Author,
			CreatedDate:             n.Metadata.CreatedDate,
			LastModified:            n.Metadata.LastModified,
			Tags:                    n.Metadata.Tags,
			EstimatedGenerationTime: n.Metadata.EstimatedGenerationTime,
		},
	}
	if tpl.CompanySize == "" {
		tpl.CompanySize = models.SizeAll
	}
	switch tpl.CompanySize {
	case models.SizeSmall, models.SizeLarge, models.SizeAll:
	default:
		return tpl, fmt.Errorf("unknown company size %q", n.CompanySize)
	}
	if len(tpl.TargetSectors) == 0 {
		tpl.TargetSectors = []string{models.AllSectors}
	}
	for _, f := range n.Metadata.OutputFormats {
		tpl.Metadata.OutputFormats = append(tpl.Metadata.OutputFormats, models.OutputFormat(f))
	}

	for _, p := range n.Placeholders {
		ph, err := p.toModel()
		if err != nil {
			return tpl, err
		}
		tpl.Placeholders = append(tpl.Placeholders, ph)
	}

	for _, r := range n.GenerationRules {
		cond, err := r.Condition.toExpr()
		if err != nil {
			return tpl, fmt.Errorf("rule %q: %w", r.ID, err)
		}
		action := models.RuleAction(r.Action)
		if action != models.ActionIncludeSection && action != models.ActionInjectValues {
			return tpl, fmt.Errorf("rule %q: unknown action %q", r.ID, r.Action)
		}
		tpl.GenerationRules = append(tpl.GenerationRules, models.GenerationRule{
			ID:          r.ID,
			Description: r.Description,
			Condition:   cond,
			Action:      action,
			Target:      r.Target,
			Value:       r.Value,
		})
	}

	for _, c := range n.QualityChecks {
		pred, err := c.Rule.toPredicate()
		if err != nil {
			return tpl, fmt.Errorf("check %q: %w", c.ID, err)
		}
		severity := models.Severity(c.Severity)
		if severity == "" {
			severity = models.SeverityWarning
		}
		tpl.QualityChecks = append(tpl.QualityChecks, models.QualityCheck{
			ID:           c.ID,
			Name:         c.Name,
			Type:         models.CheckType(c.Type),
			Rule:         pred,
			ErrorMessage: c.ErrorMessage,
			Severity:     severity,
		})
	}
	return tpl, nil
}

func (p placeholderNode) toModel() (models.Placeholder, error) {
	ph := models.Placeholder{
		ID:          p.ID,
		Name:        p.Name,
		Type:        models.ValueType(p.Type),
		Required:    p.Required,
		Source:      models.Source(p.Source),
		Description: p.Description,
	}
	if ph.ID == "" {
		return ph, fmt.Errorf("placeholder without id")
	}
	if ph.Name == "" {
		ph.Name = ph.ID
	}
	if v := p.Validation; v != nil {
		ph.Validation = &models.PlaceholderValidation{
			Pattern:       v.Pattern,
			MinLength:     v.MinLength,
			MaxLength:     v.MaxLength,
			MinValue:      v.MinValue,
			MaxValue:      v.MaxValue,
			AllowedValues: v.AllowedValues,
		}
	}
	return ph, nil
}

func (c conditionNode) toExpr() (models.Expr, error) {
	switch {
	case len(c.All) > 0:
		terms, err := convertTerms(c.All)
		return models.And{Terms: terms}, err
	case len(c.Any) > 0:
		terms, err := convertTerms(c.Any)
		return models.Or{Terms: terms}, err
	case c.Field != "":
		return models.Comparison{Field: c.Field, Operator: models.Operator(c.Op), Value: c.Value}, nil
	default:
		return nil, fmt.Errorf("condition needs field, all or any")
	}
}

func convertTerms(nodes []conditionNode) ([]models.Expr, error) {
	terms := make([]models.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := n.toExpr()
		if err != nil {
			return nil, err
		}
		terms = append(terms, e)
	}
	return terms, nil
}

func (p predicateNode) toPredicate() (models.Predicate, error) {
	switch p.Kind {
	case "field_present":
		return models.FieldPresent{Field: p.Field}, nil
	case "fields_present":
		return models.FieldsPresent{Fields: p.Fields}, nil
	case "min_items":
		return models.MinItems{Field: p.Field, Min: p.Min}, nil
	case "cites_article":
		return models.CitesArticle{ArticleID: p.Article, Fields: p.Fields}, nil
	case "content_contains":
		return models.ContentContains{Text: p.Text}, nil
	case "no_unresolved_tokens":
		return models.NoUnresolvedTokens{}, nil
	default:
		return nil, fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
}
