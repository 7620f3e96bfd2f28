package models

import "encoding/json"

// Operator is a comparison operator usable in rule conditions.
type Operator string

const (
	OpEq          Operator = "=="
	OpNe          Operator = "!="
	OpGt          Operator = ">"
	OpGte         Operator = ">="
	OpLt          Operator = "<"
	OpLte         Operator = "<="
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
)

// Expr is a rule condition: Comparison, And or Or.
type Expr interface {
	exprNode()
}

// Comparison compares the value at Field in the evaluation environment with Value.
type Comparison struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// And holds when every term holds. An empty And is true.
type And struct {
	Terms []Expr `json:"terms"`
}

// Or holds when at least one term holds. An empty Or is false.
type Or struct {
	Terms []Expr `json:"terms"`
}

func (Comparison) exprNode() {}
func (And) exprNode()        {}
func (Or) exprNode()         {}

func (c Comparison) MarshalJSON() ([]byte, error) {
	type alias Comparison
	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{"comparison", alias(c)})
}

func (a And) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"kind": "and", "terms": a.Terms})
}

func (o Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"kind": "or", "terms": o.Terms})
}

// Predicate is a typed quality-check rule evaluated against the rendered
// content and the processed placeholder data.
type Predicate interface {
	predicateNode()
}

// FieldPresent holds when Field has a non-empty value.
type FieldPresent struct {
	Field string `json:"field"`
}

// FieldsPresent holds when every field in Fields has a non-empty value.
type FieldsPresent struct {
	Fields []string `json:"fields"`
}

// MinItems holds when Field is a list with at least Min entries.
type MinItems struct {
	Field string `json:"field"`
	Min   int    `json:"min"`
}

// CitesArticle holds when any of Fields references ArticleID, either as a
// resolved LegalArticle or as the bare article id.
type CitesArticle struct {
	ArticleID string   `json:"articleId"`
	Fields    []string `json:"fields"`
}

// ContentContains holds when the rendered content contains Text, ignoring case.
type ContentContains struct {
	Text string `json:"text"`
}

// NoUnresolvedTokens holds when no {{token}} is left in the rendered content.
type NoUnresolvedTokens struct{}

func (FieldPresent) predicateNode()       {}
func (FieldsPresent) predicateNode()      {}
func (MinItems) predicateNode()           {}
func (CitesArticle) predicateNode()       {}
func (ContentContains) predicateNode()    {}
func (NoUnresolvedTokens) predicateNode() {}
