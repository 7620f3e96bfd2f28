// Package render turns resolved placeholder data into a markdown document.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"docugen-workers/internal/models"
)

var ErrRender = errors.New("RENDER_ERROR")

// TimestampLabel prefixes the generation-date line added when the request
// asks for a timestamp.
const TimestampLabel = "**Date d'élaboration:**"

const defaultLanguage = "fr"

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// TokenPattern matches a {{token}} left in rendered content.
func TokenPattern() *regexp.Regexp { return tokenPattern }

type Rendered struct {
	Content  string
	Metadata models.DocumentMetadata
}

type Renderer struct {
	generatedBy string
}

func NewRenderer(generatedBy string) *Renderer {
	if generatedBy == "" {
		generatedBy = "DocuGen"
	}
	return &Renderer{generatedBy: generatedBy}
}

// Render builds the document body for tpl and substitutes data into it.
// Tokens with no value in data are left as they are.
func (r *Renderer) Render(tpl *models.Template, data map[string]any, req *models.GenerationRequest, now time.Time) (*Rendered, error) {
	if tpl == nil || tpl.Subject == "" {
		return nil, fmt.Errorf("%w: template has no subject", ErrRender)
	}

	opts := models.GenerationOptions{}
	company := ""
	if req != nil {
		opts = req.Options
		company = req.CompanyProfile.Name
	}

	sections, ok := bodies[tpl.Subject]
	if !ok {
		sections = genericBody
	}

	blocks := make([]string, 0, len(sections)+2)
	for _, s := range sections {
		if s.flag != "" && data["include_"+s.flag] != true {
			continue
		}
		if s.signature && !opts.IncludeSignatures {
			continue
		}
		blocks = append(blocks, s.text)
	}
	if opts.IncludeTimestamp && len(blocks) > 0 {
		blocks[0] += "\n" + TimestampLabel + " " + now.Format(time.DateOnly)
	}
	body := strings.Join(blocks, "\n\n")

	f := formatter{links: opts.AddLegalHyperlinks}
	content := tokenPattern.ReplaceAllStringFunc(body, func(tok string) string {
		key := tokenPattern.FindStringSubmatch(tok)[1]
		v, ok := data[key]
		if !ok {
			return tok
		}
		return f.format(v)
	})

	if opts.GenerateTOC {
		content = withTableOfContents(content)
	}

	lang := opts.Language
	if lang == "" {
		lang = defaultLanguage
	}
	meta := models.DocumentMetadata{
		Title:          tpl.Name,
		Company:        company,
		GeneratedDate:  now,
		GeneratedBy:    r.generatedBy,
		Version:        tpl.Version,
		Language:       lang,
		WordCount:      len(strings.Fields(content)),
		ApprovalStatus: models.ApprovalDraft,
	}
	if opts.ValidityPeriod > 0 {
		until := now.AddDate(0, opts.ValidityPeriod, 0)
		meta.ValidUntil = &until
	}
	return &Rendered{Content: content, Metadata: meta}, nil
}

// withTableOfContents inserts a list of the level-two headings after the
// document title.
func withTableOfContents(content string) string {
	lines := strings.Split(content, "\n")
	var headings []string
	for _, l := range lines {
		if strings.HasPrefix(l, "## ") {
			headings = append(headings, "- "+strings.TrimPrefix(l, "## "))
		}
	}
	if len(headings) == 0 {
		return content
	}
	toc := "## TABLE DES MATIÈRES\n\n" + strings.Join(headings, "\n")

	end := strings.Index(content, "\n\n## ")
	if end < 0 {
		return content + "\n\n" + toc
	}
	return content[:end] + "\n\n" + toc + content[end:]
}

type formatter struct {
	links bool
}

var itemKeys = []string{"description", "title", "name", "risk", "action"}

func (f formatter) format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case models.LegalArticle:
		return f.article(val)
	case map[string]any:
		for _, k := range itemKeys {
			if s, ok := val[k].(string); ok && s != "" {
				return s
			}
		}
		return toJSON(val)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, "- "+f.format(rv.Index(i).Interface()))
		}
		return strings.Join(items, "\n")
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func (f formatter) article(a models.LegalArticle) string {
	if f.links && a.OfficialURL != "" {
		return "[" + a.String() + "](" + a.OfficialURL + ")"
	}
	return a.String()
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
