// Package export packages a rendered document for its requested format.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"docugen-workers/internal/docugen/render"
	"docugen-workers/internal/models"
)

var ErrExport = errors.New("EXPORT_ERROR")

// Compiled is a document ready to hand back to the caller.
type Compiled struct {
	Content  string
	Format   models.OutputFormat
	Metadata models.DocumentMetadata
}

var (
	generatedLine = regexp.MustCompile(`(?m)^generated: .*$`)
	// The date line as markdown ("**Date d'élaboration:** 2026-01-05") or as
	// goldmark renders it ("<strong>Date d'élaboration:</strong> 2026-01-05"),
	// with the apostrophe raw or escaped.
	timestampDate = regexp.MustCompile(`(Date d(?:'|&#39;|&#x27;|&apos;|’|&rsquo;)élaboration:(?:\*\*|</strong>)) \d{4}-\d{2}-\d{2}`)
)

// HashInput is the content with generation timestamps normalised out, so
// identical requests hash identically in every format.
func (c *Compiled) HashInput() string {
	s := generatedLine.ReplaceAllString(c.Content, "generated: -")
	return timestampDate.ReplaceAllString(s, "$1 -")
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Company   string `yaml:"company"`
	Generated string `yaml:"generated"`
	Version   string `yaml:"version"`
}

type Compiler struct {
	md goldmark.Markdown
}

func NewCompiler() *Compiler {
	return &Compiler{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

// CheckFormat reports whether tpl can be exported as format.
func CheckFormat(tpl *models.Template, format models.OutputFormat) error {
	if !known(format) {
		return fmt.Errorf("%w: unknown format %q", ErrExport, format)
	}
	if tpl != nil && !tpl.SupportsFormat(format) {
		return fmt.Errorf("%w: template %s does not support %s", ErrExport, tpl.ID, format)
	}
	return nil
}

func known(format models.OutputFormat) bool {
	switch format {
	case models.FormatMarkdown, models.FormatPDF, models.FormatDOCX, models.FormatHTML:
		return true
	}
	return false
}

func (c *Compiler) Compile(r *render.Rendered, format models.OutputFormat) (*Compiled, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nothing to compile", ErrExport)
	}
	out := &Compiled{Format: format, Metadata: r.Metadata}

	switch format {
	case models.FormatMarkdown, models.FormatDOCX:
		out.Content = r.Content

	case models.FormatPDF:
		header, err := c.header(r.Metadata)
		if err != nil {
			return nil, err
		}
		out.Content = header + r.Content

	case models.FormatHTML:
		header, err := c.header(r.Metadata)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(r.Content), &buf); err != nil {
			return nil, fmt.Errorf("%w: markdown conversion: %v", ErrExport, err)
		}
		out.Content = header + buf.String()

	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrExport, format)
	}
	return out, nil
}

func (c *Compiler) header(meta models.DocumentMetadata) (string, error) {
	fm := frontMatter{
		Title:     meta.Title,
		Company:   meta.Company,
		Generated: meta.GeneratedDate.UTC().Format(time.RFC3339),
		Version:   meta.Version,
	}
	b, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("%w: front matter: %v", ErrExport, err)
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(b)
	sb.WriteString("---\n\n")
	return sb.String(), nil
}
