package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/models"
)

const planActionRequest = `{
  "templateId": "plan_action_LMRSST_v1",
  "companyProfile": {"name": "Boulangerie Dubois", "size": 15, "sector": "commerce"},
  "curatedKnowledgeItems": ["Former les employés à la manutention", "Inspecter les fours"],
  "additionalData": {"alss_name": "Jean Tremblay"},
  "outputFormat": "markdown"
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exitCode(err error) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

// ==========================
// generate / verify
// ==========================

func TestGenerateAndVerify(t *testing.T) {
	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json", planActionRequest)
	docPath := filepath.Join(dir, "document.json")

	out, err := run(t, "generate", "--request", reqPath, "--json", "--out", docPath)
	require.NoError(t, err)
	assert.Contains(t, out, "plan_action_LMRSST_v1")

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	var doc models.GeneratedDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc.Content, "Jean Tremblay")
	assert.NotEmpty(t, doc.Traceability.DocumentHash)

	out, err = run(t, "verify", "--request", reqPath, "--document", docPath)
	require.NoError(t, err)
	assert.Contains(t, out, "intact: yes, reproducible: yes")
}

func TestVerify_TamperedDocument(t *testing.T) {
	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json", planActionRequest)
	docPath := filepath.Join(dir, "document.json")

	_, err := run(t, "generate", "--request", reqPath, "--json", "--out", docPath)
	require.NoError(t, err)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	var doc models.GeneratedDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	doc.Content += "\nAjout non autorisé\n"
	tampered, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(docPath, tampered, 0o644))

	out, err := run(t, "verify", "--request", reqPath, "--document", docPath)
	require.Error(t, err)
	assert.Equal(t, 4, exitCode(err))
	assert.Contains(t, out, "intact: no, reproducible: no")
	assert.Contains(t, out, "- Ajout non autorisé")
}

func TestGenerate_PipelineError(t *testing.T) {
	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json", `{
  "templateId": "plan_action_LMRSST_v1",
  "companyProfile": {"name": "Boulangerie Dubois", "size": 15, "sector": "commerce"},
  "outputFormat": "markdown"
}`)

	_, err := run(t, "generate", "--request", reqPath, "--out", filepath.Join(dir, "out.md"))
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, err.Error(), "MISSING_REQUIRED_FIELD at placeholder_resolution")
}

func TestGenerate_FormatOverride(t *testing.T) {
	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json", planActionRequest)
	outPath := filepath.Join(dir, "plan.pdf.md")

	_, err := run(t, "generate", "--request", reqPath, "--format", "pdf", "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))
	assert.Contains(t, string(data), "Boulangerie Dubois")

	_, err = run(t, "generate", "--request", reqPath, "--format", "html", "--out", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_ERROR")
}

func TestGenerate_BadRequestFile(t *testing.T) {
	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json", `{"templateId":`)

	_, err := run(t, "generate", "--request", reqPath)
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))
}

// ==========================
// templates / template
// ==========================

func TestTemplates(t *testing.T) {
	out, err := run(t, "templates", "--size", "12", "--sector", "commerce")
	require.NoError(t, err)
	assert.Contains(t, out, "plan_action_LMRSST_v1")
	assert.Contains(t, out, "designation_alss_v1")
	assert.NotContains(t, out, "prog_prev_LMRSST_v2")

	_, err = run(t, "templates")
	assert.Equal(t, 3, exitCode(err))
}

func TestTemplate(t *testing.T) {
	out, err := run(t, "template", "prog_prev_LMRSST_v2")
	require.NoError(t, err)
	assert.Contains(t, out, "Programme de prévention (LMRSST)")
	assert.Contains(t, out, "committee_members")
	assert.Contains(t, out, "check_article_90")

	_, err = run(t, "template", "nope")
	assert.Equal(t, 2, exitCode(err))
}

func TestContentDiff(t *testing.T) {
	diff := contentDiff("a\nb\nc\n", "a\nB\nc\n")
	assert.Equal(t, "- b\n+ B\n", diff)
	assert.Empty(t, contentDiff("same\n", "same\n"))
}
