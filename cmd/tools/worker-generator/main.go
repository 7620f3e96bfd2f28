// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"docugen-workers/pkg/registry"
)

// WorkerData feeds the scaffold templates.
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	ActivityID   string
	Description  string
	TimeoutExpr  string
	Fields       []Field
	OutputFields []Field
}

type Field struct {
	Name     string
	GoType   string
	JSONName string
	Comment  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		activity     string
		outputDir    string
		registryPath string
		force        bool
	)
	cmd := &cobra.Command{
		Use:          "worker-generator",
		Short:        "Scaffold a Zeebe worker from an activity registry entry",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("loading registry from %s: %w", registryPath, err)
			}
			a, ok := reg.ByID(activity)
			if !ok {
				return fmt.Errorf("activity %q not found in registry %s", activity, registryPath)
			}
			dir, files, err := generate(a, outputDir, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintf(out, "generated %s\n", f)
			}
			printNextSteps(out, dir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&activity, "activity", "", "Activity ID from registry (e.g. docugen.document.generate)")
	f.StringVar(&outputDir, "output", "./internal/workers/", "Root directory for generated workers")
	f.StringVar(&registryPath, "registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	f.BoolVar(&force, "force", false, "Overwrite an existing worker directory")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}

// workerLocation maps "docugen-generate-document" in category "docugen" to
// the docugen/generate-document directory and package generatedocument.
func workerLocation(a *registry.Activity) (dir, pkg string) {
	name := strings.TrimPrefix(a.TaskType, a.Category+"-")
	return filepath.Join(strings.ToLower(a.Category), name), strings.ReplaceAll(name, "-", "")
}

func newWorkerData(a *registry.Activity) WorkerData {
	_, pkg := workerLocation(a)
	return WorkerData{
		Name:         a.DisplayName,
		PackageName:  pkg,
		TaskType:     a.TaskType,
		ActivityID:   a.ID,
		Description:  a.Description,
		TimeoutExpr:  timeoutExpr(a.Timeout),
		Fields:       schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}
}

// timeoutExpr renders the registry timeout as a Go expression, falling back
// to 10s when it is missing or malformed.
func timeoutExpr(s string) string {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		d = 10 * time.Second
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

func generate(a *registry.Activity, outputDir string, force bool) (string, []string, error) {
	rel, _ := workerLocation(a)
	workerDir := filepath.Join(outputDir, rel)
	if _, err := os.Stat(workerDir); err == nil && !force {
		return "", nil, fmt.Errorf("%s already exists, use --force to overwrite", workerDir)
	}
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating directory: %w", err)
	}

	data := newWorkerData(a)
	names := make([]string, 0, len(scaffold))
	for name := range scaffold {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		src, err := render(name, scaffold[name], data)
		if err != nil {
			return "", written, err
		}
		path := filepath.Join(workerDir, name)
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return "", written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return workerDir, written, nil
}

// render executes a template and gofmts the result so a broken template is
// caught before anything lands on disk.
func render(name, text string, data WorkerData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", name, err)
	}
	return src, nil
}

func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	fields := make([]Field, 0, len(props))
	for name, raw := range props {
		details, _ := raw.(map[string]interface{})
		f := Field{
			Name:     exportedName(name),
			GoType:   goType(details["type"]),
			JSONName: name,
		}
		if desc, ok := details["description"].(string); ok {
			f.Comment = strings.ReplaceAll(desc, "\n", " ")
		}
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSONName < fields[j].JSONName })
	return fields
}

func goType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// exportedName turns "company_profile" or "templateId" into CompanyProfile
// and TemplateID.
func exportedName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	var b strings.Builder
	for _, p := range parts {
		if strings.EqualFold(p, "id") {
			b.WriteString("ID")
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	out := b.String()
	if strings.HasSuffix(out, "Id") {
		out = strings.TrimSuffix(out, "Id") + "ID"
	}
	if out == "" || !isLetter(out[0]) {
		out = "Field" + out
	}
	return out
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func printNextSteps(w io.Writer, dir string) {
	fmt.Fprintf(w, "\nworker scaffold generated at %s\n", dir)
	fmt.Fprintln(w, "next steps:")
	fmt.Fprintln(w, "  1. implement execute in handler.go")
	fmt.Fprintln(w, "  2. extend the table in handler_test.go")
	fmt.Fprintln(w, "  3. register the worker in cmd/worker-manager/wiring.go")
	fmt.Fprintln(w, "  4. add its section under workers in configs/config.yaml")
}
