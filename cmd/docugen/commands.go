package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/docugen/catalog"
	"docugen-workers/internal/docugen/pipeline"
	"docugen-workers/internal/docugen/quality"
	"docugen-workers/internal/models"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	catalogPath string
	verbose     bool
}

type generateFlags struct {
	request string
	format  string
	out     string
	asJSON  bool
}

type verifyFlags struct {
	request  string
	document string
}

func newRootCommand() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:           "docugen",
		Short:         "Generate and verify Québec SST compliance documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&rf.catalogPath, "catalog", "", "Template catalog YAML (default: embedded catalog)")
	root.PersistentFlags().BoolVar(&rf.verbose, "verbose", false, "Log pipeline stages to stderr")

	root.AddCommand(
		newGenerateCommand(&rf),
		newTemplatesCommand(&rf),
		newTemplateCommand(&rf),
		newVerifyCommand(&rf),
	)
	return root
}

func newGenerateCommand(rf *rootFlags) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the pipeline for a request file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), rf, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.request, "request", "", "Generation request JSON file")
	f.StringVar(&flags.format, "format", "", "Override the request output format: markdown, pdf, docx or html")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	f.BoolVar(&flags.asJSON, "json", false, "Emit the full document JSON instead of its content")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func newTemplatesCommand(rf *rootFlags) *cobra.Command {
	var size int
	var sector string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List templates applicable to a company",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 1 {
				return codeError(3, "--size must be at least 1")
			}
			p, err := buildPipeline(rf, nil)
			if err != nil {
				return err
			}
			return printTemplates(cmd.OutOrStdout(), p.TemplatesByProfile(size, sector))
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "Number of employees")
	cmd.Flags().StringVar(&sector, "sector", "", "Activity sector (e.g. construction)")
	return cmd
}

func newTemplateCommand(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "template <id>",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(rf, nil)
			if err != nil {
				return err
			}
			tpl, ok := p.TemplateByID(args[0])
			if !ok {
				return codeError(2, "%s: %s", catalog.ErrTemplateNotFound, args[0])
			}
			return printTemplate(cmd.OutOrStdout(), tpl)
		},
	}
}

func newVerifyCommand(rf *rootFlags) *cobra.Command {
	var flags verifyFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a stored document against its hash and a fresh generation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd.Context(), cmd.OutOrStdout(), rf, flags)
		},
	}
	cmd.Flags().StringVar(&flags.request, "request", "", "Generation request JSON file")
	cmd.Flags().StringVar(&flags.document, "document", "", "Generated document JSON file")
	_ = cmd.MarkFlagRequired("request")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}

func buildPipeline(rf *rootFlags, clock func() time.Time) (*pipeline.Pipeline, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if rf.catalogPath != "" {
		cat, err = catalog.LoadFile(rf.catalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, codeError(3, "loading catalog: %s", err)
	}

	log := logger.NewNoOpLogger()
	if rf.verbose {
		log = logger.NewStructured("debug", "console")
	}

	var opts []pipeline.Option
	if clock != nil {
		opts = append(opts, pipeline.WithClock(clock))
	}
	return pipeline.New(cat, log, opts...), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return codeError(3, "reading %s: %s", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return codeError(3, "parsing %s: %s", path, err)
	}
	return nil
}

func runGenerate(ctx context.Context, stdout io.Writer, rf *rootFlags, flags generateFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var req models.GenerationRequest
	if err := readJSON(flags.request, &req); err != nil {
		return err
	}
	if flags.format != "" {
		req.OutputFormat = models.OutputFormat(flags.format)
	}

	p, err := buildPipeline(rf, nil)
	if err != nil {
		return err
	}

	doc, exec, err := p.Generate(ctx, req)
	if err != nil {
		stage, _ := pipeline.FailedStage(err)
		return codeError(2, "%s at %s: %s", pipeline.Code(err), stage, err)
	}

	var payload []byte
	if flags.asJSON {
		payload, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return codeError(1, "encoding document: %s", err)
		}
		payload = append(payload, '\n')
	} else {
		payload = []byte(doc.Content)
	}

	if flags.out != "" {
		if err := os.WriteFile(flags.out, payload, 0o644); err != nil {
			return codeError(1, "writing %s: %s", flags.out, err)
		}
	} else if _, err := stdout.Write(payload); err != nil {
		return err
	}

	summary := quality.Summarize(doc.QualityResults)
	report := stdout
	if flags.out == "" {
		report = os.Stderr
	}
	fmt.Fprintf(report, "document %s (%s) hash %s, %d/%d checks passed, status %s, %s\n",
		doc.ID, doc.TemplateID, doc.Traceability.DocumentHash,
		summary.Passed, summary.Total, doc.Metadata.ApprovalStatus, exec.Duration)
	return nil
}

func runVerify(ctx context.Context, stdout io.Writer, rf *rootFlags, flags verifyFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var req models.GenerationRequest
	if err := readJSON(flags.request, &req); err != nil {
		return err
	}
	var doc models.GeneratedDocument
	if err := readJSON(flags.document, &doc); err != nil {
		return err
	}

	// Regenerate at the recorded instant so date-dependent content and legal
	// applicability match the original run.
	generatedAt := doc.Traceability.GenerationTimestamp
	p, err := buildPipeline(rf, func() time.Time { return generatedAt })
	if err != nil {
		return err
	}

	v, err := p.Verify(ctx, req, &doc)
	if err != nil {
		return codeError(2, "regenerating: %s: %s", pipeline.Code(err), err)
	}

	fmt.Fprintf(stdout, "recorded hash:    %s\n", v.RecordedHash)
	fmt.Fprintf(stdout, "content hash:     %s\n", v.ContentHash)
	fmt.Fprintf(stdout, "regenerated hash: %s\n", v.RegeneratedHash)
	fmt.Fprintf(stdout, "intact: %s, reproducible: %s\n", yesNo(v.Intact()), yesNo(v.Reproducible()))

	if v.OK() {
		return nil
	}
	if !v.Reproducible() {
		fmt.Fprintln(stdout, "--- stored")
		fmt.Fprintln(stdout, "+++ regenerated")
		fmt.Fprint(stdout, contentDiff(doc.Content, v.Regenerated.Content))
	}
	return codeError(4, "document %s failed verification", doc.ID)
}

// contentDiff renders a line-level diff, printing only changed lines.
func contentDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printTemplates(w io.Writer, templates []models.Template) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tSIZE\tPRIORITY\tNAME")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Version, t.CompanySize, t.Priority, t.Name)
	}
	return tw.Flush()
}

func printTemplate(w io.Writer, t *models.Template) error {
	fmt.Fprintf(w, "%s (version %s)\n", t.Name, t.Version)
	fmt.Fprintf(w, "id: %s\nsubject: %s\nsize: %s\nsectors: %s\nlegislation: %s\nagent: %s\n",
		t.ID, t.Subject, t.CompanySize, strings.Join(t.TargetSectors, ", "),
		strings.Join(t.Legislation, ", "), t.Agent)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nPLACEHOLDER\tTYPE\tSOURCE\tREQUIRED")
	for _, p := range t.Placeholders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Type, p.Source, yesNo(p.Required))
	}
	fmt.Fprintln(tw, "\nRULE\tACTION\tTARGET\t")
	for _, r := range t.GenerationRules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.ID, r.Action, r.Target)
	}
	fmt.Fprintln(tw, "\nCHECK\tTYPE\tSEVERITY\t")
	for _, c := range t.QualityChecks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c.ID, c.Type, c.Severity)
	}
	return tw.Flush()
}
