// Package pipeline orchestrates document generation: template selection,
// legal mapping, placeholder resolution, rendering, quality checks, export
// and traceability.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/metrics"
	"docugen-workers/internal/docugen/audit"
	"docugen-workers/internal/docugen/catalog"
	"docugen-workers/internal/docugen/export"
	"docugen-workers/internal/docugen/legal"
	"docugen-workers/internal/docugen/quality"
	"docugen-workers/internal/docugen/render"
	"docugen-workers/internal/docugen/resolver"
	"docugen-workers/internal/docugen/rules"
	dtrace "docugen-workers/internal/docugen/trace"
	"docugen-workers/internal/models"
)

type Pipeline struct {
	catalog   *catalog.Catalog
	mapper    *legal.Mapper
	resolver  *resolver.Resolver
	rules     *rules.Engine
	renderer  *render.Renderer
	validator *quality.Validator
	compiler  *export.Compiler
	recorder  *dtrace.Recorder
	tracer    trace.Tracer
	log       logger.Logger
	now       func() time.Time
	newID     func() string

	source legal.ArticleSource
	store  audit.Store
}

type Option func(*Pipeline)

// WithArticleSource replaces the built-in legal ontology.
func WithArticleSource(src legal.ArticleSource) Option {
	return func(p *Pipeline) { p.source = src }
}

// WithAuditStore persists every traceability record.
func WithAuditStore(store audit.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithResolver replaces the placeholder resolver, e.g. to register extra
// providers.
func WithResolver(r *resolver.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

func New(cat *catalog.Catalog, log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog:   cat,
		resolver:  resolver.New(),
		rules:     rules.NewEngine(),
		renderer:  render.NewRenderer(dtrace.DefaultAgentName),
		validator: quality.NewValidator(),
		compiler:  export.NewCompiler(),
		tracer:    otel.Tracer("docugen-workers/pipeline"),
		log:       log.Named("pipeline"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		p.source = legal.NewStaticSource()
	}
	p.mapper = legal.NewMapper(p.source, legal.WithClock(p.now))
	p.recorder = dtrace.NewRecorder(p.store, p.now)
	return p
}

func (p *Pipeline) TemplatesByProfile(size int, sector string) []models.Template {
	return p.catalog.ByProfile(size, sector)
}

func (p *Pipeline) TemplateByID(id string) (*models.Template, bool) {
	return p.catalog.Get(id)
}

// run carries the intermediate results of one Generate call.
type run struct {
	// at is the single generation instant shared by every stage.
	at       time.Time
	req      *models.GenerationRequest
	format   models.OutputFormat
	tpl      *models.Template
	legalCtx *models.LegalContext
	resolved map[string]any
	data     map[string]any
	rendered *render.Rendered
	results  []models.QualityResult
	compiled *export.Compiled
	info     *models.TraceabilityInfo
}

type stageFunc func(ctx context.Context, r *run) (output string, logs []string, err error)

// Generate runs every stage in order and stops at the first fatal error.
// The execution record is returned in every case.
func (p *Pipeline) Generate(ctx context.Context, req models.GenerationRequest) (*models.GeneratedDocument, *models.PipelineExecution, error) {
	start := p.now()
	exec := &models.PipelineExecution{
		ID:        p.newID(),
		Status:    models.StatusRunning,
		StartTime: start,
	}
	if h, err := dtrace.SourceHash(&req); err == nil {
		exec.RequestID = h[:16]
	}

	log := p.log.WithFields(map[string]interface{}{
		"executionId": exec.ID,
		"templateId":  req.TemplateID,
	})

	ctx, span := p.tracer.Start(ctx, "docugen.generate",
		trace.WithAttributes(attribute.String("docugen.template_id", req.TemplateID)))
	defer span.End()

	r := &run{at: start, req: &req, format: req.OutputFormat}
	if r.format == "" {
		r.format = models.FormatMarkdown
	}

	stages := []struct {
		name models.StageName
		fn   stageFunc
	}{
		{models.StageTemplateSelection, p.selectTemplate},
		{models.StageLegalMapping, p.mapLegal},
		{models.StagePlaceholderResolution, p.resolvePlaceholders},
		{models.StageContentGeneration, p.generateContent},
		{models.StageQualityAssurance, p.checkQuality},
		{models.StageCompilationExport, p.compile},
		{models.StageTraceability, p.record},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			stageErr := &StageError{Stage: s.name, Err: err}
			p.finish(exec, models.StatusCancelled, req.TemplateID, stageErr)
			span.SetStatus(codes.Error, stageErr.Error())
			log.Warn("Document generation cancelled", map[string]interface{}{"stage": string(s.name)})
			return nil, exec, stageErr
		}

		if err := p.runStage(ctx, exec, s.name, s.fn, r); err != nil {
			stageErr := &StageError{Stage: s.name, Err: err}
			p.finish(exec, models.StatusFailed, req.TemplateID, stageErr)
			span.RecordError(stageErr)
			span.SetStatus(codes.Error, stageErr.Error())
			log.Error("Document generation failed", map[string]interface{}{
				"stage": string(s.name),
				"code":  Code(err),
				"error": err.Error(),
			})
			return nil, exec, stageErr
		}
	}

	p.finish(exec, models.StatusCompleted, r.tpl.ID, nil)

	doc := &models.GeneratedDocument{
		ID:             p.newID(),
		TemplateID:     r.tpl.ID,
		Content:        r.compiled.Content,
		Format:         r.compiled.Format,
		Metadata:       r.compiled.Metadata,
		QualityResults: r.results,
		Traceability:   *r.info,
	}

	log.Info("Document generated", map[string]interface{}{
		"documentId":   doc.ID,
		"documentHash": doc.Traceability.DocumentHash,
		"format":       string(doc.Format),
		"durationMs":   exec.Duration.Milliseconds(),
	})
	return doc, exec, nil
}

func (p *Pipeline) runStage(ctx context.Context, exec *models.PipelineExecution, name models.StageName, fn stageFunc, r *run) error {
	ctx, span := p.tracer.Start(ctx, "docugen."+string(name))
	defer span.End()

	res := models.PipelineStageResult{Stage: name, Status: models.StatusRunning, StartTime: p.now()}
	output, logs, err := fn(ctx, r)
	res.EndTime = p.now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	res.Logs = logs

	if err != nil {
		res.Status = models.StatusFailed
		res.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		res.Status = models.StatusCompleted
		res.Output = output
	}
	exec.Stages = append(exec.Stages, res)

	metrics.PipelineStageDuration.WithLabelValues(string(name), string(res.Status)).Observe(res.Duration.Seconds())
	return err
}

func (p *Pipeline) finish(exec *models.PipelineExecution, status models.ExecutionStatus, templateID string, err error) {
	exec.Status = status
	exec.EndTime = p.now()
	exec.Duration = exec.EndTime.Sub(exec.StartTime)
	if err != nil {
		exec.Error = err.Error()
	}
	metrics.PipelineExecutions.WithLabelValues(templateID, string(status)).Inc()
}

func (p *Pipeline) selectTemplate(_ context.Context, r *run) (string, []string, error) {
	if strings.TrimSpace(r.req.TemplateID) == "" {
		return "", nil, fmt.Errorf("%w: templateId is required", ErrInvalidRequest)
	}
	tpl, err := p.catalog.Select(r.req.TemplateID, r.req.CompanyProfile)
	if err != nil {
		return "", nil, err
	}
	r.tpl = tpl
	return fmt.Sprintf("%s v%s", tpl.ID, tpl.Version), nil, nil
}

func (p *Pipeline) mapLegal(ctx context.Context, r *run) (string, []string, error) {
	lc, err := p.mapper.MapAt(ctx, r.req.CompanyProfile, r.tpl, r.at)
	if err != nil {
		return "", nil, err
	}
	r.legalCtx = lc

	var logs []string
	if !lc.ComplianceMatrix.Coverage {
		logs = append(logs, fmt.Sprintf("legislation %v not fully covered by applicable articles",
			lc.ComplianceMatrix.TemplateRequirements))
	}
	return fmt.Sprintf("%d applicable articles, %d required subjects",
		len(lc.ApplicableLaws), len(lc.RequiredSubjects)), logs, nil
}

func (p *Pipeline) resolvePlaceholders(ctx context.Context, r *run) (string, []string, error) {
	resolved, err := p.resolver.Resolve(ctx, r.tpl, r.req, r.legalCtx)
	if err != nil {
		return "", nil, err
	}
	r.resolved = resolved
	return fmt.Sprintf("%d placeholders resolved", len(resolved)), nil, nil
}

func (p *Pipeline) generateContent(_ context.Context, r *run) (string, []string, error) {
	res := p.rules.Apply(r.tpl.GenerationRules, r.resolved, r.req, r.tpl)
	r.data = res.Data

	logs := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		logs = append(logs, w.Error())
	}

	rendered, err := p.renderer.Render(r.tpl, r.data, r.req, r.at)
	if err != nil {
		return "", logs, err
	}
	r.rendered = rendered
	return fmt.Sprintf("%d words", rendered.Metadata.WordCount), logs, nil
}

func (p *Pipeline) checkQuality(_ context.Context, r *run) (string, []string, error) {
	r.results = p.validator.Validate(r.tpl.QualityChecks, quality.State{Content: r.rendered.Content, Data: r.data})

	var logs []string
	for _, res := range r.results {
		metrics.QualityCheckResults.WithLabelValues(res.CheckID, string(res.Status)).Inc()
		if res.Status != models.QualityPass {
			logs = append(logs, fmt.Sprintf("%s [%s/%s]: %s", res.CheckID, res.Severity, res.Status, res.Message))
		}
	}
	s := quality.Summarize(r.results)
	return fmt.Sprintf("%d passed, %d failed, %d warnings", s.Passed, s.Failed, s.Warnings), logs, nil
}

func (p *Pipeline) compile(_ context.Context, r *run) (string, []string, error) {
	if err := export.CheckFormat(r.tpl, r.format); err != nil {
		return "", nil, err
	}
	compiled, err := p.compiler.Compile(r.rendered, r.format)
	if err != nil {
		return "", nil, err
	}
	r.compiled = compiled
	return string(compiled.Format), nil, nil
}

func (p *Pipeline) record(ctx context.Context, r *run) (string, []string, error) {
	info, err := p.recorder.RecordAt(ctx, r.req, r.tpl, r.compiled, r.at)
	if err != nil {
		return "", nil, err
	}
	r.info = info
	return info.DocumentHash, nil, nil
}
