package generatedocument

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"docugen-workers/internal/common/errors"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/metrics"
	"docugen-workers/internal/common/observability"
	"docugen-workers/internal/common/validation"
	"docugen-workers/internal/docugen/cache"
	"docugen-workers/internal/docugen/notify"
	"docugen-workers/internal/docugen/pipeline"
	"docugen-workers/internal/docugen/quality"
)

const (
	TaskType = "docugen-generate-document"
)

// Dependencies are the collaborators of the handler. Only Pipeline is
// required; a nil Cache, Alerter or Telemetry disables that step.
type Dependencies struct {
	Pipeline    *pipeline.Pipeline
	Cache       *cache.DocumentCache
	Publisher   notify.Publisher
	Alerter     *notify.ReviewAlerter
	Telemetry   *observability.Observability
	InputSchema map[string]interface{}
}

type Handler struct {
	config     *Config
	deps       Dependencies
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Publisher == nil {
		deps.Publisher = notify.NopPublisher{}
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deps:       deps,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput([]byte(job.Variables))
	if err == nil {
		var output *Output
		output, err = h.execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			h.record(ctx, "completed", start)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			return
		}
	}

	stdErr := ToJobError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.record(ctx, "failed", start)
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

// parseInput validates the job variables against the registered input schema
// before decoding them.
func (h *Handler) parseInput(variables []byte) (*Input, error) {
	if len(h.deps.InputSchema) > 0 {
		result, err := validation.ValidateJSON(h.deps.InputSchema, variables)
		if err != nil {
			return nil, errors.NewInvalidRequestError(err.Error())
		}
		if !result.Valid {
			return nil, errors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", pipeline.ErrInvalidRequest)
	}

	lang, err := validation.NormalizeLanguage(input.Options.Language)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidRequest, err)
	}
	input.Options.Language = lang

	cacheKey := h.cacheKey(input)
	if cacheKey != "" {
		if entry, ok := h.deps.Cache.Get(ctx, cacheKey); ok {
			h.logger.Info("serving cached document", map[string]interface{}{
				"documentId": entry.Document.ID,
				"templateId": entry.Document.TemplateID,
			})
			return &Output{
				Document:       entry.Document,
				Execution:      entry.Execution,
				QualitySummary: quality.Summarize(entry.Document.QualityResults),
				Cached:         true,
			}, nil
		}
	}

	doc, exec, err := h.deps.Pipeline.Generate(ctx, *input)
	if err != nil {
		return nil, err
	}

	output := &Output{
		Document:       doc,
		Execution:      exec,
		QualitySummary: quality.Summarize(doc.QualityResults),
	}

	if cacheKey != "" {
		h.deps.Cache.Put(ctx, cacheKey, &cache.Entry{Document: doc, Execution: exec})
	}

	if err := h.deps.Publisher.Publish(ctx, notify.NewDocumentEvent(doc)); err != nil {
		h.logger.Error("document event not published", map[string]interface{}{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
	}

	if h.deps.Alerter != nil && output.QualitySummary.HasErrorFailures {
		sent, err := h.deps.Alerter.Alert(ctx, doc)
		if err != nil {
			h.logger.Error("review alert not sent", map[string]interface{}{
				"documentId": doc.ID,
				"error":      err.Error(),
			})
		}
		output.ReviewRequested = sent
	}

	if h.deps.Telemetry != nil {
		h.deps.Telemetry.RecordDocumentGenerated(ctx, doc.TemplateID, string(doc.Format))
	}

	h.logger.Info("document generated", map[string]interface{}{
		"documentId":     doc.ID,
		"templateId":     doc.TemplateID,
		"documentHash":   doc.Traceability.DocumentHash,
		"approvalStatus": doc.Metadata.ApprovalStatus,
		"failedChecks":   output.QualitySummary.Failed,
	})
	return output, nil
}

// cacheKey returns "" when caching is off or the template is unknown; the
// pipeline reports the latter.
func (h *Handler) cacheKey(input *Input) string {
	if !h.config.CacheEnabled || h.deps.Cache == nil {
		return ""
	}
	tpl, ok := h.deps.Pipeline.TemplateByID(input.TemplateID)
	if !ok {
		return ""
	}
	key, err := cache.Key(input, tpl.Version)
	if err != nil {
		h.logger.Warn("cache key not computed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return key
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) record(ctx context.Context, status string, start time.Time) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	if h.deps.Telemetry != nil {
		h.deps.Telemetry.RecordJobProcessed(ctx, TaskType, status)
		h.deps.Telemetry.RecordJobDuration(ctx, TaskType, elapsed, status)
	}
}

// ToJobError maps a pipeline error to the StandardError thrown to Zeebe,
// keeping the failing stage and the stable code.
func ToJobError(err error) *errors.StandardError {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	stage, _ := pipeline.FailedStage(err)
	return errors.NewStageError(errors.ErrorCode(pipeline.Code(err)), string(stage), err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// ParseInput is exposed for tests.
func (h *Handler) ParseInput(variables []byte) (*Input, error) {
	return h.parseInput(variables)
}
