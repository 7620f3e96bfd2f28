package listtemplates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"docugen-workers/internal/common/errors"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/metrics"
	"docugen-workers/internal/models"
)

const (
	TaskType = "docugen-list-templates"
)

// TemplateSource is satisfied by *pipeline.Pipeline.
type TemplateSource interface {
	TemplatesByProfile(size int, sector string) []models.Template
	TemplateByID(id string) (*models.Template, bool)
}

type Handler struct {
	config     *Config
	templates  TemplateSource
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, templates TemplateSource, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		templates:  templates,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

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
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.TemplateID != "" {
		tpl, ok := h.templates.TemplateByID(input.TemplateID)
		if !ok {
			return nil, errors.NewTemplateNotFoundError(input.TemplateID)
		}
		return &Output{Templates: []TemplateSummary{summarize(*tpl)}, Count: 1}, nil
	}

	if input.Size < 1 {
		return nil, errors.NewInvalidRequestError("either templateId or a positive size is required")
	}

	templates := h.templates.TemplatesByProfile(input.Size, input.Sector)
	output := &Output{Templates: make([]TemplateSummary, 0, len(templates))}
	for _, t := range templates {
		output.Templates = append(output.Templates, summarize(t))
	}
	output.Count = len(output.Templates)
	return output, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
