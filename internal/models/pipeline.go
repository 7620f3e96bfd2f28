// internal/models/pipeline.go
package models

import "time"

type StageName string

const (
	StageTemplateSelection     StageName = "template_selection"
	StageLegalMapping          StageName = "legal_mapping"
	StagePlaceholderResolution StageName = "placeholder_resolution"
	StageContentGeneration     StageName = "content_generation"
	StageQualityAssurance      StageName = "quality_assurance"
	StageCompilationExport     StageName = "compilation_export"
	StageTraceability          StageName = "traceability"
)

// Stages lists the pipeline stages in execution order.
var Stages = []StageName{
	StageTemplateSelection,
	StageLegalMapping,
	StagePlaceholderResolution,
	StageContentGeneration,
	StageQualityAssurance,
	StageCompilationExport,
	StageTraceability,
}

type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
)

type PipelineStageResult struct {
	Stage     StageName       `json:"stage"`
	Status    ExecutionStatus `json:"status"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	Duration  time.Duration   `json:"duration"`
	Output    string          `json:"output,omitempty"`
	Error     string          `json:"error,omitempty"`
	Logs      []string        `json:"logs,omitempty"`
}

type PipelineExecution struct {
	ID        string                `json:"id"`
	RequestID string                `json:"requestId"`
	Stages    []PipelineStageResult `json:"stages"`
	Status    ExecutionStatus       `json:"status"`
	StartTime time.Time             `json:"startTime"`
	EndTime   time.Time             `json:"endTime"`
	Duration  time.Duration         `json:"duration"`
	Error     string                `json:"error,omitempty"`
}

// Stage returns the recorded result for name, if the stage ran.
func (e *PipelineExecution) Stage(name StageName) (PipelineStageResult, bool) {
	for _, s := range e.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return PipelineStageResult{}, false
}
