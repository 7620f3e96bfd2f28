package generatedocument

import (
	"docugen-workers/internal/docugen/quality"
	"docugen-workers/internal/models"
)

// Input is the generation request carried in the job variables.
type Input = models.GenerationRequest

type Output struct {
	Document        *models.GeneratedDocument `json:"document"`
	Execution       *models.PipelineExecution `json:"execution"`
	QualitySummary  quality.Summary           `json:"qualitySummary"`
	Cached          bool                      `json:"cached"`
	ReviewRequested bool                      `json:"reviewRequested"`
}
