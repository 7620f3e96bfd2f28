package pipeline

import (
	"context"
	"errors"
	"fmt"

	"docugen-workers/internal/docugen/audit"
	"docugen-workers/internal/docugen/catalog"
	"docugen-workers/internal/docugen/export"
	"docugen-workers/internal/docugen/legal"
	"docugen-workers/internal/docugen/render"
	"docugen-workers/internal/docugen/resolver"
	"docugen-workers/internal/models"
)

var (
	ErrInvalidRequest = errors.New("INVALID_REQUEST")
	ErrCancelled      = errors.New("GENERATION_CANCELLED")
)

// StageError tags a fatal error with the stage that produced it.
type StageError struct {
	Stage models.StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// errorCodes lists the sentinels whose text is a stable error code, most
// specific first.
var errorCodes = []error{
	catalog.ErrTemplateNotFound,
	catalog.ErrTemplateNotApplicable,
	resolver.ErrMissingRequiredField,
	resolver.ErrPlaceholderValidation,
	resolver.ErrUnknownSource,
	render.ErrRender,
	export.ErrExport,
	audit.ErrAuditWriteFailed,
	legal.ErrSourceUnavailable,
	ErrInvalidRequest,
}

// Code returns the stable error code carried by err, or INTERNAL_ERROR.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCancelled.Error()
	}
	for _, sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "INTERNAL_ERROR"
}

// FailedStage returns the stage recorded on err, if any.
func FailedStage(err error) (models.StageName, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
