package resolver

import (
	"context"

	"docugen-workers/internal/models"
)

// CallerProvider reads values the caller put in the request: well-known
// profile fields first, then AdditionalData. A zero headcount counts as
// absent.
type CallerProvider struct{}

func (CallerProvider) ProvideValue(_ context.Context, ph models.Placeholder, rc *Context) (any, error) {
	req := rc.Request
	switch ph.ID {
	case "company_name":
		return req.CompanyProfile.Name, nil
	case "company_size":
		if req.CompanyProfile.Size > 0 {
			return req.CompanyProfile.Size, nil
		}
	case "company_address":
		if req.CompanyProfile.Address != "" {
			return req.CompanyProfile.Address, nil
		}
	}
	if v, ok := req.AdditionalData[ph.ID]; ok {
		return v, nil
	}
	return nil, nil
}

type DiagnosticProvider struct{}

func (DiagnosticProvider) ProvideValue(_ context.Context, _ models.Placeholder, rc *Context) (any, error) {
	if rc.Request.DiagnosticData == nil {
		return []any{}, nil
	}
	return rc.Request.DiagnosticData, nil
}

type KnowledgeProvider struct{}

func (KnowledgeProvider) ProvideValue(_ context.Context, _ models.Placeholder, rc *Context) (any, error) {
	if rc.Request.CuratedKnowledge == nil {
		return []any{}, nil
	}
	return rc.Request.CuratedKnowledge, nil
}

// LegalProvider supplies the articles related to the template subject.
type LegalProvider struct{}

func (LegalProvider) ProvideValue(_ context.Context, _ models.Placeholder, rc *Context) (any, error) {
	if rc.Legal == nil {
		return nil, nil
	}
	return rc.Legal.RelatedArticles, nil
}
