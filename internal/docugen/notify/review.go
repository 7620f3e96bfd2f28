package notify

import (
	"context"
	"fmt"
	"strings"

	"docugen-workers/internal/common/aws"
	"docugen-workers/internal/models"
)

// ReviewAlerter emails a reviewer when a generated document failed
// error-severity quality checks.
type ReviewAlerter struct {
	ses  *aws.SESClient
	from string
	to   []string
}

func NewReviewAlerter(client *aws.SESClient, from string, to ...string) *ReviewAlerter {
	return &ReviewAlerter{ses: client, from: from, to: to}
}

// Alert sends the review email. It returns false without sending when the
// document has no failed error-severity checks.
func (a *ReviewAlerter) Alert(ctx context.Context, doc *models.GeneratedDocument) (bool, error) {
	failed := FailedErrorChecks(doc.QualityResults)
	if len(failed) == 0 {
		return false, nil
	}
	if _, err := a.ses.SendText(ctx, a.from, a.to, reviewSubject(doc), reviewBody(doc, failed)); err != nil {
		return false, fmt.Errorf("%w: ses: %v", ErrNotificationFailed, err)
	}
	return true, nil
}

func reviewSubject(doc *models.GeneratedDocument) string {
	return fmt.Sprintf("[DocuGen] Révision requise : %s (%s)", doc.Metadata.Title, doc.Metadata.Company)
}

func reviewBody(doc *models.GeneratedDocument, failed []models.QualityResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document %s généré à partir du gabarit %s v%s.\n",
		doc.ID, doc.TemplateID, doc.Traceability.TemplateVersion)
	fmt.Fprintf(&b, "Empreinte %s : %s\n\n", doc.Traceability.HashAlgorithm, doc.Traceability.DocumentHash)
	b.WriteString("Contrôles de qualité en échec :\n")
	for _, r := range failed {
		fmt.Fprintf(&b, "- %s (%s) : %s\n", r.CheckName, r.CheckID, r.Message)
	}
	b.WriteString("\nLe document reste à l'état brouillon jusqu'à son approbation.\n")
	return b.String()
}
