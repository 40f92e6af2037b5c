package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"profile-report/internal/shared/telemetry"
	"profile-report/internal/templates"
)

// SaveReport validates the artifacts, snapshots their provenance and inserts
// a draft report. Nothing is inserted when a precondition fails.
func (s *Service) SaveReport(ctx context.Context, userID string, tpl templates.Template, sections []SectionContent, a Artifacts) (Report, error) {
	const op = "save report"

	if err := checkSavePreconditions(tpl, sections, a); err != nil {
		telemetry.Warn("report.save.rejected", map[string]any{"user_id": userID, "error": err})
		return Report{}, newError(KindPrecondition, op, err)
	}

	now := s.now().UTC()
	rep := Report{
		ID:              uuid.NewString(),
		UserID:          userID,
		TemplateID:      tpl.ID,
		TemplateVersion: tpl.Version,
		Status:          StatusDraft,
		Content:         Content{Sections: append([]SectionContent(nil), sections...)},
		Artifacts:       BuildProvenance(a),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	saved, err := s.Reports.Insert(ctx, rep)
	if err != nil {
		return Report{}, newError(KindDatastore, op, err)
	}

	telemetry.Info("report.saved", map[string]any{
		"report_id":        saved.ID,
		"user_id":          userID,
		"template_id":      tpl.ID,
		"template_version": tpl.Version,
		"sections":         len(saved.Content.Sections),
		"document_types":   len(saved.Artifacts.DocumentAnalyses),
	})
	return saved, nil
}

func checkSavePreconditions(tpl templates.Template, sections []SectionContent, a Artifacts) error {
	switch {
	case len(a.ParsedDocuments) == 0:
		return ErrMissingDocuments
	case a.Questionnaire == nil:
		return ErrMissingQuestionnaire
	case a.Summary == nil:
		return ErrMissingSummary
	case a.QA.Session == nil:
		return ErrMissingQASession
	case len(sections) != len(tpl.Sections):
		return fmt.Errorf("%w: %d of %d sections", ErrIncompleteGeneration, len(sections), len(tpl.Sections))
	}
	return nil
}
