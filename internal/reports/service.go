package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"profile-report/internal/artifacts"
	"profile-report/internal/shared/metrics"
	"profile-report/internal/shared/telemetry"
	"profile-report/internal/templates"
)

// TemplateSource returns the template reports are generated from.
type TemplateSource interface {
	Active(ctx context.Context) (templates.Template, error)
}

// Service runs the report flow: prerequisites, artifacts, generation,
// persistence and finalization.
type Service struct {
	Artifacts artifacts.Repo
	Templates TemplateSource
	Reports   Repo
	Generator *Generator
	Sessions  *SessionStore
	Now       func() time.Time
}

// Progress is reported after every section attempt.
type Progress struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Section string `json:"section"`
	OK      bool   `json:"ok"`
}

// ProgressFunc receives generation progress. It may be nil.
type ProgressFunc func(Progress)

// GenerateSections runs every template section in order, one completion at a
// time. A failed section is reported and skipped; if any section failed the
// result is an ErrIncompleteGeneration error and must not be persisted.
func (s *Service) GenerateSections(ctx context.Context, tpl templates.Template, a Artifacts, progress ProgressFunc) ([]SectionContent, error) {
	total := len(tpl.Sections)
	out := make([]SectionContent, 0, total)
	var failed []string

	for i, section := range tpl.Sections {
		if err := ctx.Err(); err != nil {
			return nil, newError(KindCompletion, "generate sections", err)
		}
		content, err := s.Generator.GenerateSection(ctx, section, a)
		ok := err == nil
		if ok {
			out = append(out, SectionContent{Name: section.Name, Content: content})
			metrics.IncSectionGenerated()
		} else {
			failed = append(failed, section.Name)
			metrics.IncSectionFailed()
		}
		if progress != nil {
			progress(Progress{Index: i + 1, Total: total, Section: section.Name, OK: ok})
		}
	}

	if len(out) < total {
		return nil, newError(KindCompletion, "generate sections",
			fmt.Errorf("%w: %d of %d sections generated (failed: %s)", ErrIncompleteGeneration, len(out), total, strings.Join(failed, ", ")))
	}
	return out, nil
}

// Generate runs the whole flow for a user and returns the new draft report.
// It is only allowed from the no-report state.
func (s *Service) Generate(ctx context.Context, userID string, progress ProgressFunc) (Report, error) {
	start := s.now()

	if !s.Sessions.TryBeginGenerate(userID) {
		return Report{}, ErrGenerationInProgress
	}
	defer s.Sessions.EndGenerate(userID)

	if err := s.ensureCanGenerate(ctx, userID); err != nil {
		return Report{}, err
	}

	prereqs, err := s.CheckPrerequisites(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	if !prereqs.AllReady() {
		return Report{}, fmt.Errorf("%w: %s", ErrPrerequisitesUnmet, strings.Join(prereqs.Unmet(), ", "))
	}

	tpl, err := s.activeTemplate(ctx)
	if err != nil {
		return Report{}, err
	}

	a, err := s.LoadArtifacts(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	sections, err := s.GenerateSections(ctx, tpl, a, progress)
	if err != nil {
		metrics.IncReportFailed(failureReason(err))
		return Report{}, err
	}

	rep, err := s.SaveReport(ctx, userID, tpl, sections, a)
	if err != nil {
		metrics.IncReportFailed(failureReason(err))
		return Report{}, err
	}

	s.Sessions.SetCurrent(userID, rep)
	metrics.IncReportGenerated()
	metrics.ObserveGenerationDurationMs(float64(s.now().Sub(start).Milliseconds()))
	return rep, nil
}

// Finalize moves the user's draft report to final. Finalizing a final report
// returns it unchanged.
func (s *Service) Finalize(ctx context.Context, userID, reportID string) (Report, error) {
	const op = "finalize report"

	if _, err := uuid.Parse(reportID); err != nil {
		return Report{}, ErrReportNotFound
	}

	existing, err := s.Reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, s.wrapStoreErr(op, err)
	}
	if existing.UserID != userID {
		return Report{}, ErrReportNotFound
	}
	if existing.IsFinal() {
		telemetry.Info("report.finalize.noop", map[string]any{"report_id": reportID, "user_id": userID})
		return existing, nil
	}

	rep, err := s.Reports.Finalize(ctx, reportID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, s.wrapStoreErr(op, err)
	}

	s.Sessions.SetCurrent(userID, rep)
	metrics.IncReportFinalized()
	telemetry.Info("report.finalized", map[string]any{"report_id": rep.ID, "user_id": userID})
	return rep, nil
}

// Regenerate discards the cached report so the next view offers generation
// again. A final report cannot be regenerated.
func (s *Service) Regenerate(ctx context.Context, userID string) error {
	latest, err := s.Reports.Latest(ctx, userID)
	switch {
	case err == nil:
		if latest.IsFinal() {
			return ErrReportFinal
		}
	case errors.Is(err, ErrReportNotFound):
	default:
		return s.wrapStoreErr("regenerate report", err)
	}
	s.Sessions.BeginRegenerate(userID)
	telemetry.Info("report.regenerate", map[string]any{"user_id": userID})
	return nil
}

func (s *Service) ensureCanGenerate(ctx context.Context, userID string) error {
	latest, err := s.Reports.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil
		}
		return s.wrapStoreErr("generate report", err)
	}
	switch {
	case latest.IsFinal():
		return ErrReportFinal
	case !s.Sessions.Get(userID).Regenerating:
		return ErrDraftPending
	}
	return nil
}

func (s *Service) activeTemplate(ctx context.Context) (templates.Template, error) {
	tpl, err := s.Templates.Active(ctx)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrNoActiveTemplate):
			return templates.Template{}, err
		case errors.Is(err, templates.ErrMalformedTemplate):
			return templates.Template{}, newError(KindMalformed, "fetch template", err)
		default:
			return templates.Template{}, newError(KindDatastore, "fetch template", err)
		}
	}
	return tpl, nil
}

// failureReason is the metrics label for a generation that saved nothing.
func failureReason(err error) string {
	if errors.Is(err, ErrIncompleteGeneration) {
		return "incomplete"
	}
	return string(KindOf(err))
}

func (s *Service) wrapStoreErr(op string, err error) error {
	if errors.Is(err, ErrMalformedReport) {
		return newError(KindMalformed, op, err)
	}
	return newError(KindDatastore, op, err)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
