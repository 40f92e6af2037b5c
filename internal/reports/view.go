package reports

import (
	"context"
	"errors"

	"profile-report/internal/templates"
)

// State is the page state derived from the user's latest report.
type State string

const (
	StateNoReport State = "no_report"
	StateDraft    State = "draft"
	StateFinal    State = "final"
)

// Reasons the no-report path cannot offer generation.
const (
	BlockedPrerequisites    = "prerequisites"
	BlockedNoActiveTemplate = "no_active_template"
)

// View is everything needed to render the report page.
type View struct {
	State         State
	Report        *Report
	Prerequisites *Prerequisites
	Template      *templates.Template
	Blocked       string
	CanGenerate   bool
	Regenerating  bool
}

// View resolves the page state by re-reading the latest report. While a
// regeneration is pending a draft is ignored and the generate path is shown.
func (s *Service) View(ctx context.Context, userID string) (View, error) {
	sess := s.Sessions.Get(userID)

	latest, err := s.Reports.Latest(ctx, userID)
	switch {
	case err == nil:
		switch {
		case latest.IsFinal():
			return View{State: StateFinal, Report: &latest}, nil
		case !sess.Regenerating:
			return View{State: StateDraft, Report: &latest}, nil
		}
	case errors.Is(err, ErrReportNotFound):
	default:
		return View{}, s.wrapStoreErr("load latest report", err)
	}

	v := View{State: StateNoReport, Regenerating: sess.Regenerating}
	prereqs, err := s.CheckPrerequisites(ctx, userID)
	if err != nil {
		return View{}, err
	}
	v.Prerequisites = &prereqs
	if !prereqs.AllReady() {
		v.Blocked = BlockedPrerequisites
		return v, nil
	}

	tpl, err := s.activeTemplate(ctx)
	if err != nil {
		if errors.Is(err, templates.ErrNoActiveTemplate) {
			v.Blocked = BlockedNoActiveTemplate
			return v, nil
		}
		return View{}, err
	}
	v.Template = &tpl
	v.CanGenerate = true
	return v, nil
}

// Actions lists what the user may do from this view.
func (v View) Actions() []string {
	switch v.State {
	case StateDraft:
		return []string{"finalize", "regenerate"}
	case StateNoReport:
		if v.CanGenerate {
			return []string{"generate"}
		}
	}
	return []string{}
}
