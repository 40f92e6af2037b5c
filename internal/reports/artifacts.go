package reports

import (
	"context"
	"errors"

	"profile-report/internal/artifacts"
)

// QABundle is the Q&A session used for generation and its ordered responses.
type QABundle struct {
	Session   *artifacts.QASession   `json:"session"`
	Responses []artifacts.QAResponse `json:"responses"`
}

// Artifacts is everything a report is generated from.
type Artifacts struct {
	ParsedDocuments []artifacts.DocumentAnalysis
	Questionnaire   *artifacts.QuestionnaireResponse
	Summary         *artifacts.Summary
	QA              QABundle
}

// LoadArtifacts fetches the full payload for generation. A missing Q&A session
// leaves QA empty; any query failure aborts the load.
func (s *Service) LoadArtifacts(ctx context.Context, userID string) (Artifacts, error) {
	const op = "load artifacts"
	var a Artifacts

	docs, err := s.Artifacts.ListCompleteDocuments(ctx, userID)
	if err != nil {
		return Artifacts{}, newError(KindDatastore, op, err)
	}
	a.ParsedDocuments = docs

	questionnaires, err := s.Artifacts.ListQuestionnaires(ctx, userID)
	if err != nil {
		return Artifacts{}, newError(KindDatastore, op, err)
	}
	if len(questionnaires) > 0 {
		q := questionnaires[0]
		a.Questionnaire = &q
	}

	summary, err := s.Artifacts.LatestApprovedSummary(ctx, userID)
	switch {
	case err == nil:
		a.Summary = &summary
	case errors.Is(err, artifacts.ErrNotFound):
	default:
		return Artifacts{}, newError(KindDatastore, op, err)
	}

	session, err := s.Artifacts.LatestCompleteSession(ctx, userID)
	switch {
	case err == nil:
		responses, err := s.Artifacts.ListResponses(ctx, session.ID)
		if err != nil {
			return Artifacts{}, newError(KindDatastore, op, err)
		}
		a.QA = QABundle{Session: &session, Responses: responses}
	case errors.Is(err, artifacts.ErrNotFound):
	default:
		return Artifacts{}, newError(KindDatastore, op, err)
	}

	return a, nil
}
