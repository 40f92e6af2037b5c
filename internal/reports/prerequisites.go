package reports

import (
	"context"
	"errors"

	"profile-report/internal/artifacts"
	"profile-report/internal/shared/telemetry"
)

// RequiredDocumentTypes must each have a complete analysis before a report
// can be generated.
var RequiredDocumentTypes = []string{artifacts.DocumentTypeCV, artifacts.DocumentTypeTranscript}

// DocumentReadiness reports which required documents are complete.
type DocumentReadiness struct {
	Ready      bool     `json:"ready"`
	CV         bool     `json:"cv"`
	Transcript bool     `json:"transcript"`
	Missing    []string `json:"missing,omitempty"`
}

// Prerequisites is the readiness of every artifact kind.
type Prerequisites struct {
	Documents     DocumentReadiness `json:"documents"`
	Questionnaire bool              `json:"questionnaire"`
	Summary       bool              `json:"summary"`
	QASession     bool              `json:"qa_session"`
}

// AllReady reports whether generation may proceed.
func (p Prerequisites) AllReady() bool {
	return p.Documents.Ready && p.Questionnaire && p.Summary && p.QASession
}

// Unmet lists the artifact kinds that are not ready.
func (p Prerequisites) Unmet() []string {
	var out []string
	if !p.Documents.Ready {
		out = append(out, "documents")
	}
	if !p.Questionnaire {
		out = append(out, "questionnaire")
	}
	if !p.Summary {
		out = append(out, "summary")
	}
	if !p.QASession {
		out = append(out, "qa_session")
	}
	return out
}

// CheckPrerequisites derives readiness flags for a user. Any query failure
// returns a datastore error and no readiness record.
func (s *Service) CheckPrerequisites(ctx context.Context, userID string) (Prerequisites, error) {
	const op = "check prerequisites"

	docs, err := s.Artifacts.ListCompleteDocuments(ctx, userID)
	if err != nil {
		return Prerequisites{}, newError(KindDatastore, op, err)
	}
	questionnaires, err := s.Artifacts.ListQuestionnaires(ctx, userID)
	if err != nil {
		return Prerequisites{}, newError(KindDatastore, op, err)
	}
	hasSummary, err := exists(s.Artifacts.LatestApprovedSummary(ctx, userID))
	if err != nil {
		return Prerequisites{}, newError(KindDatastore, op, err)
	}
	hasSession, err := exists(s.Artifacts.LatestCompleteSession(ctx, userID))
	if err != nil {
		return Prerequisites{}, newError(KindDatastore, op, err)
	}

	p := Prerequisites{
		Documents:     documentReadiness(docs),
		Questionnaire: len(questionnaires) > 0,
		Summary:       hasSummary,
		QASession:     hasSession,
	}
	telemetry.Info("report.prerequisites", map[string]any{
		"user_id":       userID,
		"documents":     p.Documents.Ready,
		"questionnaire": p.Questionnaire,
		"summary":       p.Summary,
		"qa_session":    p.QASession,
	})
	return p, nil
}

func documentReadiness(docs []artifacts.DocumentAnalysis) DocumentReadiness {
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.Status == artifacts.StatusComplete {
			present[d.DocumentType] = true
		}
	}
	r := DocumentReadiness{
		CV:         present[artifacts.DocumentTypeCV],
		Transcript: present[artifacts.DocumentTypeTranscript],
	}
	for _, typ := range RequiredDocumentTypes {
		if !present[typ] {
			r.Missing = append(r.Missing, typ)
		}
	}
	r.Ready = len(r.Missing) == 0
	return r
}

func exists[T any](_ T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, artifacts.ErrNotFound) {
		return false, nil
	}
	return false, err
}
