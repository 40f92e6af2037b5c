package artifacts

import "context"

// Repo reads the artifacts produced by the upstream capture flows. Writes
// happen elsewhere; the in-memory implementation exposes Add* helpers for
// local development and tests.
type Repo interface {
	// ListCompleteDocuments returns the user's document analyses with status complete.
	ListCompleteDocuments(ctx context.Context, userID string) ([]DocumentAnalysis, error)
	// ListQuestionnaires returns the user's questionnaire responses, oldest first.
	ListQuestionnaires(ctx context.Context, userID string) ([]QuestionnaireResponse, error)
	// LatestApprovedSummary returns the highest-version approved summary or ErrNotFound.
	LatestApprovedSummary(ctx context.Context, userID string) (Summary, error)
	// LatestCompleteSession returns the most recent complete Q&A session or ErrNotFound.
	LatestCompleteSession(ctx context.Context, userID string) (QASession, error)
	// ListResponses returns a session's responses ordered by question number.
	ListResponses(ctx context.Context, sessionID string) ([]QAResponse, error)
}
