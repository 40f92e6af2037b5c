package artifacts

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu             sync.RWMutex
	documents      map[string][]DocumentAnalysis      // userID -> analyses
	questionnaires map[string][]QuestionnaireResponse // userID -> responses
	summaries      map[string][]Summary               // userID -> summaries
	sessions       map[string][]QASession             // userID -> sessions
	responses      map[string][]QAResponse            // sessionID -> responses
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		documents:      make(map[string][]DocumentAnalysis),
		questionnaires: make(map[string][]QuestionnaireResponse),
		summaries:      make(map[string][]Summary),
		sessions:       make(map[string][]QASession),
		responses:      make(map[string][]QAResponse),
	}
}

// AddDocument stores a document analysis.
func (r *MemoryRepo) AddDocument(doc DocumentAnalysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.UserID] = append(r.documents[doc.UserID], doc)
}

// AddQuestionnaire stores a questionnaire response.
func (r *MemoryRepo) AddQuestionnaire(resp QuestionnaireResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questionnaires[resp.UserID] = append(r.questionnaires[resp.UserID], resp)
}

// AddSummary stores a summary.
func (r *MemoryRepo) AddSummary(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[s.UserID] = append(r.summaries[s.UserID], s)
}

// AddSession stores a Q&A session together with its responses.
func (r *MemoryRepo) AddSession(s QASession, responses ...QAResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.UserID] = append(r.sessions[s.UserID], s)
	for _, resp := range responses {
		resp.SessionID = s.ID
		r.responses[s.ID] = append(r.responses[s.ID], resp)
	}
}

// ListCompleteDocuments returns complete document analyses for a user.
func (r *MemoryRepo) ListCompleteDocuments(ctx context.Context, userID string) ([]DocumentAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []DocumentAnalysis
	for _, doc := range r.documents[userID] {
		if doc.Status == StatusComplete {
			out = append(out, doc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListQuestionnaires returns questionnaire responses for a user, oldest first.
func (r *MemoryRepo) ListQuestionnaires(ctx context.Context, userID string) ([]QuestionnaireResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]QuestionnaireResponse(nil), r.questionnaires[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// LatestApprovedSummary returns the highest-version approved summary.
func (r *MemoryRepo) LatestApprovedSummary(ctx context.Context, userID string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  Summary
		found bool
	)
	for _, s := range r.summaries[userID] {
		if s.Status != SummaryStatusApproved {
			continue
		}
		if !found || s.Version > best.Version {
			best = s
			found = true
		}
	}
	if !found {
		return Summary{}, ErrNotFound
	}
	return best, nil
}

// LatestCompleteSession returns the most recently created complete session.
func (r *MemoryRepo) LatestCompleteSession(ctx context.Context, userID string) (QASession, error) {
	if err := ctx.Err(); err != nil {
		return QASession{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  QASession
		found bool
	)
	for _, s := range r.sessions[userID] {
		if s.Status != StatusComplete {
			continue
		}
		if !found || s.CreatedAt.After(best.CreatedAt) {
			best = s
			found = true
		}
	}
	if !found {
		return QASession{}, ErrNotFound
	}
	return best, nil
}

// ListResponses returns the responses of a session ordered by question number.
func (r *MemoryRepo) ListResponses(ctx context.Context, sessionID string) ([]QAResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]QAResponse(nil), r.responses[sessionID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].QuestionNumber < out[j].QuestionNumber
	})
	return out, nil
}

var (
	_ Repo = (*PGRepo)(nil)
	_ Repo = (*MemoryRepo)(nil)
)
