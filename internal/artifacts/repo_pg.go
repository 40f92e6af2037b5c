package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ListCompleteDocuments returns complete document analyses for a user.
func (r *PGRepo) ListCompleteDocuments(ctx context.Context, userID string) ([]DocumentAnalysis, error) {
	const query = `
SELECT id, user_id, document_type, status, result, created_at
FROM document_analysis
WHERE user_id = $1 AND status = $2
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID, StatusComplete)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentAnalysis
	for rows.Next() {
		var (
			doc     DocumentAnalysis
			docType sql.NullString
			status  sql.NullString
			result  []byte
		)
		if err := rows.Scan(&doc.ID, &doc.UserID, &docType, &status, &result, &doc.CreatedAt); err != nil {
			return nil, err
		}
		doc.DocumentType = docType.String
		doc.Status = status.String
		raw, err := rawJSON(result)
		if err != nil {
			return nil, fmt.Errorf("document_analysis %s result: %w", doc.ID, err)
		}
		doc.Result = raw
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListQuestionnaires returns questionnaire responses for a user, oldest first.
func (r *PGRepo) ListQuestionnaires(ctx context.Context, userID string) ([]QuestionnaireResponse, error) {
	const query = `
SELECT id, user_id, answers, created_at
FROM questionnaire_responses
WHERE user_id = $1
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuestionnaireResponse
	for rows.Next() {
		var (
			resp    QuestionnaireResponse
			answers []byte
		)
		if err := rows.Scan(&resp.ID, &resp.UserID, &answers, &resp.CreatedAt); err != nil {
			return nil, err
		}
		raw, err := rawJSON(answers)
		if err != nil {
			return nil, fmt.Errorf("questionnaire_responses %s answers: %w", resp.ID, err)
		}
		resp.Answers = raw
		out = append(out, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestApprovedSummary returns the highest-version approved summary.
func (r *PGRepo) LatestApprovedSummary(ctx context.Context, userID string) (Summary, error) {
	const query = `
SELECT id, user_id, version, status, content, created_at
FROM ai_summaries
WHERE user_id = $1 AND status = $2
ORDER BY version DESC
LIMIT 1`

	var s Summary
	err := r.DB.QueryRowContext(ctx, query, userID, SummaryStatusApproved).Scan(
		&s.ID,
		&s.UserID,
		&s.Version,
		&s.Status,
		&s.Content,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrNotFound
		}
		return Summary{}, err
	}
	return s, nil
}

// LatestCompleteSession returns the most recently created complete session.
func (r *PGRepo) LatestCompleteSession(ctx context.Context, userID string) (QASession, error) {
	const query = `
SELECT id, user_id, status, created_at, updated_at
FROM strategic_qa_sessions
WHERE user_id = $1 AND status = $2
ORDER BY created_at DESC
LIMIT 1`

	var s QASession
	err := r.DB.QueryRowContext(ctx, query, userID, StatusComplete).Scan(
		&s.ID,
		&s.UserID,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QASession{}, ErrNotFound
		}
		return QASession{}, err
	}
	return s, nil
}

// ListResponses returns the responses of a session ordered by question number.
func (r *PGRepo) ListResponses(ctx context.Context, sessionID string) ([]QAResponse, error) {
	const query = `
SELECT id, session_id, question_number, question, answer, created_at
FROM strategic_qa_responses
WHERE session_id = $1
ORDER BY question_number ASC`

	rows, err := r.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QAResponse
	for rows.Next() {
		var resp QAResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.SessionID,
			&resp.QuestionNumber,
			&resp.Question,
			&resp.Answer,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func rawJSON(b []byte) (json.RawMessage, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if !json.Valid(b) {
		return nil, errors.New("invalid json payload")
	}
	return json.RawMessage(append([]byte(nil), b...)), nil
}
