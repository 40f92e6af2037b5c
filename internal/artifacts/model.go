package artifacts

import (
	"encoding/json"
	"time"
)

// Status values written by the upstream capture flows.
const (
	StatusComplete        = "complete"
	SummaryStatusApproved = "approved"
)

// Document types consumed by the report flow.
const (
	DocumentTypeCV         = "cv"
	DocumentTypeTranscript = "transcript"
)

// DocumentAnalysis is a parsed document produced by the extraction pipeline.
type DocumentAnalysis struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	DocumentType string          `json:"document_type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QuestionnaireResponse holds the free-form answers a user submitted.
type QuestionnaireResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Answers   json.RawMessage `json:"answers"`
	CreatedAt time.Time       `json:"created_at"`
}

// Summary is a versioned AI summary; only approved ones feed a report.
type Summary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Version   int       `json:"version"`
	Status    string    `json:"status"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// QASession is a strategic Q&A session.
type QASession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QAResponse is one answered question within a session.
type QAResponse struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	CreatedAt      time.Time `json:"created_at"`
}
