package reports

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can map them to user messages.
type ErrorKind string

const (
	KindDatastore    ErrorKind = "datastore"
	KindCompletion   ErrorKind = "completion"
	KindPrecondition ErrorKind = "precondition"
	KindMalformed    ErrorKind = "malformed"
)

// Error carries the failing operation and its kind.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

var (
	// ErrReportNotFound means the user has no such report.
	ErrReportNotFound = errors.New("report not found")
	// ErrPrerequisitesUnmet means at least one artifact is not ready.
	ErrPrerequisitesUnmet = errors.New("prerequisites not met")
	// ErrIncompleteGeneration means fewer sections were generated than the template defines.
	ErrIncompleteGeneration = errors.New("report generation incomplete")
	// ErrReportFinal means the latest report is final and accepts no further actions.
	ErrReportFinal = errors.New("report is final")
	// ErrGenerationInProgress means another generation for the same user has not finished.
	ErrGenerationInProgress = errors.New("report generation in progress")
	// ErrDraftPending means a draft exists and must be finalized or regenerated first.
	ErrDraftPending = errors.New("draft report pending")
	// ErrMalformedReport means a stored report could not be decoded.
	ErrMalformedReport = errors.New("malformed report")

	ErrMissingDocuments     = errors.New("no parsed documents found")
	ErrMissingQuestionnaire = errors.New("no questionnaire data found")
	ErrMissingSummary       = errors.New("no summary data found")
	ErrMissingQASession     = errors.New("no Q&A session found")
)
