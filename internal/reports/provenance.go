package reports

import (
	"time"

	"profile-report/internal/artifacts"
	"profile-report/internal/shared/telemetry"
)

// DocumentRef pins one document analysis used for a report.
type DocumentRef struct {
	ID      string     `json:"id"`
	Version *time.Time `json:"version"`
	Status  string     `json:"status"`
}

// QuestionnaireRef pins the questionnaire response used for a report.
type QuestionnaireRef struct {
	ID      string     `json:"id"`
	Version *time.Time `json:"version"`
}

// SummaryRef pins the approved summary used for a report.
type SummaryRef struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// QASessionRef pins the Q&A session used for a report.
type QASessionRef struct {
	ID          string     `json:"id"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Provenance is the point-in-time snapshot of source artifact ids and
// versions stored with a report.
type Provenance struct {
	DocumentAnalyses map[string]DocumentRef `json:"document_analyses"`
	Questionnaire    QuestionnaireRef       `json:"questionnaire"`
	Summary          SummaryRef             `json:"summary"`
	QASession        QASessionRef           `json:"qa_session"`
}

// BuildProvenance snapshots a. Callers must have checked that every artifact
// is present. Documents without an id or type are skipped; for repeated types
// the later document wins.
func BuildProvenance(a Artifacts) Provenance {
	docs := make(map[string]DocumentRef, len(a.ParsedDocuments))
	for _, doc := range a.ParsedDocuments {
		if doc.ID == "" || doc.DocumentType == "" {
			telemetry.Warn("report.document.skipped", map[string]any{
				"document_id":   doc.ID,
				"document_type": doc.DocumentType,
				"reason":        "missing id or document_type",
			})
			continue
		}
		status := doc.Status
		if status == "" {
			status = artifacts.StatusComplete
		}
		docs[doc.DocumentType] = DocumentRef{
			ID:      doc.ID,
			Version: timeRef(doc.CreatedAt),
			Status:  status,
		}
	}

	p := Provenance{DocumentAnalyses: docs}
	if a.Questionnaire != nil {
		p.Questionnaire = QuestionnaireRef{ID: a.Questionnaire.ID, Version: timeRef(a.Questionnaire.CreatedAt)}
	}
	if a.Summary != nil {
		p.Summary = SummaryRef{ID: a.Summary.ID, Version: a.Summary.Version}
	}
	if a.QA.Session != nil {
		p.QASession = QASessionRef{ID: a.QA.Session.ID, CompletedAt: timeRef(a.QA.Session.UpdatedAt)}
	}
	return p
}

func timeRef(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
