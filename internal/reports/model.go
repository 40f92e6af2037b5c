package reports

import "time"

// Report lifecycle states.
const (
	StatusDraft = "draft"
	StatusFinal = "final"
)

// SectionContent is one generated section.
type SectionContent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Content is the stored {"sections":[...]} document.
type Content struct {
	Sections []SectionContent `json:"sections"`
}

// Report is a generated profile report.
type Report struct {
	ID              string
	UserID          string
	TemplateID      string
	TemplateVersion int
	Status          string
	Content         Content
	Artifacts       Provenance
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FinalizedAt     *time.Time
}

// IsFinal reports whether the report reached its terminal state.
func (r Report) IsFinal() bool {
	return r.Status == StatusFinal
}
