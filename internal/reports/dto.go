package reports

import "time"

type reportResponse struct {
	ReportID        string           `json:"reportId"`
	TemplateID      string           `json:"templateId"`
	TemplateVersion int              `json:"templateVersion"`
	Status          string           `json:"status"`
	Sections        []SectionContent `json:"sections"`
	Artifacts       Provenance       `json:"artifacts"`
	CreatedAt       time.Time        `json:"createdAt"`
	FinalizedAt     *time.Time       `json:"finalizedAt,omitempty"`
}

type templateResponse struct {
	TemplateID string   `json:"templateId"`
	Name       string   `json:"name"`
	Version    int      `json:"version"`
	Sections   []string `json:"sections"`
}

type viewResponse struct {
	State         State             `json:"state"`
	Report        *reportResponse   `json:"report,omitempty"`
	Prerequisites *Prerequisites    `json:"prerequisites,omitempty"`
	Template      *templateResponse `json:"template,omitempty"`
	Blocked       string            `json:"blocked,omitempty"`
	CanGenerate   bool              `json:"canGenerate"`
	Regenerating  bool              `json:"regenerating,omitempty"`
	Actions       []string          `json:"actions"`
}

type finalizeRequest struct {
	ReportID string `json:"reportId"`
}

func toReportResponse(r Report) reportResponse {
	sections := r.Content.Sections
	if sections == nil {
		sections = []SectionContent{}
	}
	return reportResponse{
		ReportID:        r.ID,
		TemplateID:      r.TemplateID,
		TemplateVersion: r.TemplateVersion,
		Status:          r.Status,
		Sections:        sections,
		Artifacts:       r.Artifacts,
		CreatedAt:       r.CreatedAt,
		FinalizedAt:     r.FinalizedAt,
	}
}

func toViewResponse(v View) viewResponse {
	out := viewResponse{
		State:         v.State,
		Prerequisites: v.Prerequisites,
		Blocked:       v.Blocked,
		CanGenerate:   v.CanGenerate,
		Regenerating:  v.Regenerating,
		Actions:       v.Actions(),
	}
	if v.Report != nil {
		rep := toReportResponse(*v.Report)
		out.Report = &rep
	}
	if v.Template != nil {
		names := make([]string, 0, len(v.Template.Sections))
		for _, s := range v.Template.Sections {
			names = append(names, s.Name)
		}
		out.Template = &templateResponse{
			TemplateID: v.Template.ID,
			Name:       v.Template.Name,
			Version:    v.Template.Version,
			Sections:   names,
		}
	}
	return out
}
