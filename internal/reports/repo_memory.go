package reports

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.Mutex
	reports []Report
	now     func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now}
}

// Insert stores a report.
func (r *MemoryRepo) Insert(ctx context.Context, rep Report) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneReport(rep)
	r.reports = append(r.reports, stored)
	return cloneReport(stored), nil
}

// Latest returns the user's most recently created report. Ties go to the
// later insert.
func (r *MemoryRepo) Latest(ctx context.Context, userID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, rep := range r.reports {
		if rep.UserID != userID {
			continue
		}
		if idx == -1 || !rep.CreatedAt.Before(r.reports[idx].CreatedAt) {
			idx = i
		}
	}
	if idx == -1 {
		return Report{}, ErrReportNotFound
	}
	return cloneReport(r.reports[idx]), nil
}

// GetByID returns a report by id.
func (r *MemoryRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.ID == reportID {
			return cloneReport(rep), nil
		}
	}
	return Report{}, ErrReportNotFound
}

// Finalize moves a draft to final; a final report is returned unchanged.
func (r *MemoryRepo) Finalize(ctx context.Context, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reports {
		if r.reports[i].ID != reportID {
			continue
		}
		if r.reports[i].Status == StatusDraft {
			now := r.now().UTC()
			r.reports[i].Status = StatusFinal
			r.reports[i].FinalizedAt = &now
			r.reports[i].UpdatedAt = now
		}
		return cloneReport(r.reports[i]), nil
	}
	return Report{}, ErrReportNotFound
}

func cloneReport(rep Report) Report {
	rep.Content.Sections = append([]SectionContent(nil), rep.Content.Sections...)
	if rep.Artifacts.DocumentAnalyses != nil {
		docs := make(map[string]DocumentRef, len(rep.Artifacts.DocumentAnalyses))
		for k, v := range rep.Artifacts.DocumentAnalyses {
			docs[k] = v
		}
		rep.Artifacts.DocumentAnalyses = docs
	}
	if rep.FinalizedAt != nil {
		t := *rep.FinalizedAt
		rep.FinalizedAt = &t
	}
	return rep
}

var (
	_ Repo = (*PGRepo)(nil)
	_ Repo = (*MemoryRepo)(nil)
)
