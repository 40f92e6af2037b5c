package reports

import "context"

// Repo persists reports.
type Repo interface {
	Insert(ctx context.Context, r Report) (Report, error)
	// Latest returns the user's most recently created report or ErrReportNotFound.
	Latest(ctx context.Context, userID string) (Report, error)
	GetByID(ctx context.Context, reportID string) (Report, error)
	// Finalize moves a draft to final atomically and returns the row. A final
	// report is returned unchanged.
	Finalize(ctx context.Context, reportID string) (Report, error)
}
