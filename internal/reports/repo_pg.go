package reports

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

const reportColumns = `id, user_id, template_id, template_version, status, content, artifacts, created_at, updated_at, finalized_at`

// Insert stores a new report and returns the stored row.
func (r *PGRepo) Insert(ctx context.Context, rep Report) (Report, error) {
	content, err := json.Marshal(rep.Content)
	if err != nil {
		return Report{}, err
	}
	prov, err := json.Marshal(rep.Artifacts)
	if err != nil {
		return Report{}, err
	}

	query := `
INSERT INTO reports (id, user_id, template_id, template_version, status, content, artifacts, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + reportColumns

	return scanReport(r.DB.QueryRowContext(
		ctx,
		query,
		rep.ID,
		rep.UserID,
		rep.TemplateID,
		rep.TemplateVersion,
		rep.Status,
		content,
		prov,
		rep.CreatedAt,
		rep.UpdatedAt,
	))
}

// Latest returns the user's most recently created report.
func (r *PGRepo) Latest(ctx context.Context, userID string) (Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`
	return scanReport(r.DB.QueryRowContext(ctx, query, userID))
}

// GetByID returns a report by id.
func (r *PGRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE id = $1`
	return scanReport(r.DB.QueryRowContext(ctx, query, reportID))
}

// Finalize calls the finalize_report database function.
func (r *PGRepo) Finalize(ctx context.Context, reportID string) (Report, error) {
	query := `SELECT ` + reportColumns + ` FROM finalize_report($1)`
	return scanReport(r.DB.QueryRowContext(ctx, query, reportID))
}

func scanReport(row *sql.Row) (Report, error) {
	var (
		rep         Report
		content     []byte
		prov        []byte
		finalizedAt sql.NullTime
	)
	err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.TemplateID,
		&rep.TemplateVersion,
		&rep.Status,
		&content,
		&prov,
		&rep.CreatedAt,
		&rep.UpdatedAt,
		&finalizedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, err
	}
	if err := json.Unmarshal(content, &rep.Content); err != nil {
		return Report{}, fmt.Errorf("%w: report %s content: %v", ErrMalformedReport, rep.ID, err)
	}
	if len(prov) > 0 {
		if err := json.Unmarshal(prov, &rep.Artifacts); err != nil {
			return Report{}, fmt.Errorf("%w: report %s artifacts: %v", ErrMalformedReport, rep.ID, err)
		}
	}
	if finalizedAt.Valid {
		t := finalizedAt.Time
		rep.FinalizedAt = &t
	}
	return rep, nil
}
