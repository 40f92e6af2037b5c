package templates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Active returns the active template with the highest version.
func (r *PGRepo) Active(ctx context.Context) (Template, error) {
	const query = `
SELECT id, name, version, is_active, sections, created_at
FROM report_templates
WHERE is_active = true
ORDER BY version DESC
LIMIT 1`

	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNoActiveTemplate
		}
		return Template{}, err
	}
	return t, nil
}

// Create inserts a template, deactivating the others when it is active.
func (r *PGRepo) Create(ctx context.Context, t Template) error {
	sections, err := EncodeSections(t.Sections)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if t.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE report_templates SET is_active = false WHERE is_active = true`); err != nil {
			return fmt.Errorf("deactivate templates: %w", err)
		}
	}

	const insert = `
INSERT INTO report_templates (id, name, version, is_active, sections, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insert, t.ID, t.Name, t.Version, t.IsActive, sections, t.CreatedAt); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return tx.Commit()
}

// List returns all templates, newest version first.
func (r *PGRepo) List(ctx context.Context) ([]Template, error) {
	const query = `
SELECT id, name, version, is_active, sections, created_at
FROM report_templates
ORDER BY version DESC, created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxVersion returns the highest stored version for a template name.
func (r *PGRepo) MaxVersion(ctx context.Context, name string) (int, error) {
	const query = `SELECT COALESCE(MAX(version), 0) FROM report_templates WHERE name = $1`
	var v int
	if err := r.DB.QueryRowContext(ctx, query, name).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (Template, error) {
	var (
		t        Template
		sections []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Version, &t.IsActive, &sections, &t.CreatedAt); err != nil {
		return Template{}, err
	}
	parsed, err := DecodeSections(sections)
	if err != nil {
		return Template{}, fmt.Errorf("template %s v%d: %w", t.ID, t.Version, err)
	}
	t.Sections = parsed
	return t, nil
}
