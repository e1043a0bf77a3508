package documents

import (
	"context"
	"database/sql"
	"errors"

	"docextract-backend/internal/extract"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, file_path, file_format, extracted_text, extraction_status, uploaded_at`

// Create inserts a document in its own statement and returns it with the assigned id.
func (r *PGRepo) Create(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (user_id, file_path, file_format, extracted_text, extraction_status, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	var format sql.NullString
	if doc.Format != nil {
		format = sql.NullString{String: string(*doc.Format), Valid: true}
	}
	var text sql.NullString
	if doc.ExtractedText != nil {
		text = sql.NullString{String: *doc.ExtractedText, Valid: true}
	}
	status := doc.Status
	if status == "" {
		status = StatusPending
	}

	err := r.DB.QueryRowContext(ctx, query,
		doc.UserID,
		doc.FilePath,
		format,
		text,
		string(status),
		doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		return Document{}, err
	}
	doc.Status = status
	return doc, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id int64) (Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE user_id = $1 AND id = $2 LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Document, error) {
	limit, offset = normalizePage(limit, offset)
	query := `SELECT ` + selectColumns + `
FROM documents
WHERE user_id = $1
ORDER BY uploaded_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var doc Document
	var format sql.NullString
	var text sql.NullString
	var status string
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FilePath,
		&format,
		&text,
		&status,
		&doc.UploadedAt,
	); err != nil {
		return Document{}, err
	}
	if format.Valid {
		f := extract.Format(format.String)
		doc.Format = &f
	}
	if text.Valid {
		s := text.String
		doc.ExtractedText = &s
	}
	doc.Status = Status(status)
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
