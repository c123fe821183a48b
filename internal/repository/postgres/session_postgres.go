package postgres

import (
	"context"
	"database/sql"

	"sessionvault/internal/model"
	"sessionvault/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

const sessionColumns = `id, filename, storage_key, storage_link, file_size, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(s rowScanner) (*model.SessionFile, error) {
	var (
		f    model.SessionFile
		link sql.NullString
	)
	if err := s.Scan(
		&f.ID,
		&f.Filename,
		&f.StorageKey,
		&link,
		&f.FileSize,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.StorageLink = link.String
	return &f, nil
}

// Create inserts a new session file row and returns the stored record.
func (r *SessionPostgres) Create(ctx context.Context, f *model.SessionFile) (*model.SessionFile, error) {
	const q = `
		INSERT INTO session_files (id, filename, storage_key, storage_link, file_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + sessionColumns

	var link sql.NullString
	if f.StorageLink != "" {
		link = sql.NullString{String: f.StorageLink, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Filename,
		f.StorageKey,
		link,
		f.FileSize,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return scanSession(row)
}

// List returns all session files, oldest first.
func (r *SessionPostgres) List(ctx context.Context) ([]model.SessionFile, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM session_files
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SessionFile, 0)
	for rows.Next() {
		f, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByStorageKey fetches a single session file by its blob key.
func (r *SessionPostgres) FindByStorageKey(ctx context.Context, key string) (*model.SessionFile, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM session_files
		WHERE storage_key = $1
	`
	return scanSession(r.db.QueryRowContext(ctx, q, key))
}

// Latest fetches the session file with the greatest created_at.
func (r *SessionPostgres) Latest(ctx context.Context) (*model.SessionFile, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM session_files
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return scanSession(r.db.QueryRowContext(ctx, q))
}

// DeleteByStorageKey removes the row for key, reporting sql.ErrNoRows if absent.
func (r *SessionPostgres) DeleteByStorageKey(ctx context.Context, key string) error {
	const q = `DELETE FROM session_files WHERE storage_key = $1`
	res, err := r.db.ExecContext(ctx, q, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
