// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
package repository

import (
	"context"

	"sessionvault/internal/model"
)

// SessionRepository defines data access for session file metadata.
// Strictly persistence operations; the service layer owns the blob side.
type SessionRepository interface {
	// Create inserts a new session file record and returns the stored row.
	Create(ctx context.Context, f *model.SessionFile) (*model.SessionFile, error)

	// List returns every record in insertion order.
	List(ctx context.Context) ([]model.SessionFile, error)

	// FindByStorageKey returns the record pointing at the given blob key.
	// sql.ErrNoRows is returned when none exists.
	FindByStorageKey(ctx context.Context, key string) (*model.SessionFile, error)

	// Latest returns the most recently created record, or sql.ErrNoRows.
	Latest(ctx context.Context) (*model.SessionFile, error)

	// DeleteByStorageKey removes the record for key. It returns sql.ErrNoRows
	// when nothing matched.
	DeleteByStorageKey(ctx context.Context, key string) error
}

// StatusRepository persists the bot connection status record.
type StatusRepository interface {
	// Get returns the status row with the given id, or sql.ErrNoRows.
	Get(ctx context.Context, id string) (*model.BotStatus, error)

	// Upsert inserts the row or replaces every field of an existing one.
	Upsert(ctx context.Context, st *model.BotStatus) error
}
