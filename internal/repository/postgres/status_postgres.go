package postgres

import (
	"context"
	"database/sql"

	"sessionvault/internal/model"
	"sessionvault/internal/repository"
)

// StatusPostgres stores the bot status record in PostgreSQL.
type StatusPostgres struct {
	db *sql.DB
}

func NewStatusPostgres(db *sql.DB) *StatusPostgres {
	return &StatusPostgres{db: db}
}

var _ repository.StatusRepository = (*StatusPostgres)(nil)

// Get fetches the status row by id.
func (r *StatusPostgres) Get(ctx context.Context, id string) (*model.BotStatus, error) {
	const q = `
		SELECT id, is_connected, phone_number, qr_code, last_seen, session_restored
		FROM bot_status
		WHERE id = $1
	`
	var (
		st    model.BotStatus
		phone sql.NullString
		qr    sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&st.ID,
		&st.IsConnected,
		&phone,
		&qr,
		&st.LastSeen,
		&st.SessionRestored,
	); err != nil {
		return nil, err
	}
	if phone.Valid {
		st.PhoneNumber = &phone.String
	}
	if qr.Valid {
		st.QRCode = &qr.String
	}
	return &st, nil
}

// Upsert writes the full record, last writer wins.
func (r *StatusPostgres) Upsert(ctx context.Context, st *model.BotStatus) error {
	const q = `
		INSERT INTO bot_status (id, is_connected, phone_number, qr_code, last_seen, session_restored)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			is_connected = EXCLUDED.is_connected,
			phone_number = EXCLUDED.phone_number,
			qr_code = EXCLUDED.qr_code,
			last_seen = EXCLUDED.last_seen,
			session_restored = EXCLUDED.session_restored
	`
	_, err := r.db.ExecContext(ctx, q,
		st.ID,
		st.IsConnected,
		nullString(st.PhoneNumber),
		nullString(st.QRCode),
		st.LastSeen,
		st.SessionRestored,
	)
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
