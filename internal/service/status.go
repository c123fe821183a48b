package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sessionvault/internal/model"
	"sessionvault/internal/repository"
)

// QRPrefix starts every generated pairing token.
const QRPrefix = "whatsapp-auth-"

// StatusService manages the singleton bot status record.
type StatusService interface {
	Get(ctx context.Context) (*model.BotStatus, error)
	// Set replaces the record. The id is always forced to model.BotStatusID.
	Set(ctx context.Context, st model.BotStatus) error
	// GenerateQR issues a fresh pairing token and marks the bot disconnected.
	GenerateQR(ctx context.Context) (string, error)
	// Connect simulates a completed pairing.
	Connect(ctx context.Context) (*model.BotStatus, error)
	MarkRestored(ctx context.Context) (*model.BotStatus, error)
}

type statusService struct {
	repo   repository.StatusRepository
	log    *zap.Logger
	now    func() time.Time
	random func([]byte) (int, error)
}

// NewStatusService constructs a new StatusService.
func NewStatusService(repo repository.StatusRepository, log *zap.Logger) StatusService {
	if log == nil {
		log = zap.NewNop()
	}
	return &statusService{
		repo:   repo,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		random: rand.Read,
	}
}

// Get returns the stored status, persisting the default on first read.
func (s *statusService) Get(ctx context.Context) (*model.BotStatus, error) {
	st, err := s.repo.Get(ctx, model.BotStatusID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, newError("get status", KindInternal, err)
	}

	def := model.DefaultBotStatus(s.now())
	if err := s.repo.Upsert(ctx, &def); err != nil {
		return nil, newError("get status", KindInternal, fmt.Errorf("persist default: %w", err))
	}
	return &def, nil
}

func (s *statusService) Set(ctx context.Context, st model.BotStatus) error {
	st.ID = model.BotStatusID
	if st.LastSeen.IsZero() {
		st.LastSeen = s.now()
	}
	if err := s.repo.Upsert(ctx, &st); err != nil {
		return newError("set status", KindInternal, err)
	}
	s.log.Info("bot status updated", zap.Bool("is_connected", st.IsConnected))
	return nil
}

func (s *statusService) GenerateQR(ctx context.Context) (string, error) {
	const op = "generate qr"
	buf := make([]byte, 16)
	if _, err := s.random(buf); err != nil {
		return "", newError(op, KindInternal, fmt.Errorf("random token: %w", err))
	}
	token := QRPrefix + hex.EncodeToString(buf)

	_, err := s.update(ctx, op, func(st *model.BotStatus) {
		st.QRCode = &token
		st.IsConnected = false
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *statusService) Connect(ctx context.Context) (*model.BotStatus, error) {
	return s.update(ctx, "connect", func(st *model.BotStatus) {
		phone := model.DemoPhoneNumber
		st.IsConnected = true
		st.PhoneNumber = &phone
		st.QRCode = nil
	})
}

func (s *statusService) MarkRestored(ctx context.Context) (*model.BotStatus, error) {
	return s.update(ctx, "mark restored", func(st *model.BotStatus) {
		st.SessionRestored = true
	})
}

// update applies fn to the current record, stamps last_seen and writes it back.
// Concurrent callers race; the last upsert wins.
func (s *statusService) update(ctx context.Context, op string, fn func(*model.BotStatus)) (*model.BotStatus, error) {
	st, err := s.repo.Get(ctx, model.BotStatusID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		def := model.DefaultBotStatus(s.now())
		st = &def
	case err != nil:
		return nil, newError(op, KindInternal, err)
	}

	fn(st)
	st.ID = model.BotStatusID
	st.LastSeen = s.now()
	if err := s.repo.Upsert(ctx, st); err != nil {
		return nil, newError(op, KindInternal, err)
	}
	s.log.Info("bot status transition",
		zap.String("op", op),
		zap.Bool("is_connected", st.IsConnected),
		zap.Bool("session_restored", st.SessionRestored),
	)
	return st, nil
}
