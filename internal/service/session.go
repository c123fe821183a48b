package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sessionvault/internal/model"
	"sessionvault/internal/repository"
	"sessionvault/internal/storage"
)

// NoSessionsMessage is reported by RestoreLatest when nothing has been uploaded yet.
const NoSessionsMessage = "No session files found to restore"

// DownloadResult describes a blob materialized on local disk.
type DownloadResult struct {
	File      model.SessionFile
	LocalPath string
}

// RestoreResult is the outcome of RestoreLatest. Restored is false when there was nothing to restore.
type RestoreResult struct {
	Restored  bool
	Message   string
	File      *model.SessionFile
	LocalPath string
}

// SessionConfig parameterizes the session service.
type SessionConfig struct {
	DownloadDir string
	LinkExpiry  time.Duration
}

// SessionService defines the use cases for WhatsApp session files.
type SessionService interface {
	// Upload stores content in the blob store, then records its metadata.
	// The blob is deleted again if the metadata insert fails.
	Upload(ctx context.Context, filename string, content []byte) (*model.SessionFile, error)

	// List returns every recorded session file in insertion order.
	List(ctx context.Context) ([]model.SessionFile, error)

	// Download fetches the blob for key and writes it under the download directory.
	Download(ctx context.Context, key string) (*DownloadResult, error)

	// Delete removes the metadata row, then the blob on a best-effort basis.
	Delete(ctx context.Context, key string) error

	// RestoreLatest downloads the newest session file and flags the bot status as restored.
	RestoreLatest(ctx context.Context) (*RestoreResult, error)
}

type sessionService struct {
	store  storage.BlobStore
	repo   repository.SessionRepository
	status StatusService
	cfg    SessionConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewSessionService constructs a new SessionService.
func NewSessionService(store storage.BlobStore, repo repository.SessionRepository, status StatusService, cfg SessionConfig, log *zap.Logger) SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}
	return &sessionService{
		store:  store,
		repo:   repo,
		status: status,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) Upload(ctx context.Context, filename string, content []byte) (*model.SessionFile, error) {
	const op = "upload"
	if filename == "" {
		return nil, newError(op, KindInvalid, ErrFilenameRequired)
	}

	key, err := s.store.Store(ctx, filename, content)
	if err != nil {
		return nil, newError(op, KindUpload, fmt.Errorf("store blob: %w", err))
	}

	var link string
	if l, ok := s.store.(storage.Linker); ok && s.cfg.LinkExpiry > 0 {
		link, err = l.Link(ctx, key, s.cfg.LinkExpiry)
		if err != nil {
			s.log.Warn("link generation failed", zap.String("storage_key", key), zap.Error(err))
			link = ""
		}
	}

	now := s.now()
	stored, err := s.repo.Create(ctx, &model.SessionFile{
		ID:          uuid.NewString(),
		Filename:    filename,
		StorageKey:  key,
		StorageLink: link,
		FileSize:    int64(len(content)),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if _, delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Error("rollback delete failed", zap.String("storage_key", key), zap.Error(delErr))
			return nil, newError(op, KindUpload, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr))
		}
		return nil, newError(op, KindUpload, fmt.Errorf("db save failed: %w", err))
	}

	s.log.Info("session file uploaded",
		zap.String("filename", stored.Filename),
		zap.String("storage_key", stored.StorageKey),
		zap.Int64("file_size", stored.FileSize),
	)
	return stored, nil
}

func (s *sessionService) List(ctx context.Context) ([]model.SessionFile, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, newError("list", KindRetrieval, err)
	}
	return items, nil
}

func (s *sessionService) Download(ctx context.Context, key string) (*DownloadResult, error) {
	const op = "download"
	if err := s.requireStore(op); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, newError(op, KindInvalid, ErrKeyRequired)
	}

	f, err := s.repo.FindByStorageKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, newError(op, KindNotFound, ErrSessionNotFound)
		}
		return nil, newError(op, KindRetrieval, err)
	}
	return s.materialize(ctx, op, f)
}

// materialize retrieves the blob behind f and writes it to the download directory.
func (s *sessionService) materialize(ctx context.Context, op string, f *model.SessionFile) (*DownloadResult, error) {
	content, err := s.store.Retrieve(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			s.log.Error("metadata references missing blob", zap.String("storage_key", f.StorageKey))
			return nil, newError(op, KindInconsistent, fmt.Errorf("blob %s missing: %w", f.StorageKey, err))
		}
		return nil, newError(op, KindRetrieval, err)
	}

	if err := os.MkdirAll(s.cfg.DownloadDir, 0o750); err != nil {
		return nil, newError(op, KindRetrieval, fmt.Errorf("create download dir: %w", err))
	}
	path := filepath.Join(s.cfg.DownloadDir, localName(f))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return nil, newError(op, KindRetrieval, fmt.Errorf("write %s: %w", path, err))
	}

	s.log.Info("session file downloaded", zap.String("filename", f.Filename), zap.String("local_path", path))
	return &DownloadResult{File: *f, LocalPath: path}, nil
}

// localName strips any directory components from the client-supplied filename.
func localName(f *model.SessionFile) string {
	name := f.Filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return f.StorageKey
	}
	return name
}

func (s *sessionService) Delete(ctx context.Context, key string) error {
	const op = "delete"
	if err := s.requireStore(op); err != nil {
		return err
	}
	if key == "" {
		return newError(op, KindInvalid, ErrKeyRequired)
	}

	if err := s.repo.DeleteByStorageKey(ctx, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return newError(op, KindNotFound, ErrSessionNotFound)
		}
		return newError(op, KindDeletion, err)
	}

	existed, err := s.store.Delete(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("blob delete failed, leaving orphan", zap.String("storage_key", key), zap.Error(err))
	case !existed:
		s.log.Warn("blob already absent", zap.String("storage_key", key))
	default:
		s.log.Info("session file deleted", zap.String("storage_key", key))
	}
	return nil
}

func (s *sessionService) RestoreLatest(ctx context.Context) (*RestoreResult, error) {
	const op = "restore"
	if err := s.requireStore(op); err != nil {
		return nil, err
	}

	f, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &RestoreResult{Restored: false, Message: NoSessionsMessage}, nil
		}
		return nil, newError(op, KindRetrieval, err)
	}

	res, err := s.materialize(ctx, op, f)
	if err != nil {
		return nil, err
	}

	if _, err := s.status.MarkRestored(ctx); err != nil {
		return nil, newError(op, KindInternal, fmt.Errorf("mark restored: %w", err))
	}

	s.log.Info("session restored", zap.String("filename", f.Filename))
	return &RestoreResult{
		Restored:  true,
		Message:   "Session restored: " + f.Filename,
		File:      f,
		LocalPath: res.LocalPath,
	}, nil
}

// requireStore fails fast when the blob backend never came up.
func (s *sessionService) requireStore(op string) error {
	if storage.IsUnavailable(s.store) {
		return newError(op, KindUnavailable, fmt.Errorf("%s: %w", s.store.Backend(), storage.ErrUnavailable))
	}
	return nil
}
