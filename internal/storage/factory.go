package storage

import (
	"fmt"

	"sessionvault/internal/config"
)

// New builds the blob store selected by cfg.Backend.
// On failure it returns an Unavailable store together with the error, so callers
// can log the configuration problem and keep serving.
func New(cfg config.StorageConfig) (BlobStore, error) {
	var (
		store BlobStore
		err   error
	)
	switch cfg.Backend {
	case config.BackendMinIO:
		store, err = NewMinIO(cfg.MinIO)
	case config.BackendS3:
		store, err = NewS3(cfg.S3)
	case config.BackendLocal:
		store, err = NewLocal(cfg.Local)
	default:
		err = fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
	if err != nil {
		return NewUnavailable(cfg.Backend, err), err
	}
	return store, nil
}
