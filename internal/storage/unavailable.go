package storage

import (
	"context"
	"fmt"
)

// Unavailable stands in for a backend that could not be set up.
// Every operation fails with ErrUnavailable so the process can still serve bot routes.
type Unavailable struct {
	backend string
	reason  error
}

// NewUnavailable returns a store that always fails, remembering why.
func NewUnavailable(backend string, reason error) *Unavailable {
	return &Unavailable{backend: backend, reason: reason}
}

var _ BlobStore = (*Unavailable)(nil)

func (u *Unavailable) err() error {
	if u.reason == nil {
		return fmt.Errorf("%s: %w", u.backend, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w: %v", u.backend, ErrUnavailable, u.reason)
}

func (u *Unavailable) Store(context.Context, string, []byte) (string, error) { return "", u.err() }

func (u *Unavailable) Retrieve(context.Context, string) ([]byte, error) { return nil, u.err() }

func (u *Unavailable) Delete(context.Context, string) (bool, error) { return false, u.err() }

func (u *Unavailable) Ping(context.Context) error { return u.err() }

func (u *Unavailable) Backend() string { return u.backend }

// IsUnavailable reports whether s is a placeholder for a backend that never came up.
func IsUnavailable(s BlobStore) bool {
	_, ok := s.(*Unavailable)
	return ok
}
