package service

import (
	"errors"
	"fmt"

	"sessionvault/internal/storage"
)

// Kind classifies service failures so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindUpload
	KindRetrieval
	KindDeletion
	KindInconsistent
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindUpload:
		return "upload"
	case KindRetrieval:
		return "retrieval"
	case KindDeletion:
		return "deletion"
	case KindInconsistent:
		return "inconsistent"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	ErrFilenameRequired = errors.New("filename is required")
	ErrKeyRequired      = errors.New("file id is required")
	ErrSessionNotFound  = errors.New("session file not found")
)

// newError builds an *Error, promoting storage unavailability over the requested kind.
func newError(op string, kind Kind, err error) *Error {
	if errors.Is(err, storage.ErrUnavailable) {
		kind = KindUnavailable
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
