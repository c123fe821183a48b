// Package storage holds the blob store abstraction used for session files and its adapters:
// MinIO, AWS S3 and the local filesystem. Keys are generated here, never by callers.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBlobNotFound is returned by Retrieve when no blob exists under the key.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrUnavailable marks a backend that was not configured or failed to initialize.
	ErrUnavailable = errors.New("blob store unavailable")
)

// objectPrefix namespaces session blobs inside remote buckets.
const objectPrefix = "sessions/"

// BlobStore persists opaque byte content under store-generated keys.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Store saves content and returns the generated key. name is only used for the key extension and metadata.
	Store(ctx context.Context, name string, content []byte) (string, error)
	// Retrieve returns the full content stored under key, or ErrBlobNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)
	// Delete removes the blob and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Backend names the implementation ("minio", "s3", "local").
	Backend() string
}

// Linker is implemented by stores that can hand out time-limited download URLs.
type Linker interface {
	Link(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// NewKey generates a unique key for a blob, keeping a short alphanumeric extension of name.
// Keys never contain path separators so they can travel as URL path segments.
func NewKey(name string) string {
	return uuid.NewString() + keyExt(name)
}

func keyExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// validKey rejects keys that could escape a directory or object prefix.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}
