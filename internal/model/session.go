package model

import "time"

// SessionFile is the metadata row for one uploaded session blob.
// StorageKey is generated by the blob store and doubles as the public file id.
type SessionFile struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"storage_key"`
	StorageLink string    `json:"storage_link,omitempty"`
	FileSize    int64     `json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
