package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionvault/internal/config"
)

func newTestMinIO(t *testing.T, f *fakeS3, bucket string) BlobStore {
	t.Helper()
	store, err := NewMinIO(config.MinIOConfig{
		Endpoint:  f.host(),
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    bucket,
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return store
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}, want: "endpoint"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "c"}, want: "credentials"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, want: "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(tt.cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewMinIO_CreatesBucket(t *testing.T) {
	f := newFakeS3(t)
	newTestMinIO(t, f, "sessions")
	assert.True(t, f.hasBucket("sessions"))
}

func TestMinIO_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFakeS3(t, "sessions")
	store := newTestMinIO(t, f, "sessions")

	content := []byte(`{"creds":"abc12"}`)
	key, err := store.Store(ctx, "creds.json", content)
	require.NoError(t, err)
	assert.Contains(t, key, ".json")

	stored, ok := f.object("sessions", "sessions/"+key)
	require.True(t, ok)
	assert.Equal(t, content, stored)

	got, err := store.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	link, err := store.(Linker).Link(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, link, "sessions/"+key)
	assert.Contains(t, link, "X-Amz-Signature")

	existed, err := store.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = store.Retrieve(ctx, key)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestMinIO_PingAndBackend(t *testing.T) {
	f := newFakeS3(t, "sessions")
	store := newTestMinIO(t, f, "sessions")

	assert.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, config.BackendMinIO, store.Backend())

	f.mu.Lock()
	delete(f.buckets, "sessions")
	f.mu.Unlock()
	assert.Error(t, store.Ping(context.Background()))
}
