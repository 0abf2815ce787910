package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
)

func TestBoltStore_PutOpenDelete(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "nested", "files.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	n, err := store.Put(ctx, "r1/syllabus.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	rc, err := store.Open(ctx, "r1/syllabus.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4 body", string(body))

	require.NoError(t, store.Delete(ctx, "r1/syllabus.pdf"))
	_, err = store.Open(ctx, "r1/syllabus.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)

	// Deleting twice is harmless.
	require.NoError(t, store.Delete(ctx, "r1/syllabus.pdf"))
}

func TestNewFileStore_Drivers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewFileStore(context.Background(), config.StorageConfig{Driver: "bolt", BoltPath: filepath.Join(t.TempDir(), "u.db")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, store)
	require.NoError(t, store.Close())

	_, err = NewFileStore(context.Background(), config.StorageConfig{Driver: "s3"}, logger)
	assert.Error(t, err)
}
