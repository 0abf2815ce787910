package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
)

var ErrFileNotFound = errors.New("file not found")

// FileStore keeps uploaded resource files addressed by an opaque key.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewFileStore opens the backend named by cfg.Driver.
func NewFileStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (FileStore, error) {
	switch cfg.Driver {
	case "b2":
		store, err := NewB2Store(ctx, cfg.B2KeyID, cfg.B2AppKey, cfg.B2Bucket)
		if err != nil {
			return nil, err
		}
		logger.Info("Using B2 file storage", "bucket", cfg.B2Bucket)
		return store, nil
	case "", "bolt":
		store, err := NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using bolt file storage", "path", cfg.BoltPath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
