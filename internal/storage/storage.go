package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/dukerupert/pantry/internal"
)

// Storage defines the interface for product image storage.
// Keys are slash-separated object names such as "products/{id}/{uuid}.jpg".
type Storage interface {
	// Put stores content under key and returns the public URL for it.
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a file by its key.
	// Returns an io.ReadCloser that must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key.
	// Returns nil if the file doesn't exist (idempotent).
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for accessing a stored file.
	URL(key string) string

	// Exists checks if a file exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorage creates a Storage implementation based on configuration.
func NewStorage(ctx context.Context, cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "r2":
		return NewR2Storage(ctx, R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
			PublicURL:   cfg.R2PublicURL,
		})
	case "gcs":
		return NewGCSStorage(ctx, GCSConfig{
			Bucket:          cfg.GCSBucket,
			PublicURL:       cfg.GCSPublicURL,
			CredentialsFile: cfg.GCSCredentialsFile,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}

// cleanKey normalizes key and rejects keys that escape the storage root.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	cleaned := path.Clean("/" + key)[1:]
	if key == "" || cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey(key)
	}
	return cleaned, nil
}

// joinURL appends key to base with exactly one slash between them.
func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
