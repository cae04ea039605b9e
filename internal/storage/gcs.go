package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig contains configuration for Google Cloud Storage.
type GCSConfig struct {
	Bucket string

	// PublicURL defaults to https://storage.googleapis.com/{bucket}.
	PublicURL string

	// CredentialsFile is optional. Application default credentials are used
	// when it is empty.
	CredentialsFile string
}

// GCSStorage implements Storage using a Google Cloud Storage bucket, the
// default file store alongside Firestore.
type GCSStorage struct {
	client    *gcs.Client
	bucket    string
	publicURL string
}

// NewGCSStorage creates a client for cfg.Bucket.
func NewGCSStorage(ctx context.Context, cfg GCSConfig) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, ErrGCSBucketRequired
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCSStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

func (s *GCSStorage) object(key string) (*gcs.ObjectHandle, string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, "", err
	}
	return s.client.Bucket(s.bucket).Object(key), key, nil
}

func (s *GCSStorage) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	obj, key, err := s.object(key)
	if err != nil {
		return "", err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"
	if _, err := io.Copy(w, content); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}

	return s.URL(key), nil
}

func (s *GCSStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, key, err := s.object(key)
	if err != nil {
		return nil, err
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrFileNotFound(key)
		}
		return nil, fmt.Errorf("failed to get from GCS: %w", err)
	}
	return r, nil
}

// Delete treats a missing object as success.
func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	obj, _, err := s.object(key)
	if err != nil {
		return err
	}

	if err := obj.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete from GCS: %w", err)
	}
	return nil
}

func (s *GCSStorage) URL(key string) string {
	return joinURL(s.publicURL, key)
}

func (s *GCSStorage) Exists(ctx context.Context, key string) (bool, error) {
	obj, _, err := s.object(key)
	if err != nil {
		return false, err
	}

	if _, err := obj.Attrs(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence in GCS: %w", err)
	}
	return true, nil
}

// Close releases the client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
