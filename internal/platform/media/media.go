// Package media persists uploaded disease photos. A GCS bucket backs
// production; a local directory backs development and the in-memory
// document mode.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/farmassist/farmassist-backend/internal/platform/envutil"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type Store interface {
	// Save writes the object and returns the storable path
	// (gs://bucket/key or an absolute file path).
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
}

// New picks the GCS store when MEDIA_GCS_BUCKET is set and the local
// directory store otherwise.
func New(ctx context.Context, log *logger.Logger) (Store, error) {
	bucket := envutil.GetEnv("MEDIA_GCS_BUCKET", "", log)
	if bucket == "" {
		dir := envutil.GetEnv("MEDIA_LOCAL_DIR", "uploads", log)
		return NewLocalStore(dir, log)
	}

	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &gcsStore{
		log:    log.With("service", "MediaStore", "backend", "gcs"),
		client: client,
		bucket: bucket,
	}, nil
}

type gcsStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func (s *gcsStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", key, err)
	}
	return "gs://" + path.Join(s.bucket, key), nil
}

func (s *gcsStore) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	trimmed := strings.TrimPrefix(storedPath, "gs://")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok {
		return nil, fmt.Errorf("malformed object path %q", storedPath)
	}
	return s.client.Bucket(bucket).Object(key).NewReader(ctx)
}

type localStore struct {
	log *logger.Logger
	dir string
}

func NewLocalStore(dir string, log *logger.Logger) (Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &localStore{log: log.With("service", "MediaStore", "backend", "local"), dir: abs}, nil
}

func (s *localStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	dest := filepath.Join(s.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(dest, s.dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("key %q escapes media dir", key)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return dest, nil
}

func (s *localStore) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	return os.Open(storedPath)
}
