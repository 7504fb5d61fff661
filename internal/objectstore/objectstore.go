// Package objectstore stores uploaded evidence (screenshots, voice notes)
// in Google Cloud Storage and hands back signed read URLs plus the gs://
// URIs the vision path consumes.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSignedURLTTL is how long read URLs stay valid.
const DefaultSignedURLTTL = time.Hour

// Object describes one stored upload.
type Object struct {
	Name      string `json:"filename"`
	URI       string `json:"gsUri"`
	SignedURL string `json:"url"`
}

// Uploader is the storage surface handlers depend on.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (Object, error)
}

// Config holds object store settings.
type Config struct {
	Bucket       string
	SignedURLTTL time.Duration
}

// Store uploads objects to a single GCS bucket.
type Store struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Store using ambient Google credentials.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ttl := cfg.SignedURLTTL
	if ttl == 0 {
		ttl = DefaultSignedURLTTL
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Upload writes the object and returns its gs:// URI and a signed read URL.
func (s *Store) Upload(ctx context.Context, filename, contentType string, r io.Reader) (Object, error) {
	name := objectName(filename)

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	// Screenshots and voice notes are small; one-shot upload.
	w.ChunkSize = 0

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return Object{}, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to finalize object: %w", err)
	}

	signedURL, err := s.client.Bucket(s.bucket).SignedURL(name, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to sign url: %w", err)
	}

	obj := Object{
		Name:      name,
		URI:       URI(s.bucket, name),
		SignedURL: signedURL,
	}

	s.logger.Debug("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.String("content_type", contentType),
	)

	return obj, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// URI formats the gs:// URI for an object.
func URI(bucket, name string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, name)
}

// objectName prefixes the original filename with a UUID so uploads never
// collide. Path separators in client-supplied names are dropped.
func objectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload.bin"
	}
	return uuid.NewString() + "-" + base
}

var _ Uploader = (*Store)(nil)
