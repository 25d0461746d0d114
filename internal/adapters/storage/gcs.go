package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
)

type serviceAccountJSON struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// GCSStorage stores receipts in a Google Cloud Storage bucket.
type GCSStorage struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
	accessID      string
	privateKey    []byte
}

var _ portssvc.BlobStorage = (*GCSStorage)(nil)

// NewGCSStorage creates a bucket client. With empty credentialsJSON it uses
// application default credentials.
func NewGCSStorage(ctx context.Context, bucket, credentialsJSON, publicBaseURL string) (*GCSStorage, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	s := &GCSStorage{bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}

	var opts []option.ClientOption
	if credJSON := strings.TrimSpace(credentialsJSON); credJSON != "" {
		var key serviceAccountJSON
		if err := json.Unmarshal([]byte(credJSON), &key); err != nil {
			return nil, fmt.Errorf("invalid GCS_CREDENTIALS_JSON: %w", err)
		}
		if key.ClientEmail != "" && key.PrivateKey != "" {
			s.accessID = key.ClientEmail
			s.privateKey = normalizePrivateKey(key.PrivateKey)
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	s.client = client
	return s, nil
}

func normalizePrivateKey(key string) []byte {
	return []byte(strings.ReplaceAll(key, "\\n", "\n"))
}

// Put uploads r under key.
func (s *GCSStorage) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to upload %s to gcs: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close gcs writer for %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing object is not an error.
func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s from gcs: %w", key, err)
	}
	return nil
}

// URL returns a V4 signed GET URL, or a public URL when a base is configured.
func (s *GCSStorage) URL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escapeKey(key), nil
	}

	opts := &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	}
	if s.accessID != "" {
		opts.GoogleAccessID = s.accessID
		opts.PrivateKey = s.privateKey
		return gcs.SignedURL(s.bucket, key, opts)
	}
	return s.client.Bucket(s.bucket).SignedURL(key, opts)
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
