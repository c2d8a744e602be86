// Package storage uploads landing page images to Supabase Storage.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"mentorx/internal/domain"
)

// ObjectStorage stores a blob and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// allowed maps sniffed content types to file extensions.
var allowed = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// DetectImageType sniffs data and returns its content type and extension.
// Anything but png, jpeg, webp or gif is a validation error.
func DetectImageType(data []byte) (string, string, error) {
	ct := http.DetectContentType(data)
	ext, ok := allowed[ct]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image type %s", domain.ErrValidation, ct)
	}
	return ct, ext, nil
}

// SupabaseStorage talks to the Storage REST API of a Supabase project
// with the service role key.
type SupabaseStorage struct {
	client  *resty.Client
	baseURL string
	bucket  string
	logger  *slog.Logger
}

var _ ObjectStorage = (*SupabaseStorage)(nil)

// NewSupabaseStorage creates a client for one bucket.
func NewSupabaseStorage(supabaseURL, serviceKey, bucket string, logger *slog.Logger) *SupabaseStorage {
	base := strings.TrimRight(supabaseURL, "/")
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(30*time.Second).
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey)

	return &SupabaseStorage{
		client:  client,
		baseURL: base,
		bucket:  bucket,
		logger:  logger,
	}
}

// Upload writes data at path, replacing any existing object, and returns
// the public URL of the object.
func (s *SupabaseStorage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	objectPath := s.bucket + "/" + escapePath(path)

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post("/storage/v1/object/" + objectPath)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s failed with status %d: %s", path, resp.StatusCode(), resp.String())
	}

	s.logger.Debug("object uploaded", "bucket", s.bucket, "path", path, "bytes", len(data))
	return s.baseURL + "/storage/v1/object/public/" + objectPath, nil
}

func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
