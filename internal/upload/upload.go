// Package upload relays image files to object storage and returns their public URL.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"comicgallery/internal/platform/metrics"
)

var (
	// ErrUpload wraps any failure reported by the object storage provider.
	ErrUpload = errors.New("upload failed")
	// ErrDisabled is returned when no bucket is configured.
	ErrDisabled = errors.New("uploads are not configured")
)

// KeyPrefix is the folder every uploaded object is stored under.
const KeyPrefix = "comics/"

// ObjectStore puts one object and returns the URL it is publicly served from.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type Service struct {
	store ObjectStore
	now   func() time.Time
}

// NewService creates the relay. A nil store yields ErrDisabled on every upload.
func NewService(store ObjectStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Enabled reports whether an object store is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// Upload stores body under a timestamped, sanitized key. No retries.
func (s *Service) Upload(ctx context.Context, body io.Reader, size int64, fileName, contentType string) (string, error) {
	if s.store == nil {
		return "", ErrDisabled
	}

	key := ObjectKey(s.now(), fileName)
	url, err := s.store.Put(ctx, key, body, size, contentType)
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %s: %w", ErrUpload, key, err)
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	return url, nil
}

// ObjectKey builds comics/<unix-millis>-<sanitized name>.
func ObjectKey(now time.Time, fileName string) string {
	return KeyPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + SanitizeName(fileName)
}

// SanitizeName replaces every character outside [A-Za-z0-9.-] with an underscore.
func SanitizeName(name string) string {
	if name == "" {
		return "file"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
