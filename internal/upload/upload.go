// Package upload stores donation images with an external CDN and returns
// their public URLs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/foodshare/foodshare/pkg/config"
)

var (
	// ErrEmptyImage is returned for zero-length uploads
	ErrEmptyImage = errors.New("image is empty")
	// ErrTooLarge is returned when an image exceeds the configured size
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrUnsupportedType is returned for non-image content types
	ErrUnsupportedType = errors.New("unsupported content type")
	// ErrNotFound is returned when removing an unknown image
	ErrNotFound = errors.New("image not found")
)

// Uploader stores image bytes and returns the URL they are served from
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Remover deletes an image previously returned by Upload
type Remover interface {
	Remove(ctx context.Context, url string) error
}

// New builds the uploader selected by cfg.Provider
func New(cfg *config.UploadConfig) (Uploader, error) {
	switch cfg.Provider {
	case "cdn":
		return NewCDNUploader(cfg)
	case "memory", "":
		return NewMemoryUploader("memory://"+cfg.Folder, cfg.MaxBytes), nil
	default:
		return nil, fmt.Errorf("unknown upload provider %q", cfg.Provider)
	}
}

func checkImage(data []byte, contentType string, maxBytes int) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrTooLarge, len(data), maxBytes)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return nil
}

// MemoryUploader keeps images in process memory. For local development and tests.
type MemoryUploader struct {
	baseURL  string
	maxBytes int

	mu     sync.RWMutex
	images map[string]StoredImage
}

// StoredImage is an image held by MemoryUploader
type StoredImage struct {
	Data        []byte
	ContentType string
}

// NewMemoryUploader creates an uploader that serves URLs under baseURL
func NewMemoryUploader(baseURL string, maxBytes int) *MemoryUploader {
	return &MemoryUploader{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: maxBytes,
		images:   make(map[string]StoredImage),
	}
}

// Upload implements Uploader
func (m *MemoryUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkImage(data, contentType, m.maxBytes); err != nil {
		return "", err
	}

	url := m.baseURL + "/" + uuid.NewString()
	stored := StoredImage{Data: append([]byte(nil), data...), ContentType: contentType}

	m.mu.Lock()
	m.images[url] = stored
	m.mu.Unlock()

	return url, nil
}

// Get returns a stored image by URL
func (m *MemoryUploader) Get(url string) (StoredImage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[url]
	return img, ok
}

// Remove implements Remover
func (m *MemoryUploader) Remove(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[url]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	delete(m.images, url)
	return nil
}

// Len returns the number of stored images
func (m *MemoryUploader) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}
