// Package storage hosts uploaded registration photos.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sanskruthi/fest-service/internal/config"
)

// ErrInvalidKey rejects object keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// ImageHost stores an object and returns its public URL.
type ImageHost interface {
	Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
	Delete(ctx context.Context, url string) error
}

// New builds the host selected by cfg.Driver.
func New(cfg config.StorageConfig) (ImageHost, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalHost(cfg.LocalDir, cfg.PublicBaseURL)
	case "s3":
		return NewS3Host(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// LocalHost writes objects under a directory served at baseURL.
type LocalHost struct {
	dir     string
	baseURL string
}

// NewLocalHost creates dir if needed.
func NewLocalHost(dir, baseURL string) (*LocalHost, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory objects are written to.
func (h *LocalHost) Dir() string {
	return h.dir
}

func (h *LocalHost) Upload(ctx context.Context, key, _ string, body io.ReadSeeker) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	target := filepath.Join(h.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return h.baseURL + "/" + clean, nil
}

func (h *LocalHost) Delete(_ context.Context, url string) error {
	key := strings.TrimPrefix(url, h.baseURL+"/")
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(h.dir, filepath.FromSlash(clean))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidKey
	}
	return clean, nil
}
