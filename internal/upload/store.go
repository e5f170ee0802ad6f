package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const DefaultURLPrefix = "/generated_images"

// ImageStore persists uploaded images and reports the URL they are served at.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
}

// FSStore keeps images in a local directory served under URLPrefix.
type FSStore struct {
	Dir       string
	URLPrefix string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &FSStore{Dir: dir, URLPrefix: DefaultURLPrefix}, nil
}

func (s *FSStore) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("publish image: %w", err)
	}

	return s.URLPrefix + "/" + name, nil
}

// Handler serves the directory under URLPrefix without directory listings.
func (s *FSStore) Handler() http.Handler {
	files := http.StripPrefix(s.URLPrefix, http.FileServer(http.Dir(s.Dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}
