package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PublicPrefix is the URL path the local upload directory is served under.
const PublicPrefix = "/uploads"

// LocalStorage writes uploads below basePath; the HTTP front door serves
// them statically under PublicPrefix.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      *zap.Logger
}

func NewLocalStorage(basePath, publicBaseURL string, log *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		log:      log,
	}, nil
}

func (s *LocalStorage) Dir() string { return s.basePath }

func (s *LocalStorage) Store(_ context.Context, file *multipart.FileHeader) (string, error) {
	mt, err := CheckImage(file)
	if err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	rel := objectName("products", mt.Extension())
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	if err := saveFile(fullPath, src); err != nil {
		return "", err
	}

	s.log.Info("image stored", zap.String("path", fullPath), zap.Int64("size", file.Size))
	return s.baseURL + PublicPrefix + "/" + rel, nil
}

// saveFile copies src to fullPath and removes the partial file if either the
// copy or the final close fails.
func saveFile(fullPath string, src io.Reader) (err error) {
	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(fullPath)
		}
	}()
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("save file: %w", err)
	}
	if err = dst.Close(); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// Remove deletes the file behind a URL produced by Store. URLs outside the
// upload directory are ignored.
func (s *LocalStorage) Remove(_ context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	p := path.Clean(u.Path)
	if !strings.HasPrefix(p, PublicPrefix+"/") {
		return nil
	}
	rel := strings.TrimPrefix(p, PublicPrefix+"/")
	full := filepath.Join(s.basePath, filepath.FromSlash(rel))
	if r, err := filepath.Rel(s.basePath, full); err != nil || strings.HasPrefix(r, "..") {
		return nil
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
