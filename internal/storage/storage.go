// Package storage turns an uploaded product image into a publicly
// resolvable URL. Backends are interchangeable behind ImageStore.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5 << 20

var (
	ErrNotImage         = errors.New("only image files are allowed")
	ErrTooLarge         = errors.New("image exceeds the 5MB limit")
	ErrUnsupportedImage = errors.New("image format cannot be processed")
)

type ImageStore interface {
	Store(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Remover is implemented by backends that can delete what they stored.
type Remover interface {
	Remove(ctx context.Context, url string) error
}

type Options struct {
	Backend            string
	UploadDir          string
	PublicBaseURL      string
	S3Region           string
	S3Bucket           string
	S3Prefix           string
	GCSBucket          string
	GCSCredentialsFile string
	MaxWidth           int
	MaxHeight          int
}

// New builds the backend named by opts.Backend.
func New(ctx context.Context, opts Options, log *zap.Logger) (ImageStore, error) {
	pipeline := Pipeline{MaxWidth: opts.MaxWidth, MaxHeight: opts.MaxHeight}
	switch opts.Backend {
	case "local":
		return NewLocalStorage(opts.UploadDir, opts.PublicBaseURL, log)
	case "s3":
		return NewS3Client(opts.S3Region, opts.S3Bucket, opts.S3Prefix, pipeline)
	case "gcs":
		return NewGCSClient(ctx, opts.GCSBucket, opts.GCSCredentialsFile, pipeline)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}

// CheckImage enforces the size cap and requires both the declared content
// type and the sniffed content to be image/*. It returns the sniffed type.
func CheckImage(file *multipart.FileHeader) (*mimetype.MIME, error) {
	if file.Size > MaxImageSize {
		return nil, ErrTooLarge
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return nil, ErrNotImage
	}
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("sniff upload: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}
	return mt, nil
}

// objectName returns a collision-free key under prefix.
func objectName(prefix, ext string) string {
	name := uuid.NewString() + ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + name
	}
	return name
}
