package product

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/storage"
)

type Service struct {
	repo   Repository
	images storage.ImageStore
	log    *zap.Logger
}

func NewService(repo Repository, images storage.ImageStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, images: images, log: log}
}

// ParsePrice accepts any finite decimal literal.
func ParsePrice(raw string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Create validates in, uploads the image if one is attached and stores the
// product. The first invalid field is reported.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	p := &Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
	}
	if p.Name == "" {
		return nil, apperr.Invalid("Product name is required")
	}
	if p.Description == "" {
		return nil, apperr.Invalid("Product description is required")
	}
	price, ok := ParsePrice(in.Price)
	if !ok {
		return nil, apperr.Invalid("Valid price is required")
	}
	p.Price = price
	if p.Category == "" {
		return nil, apperr.Invalid("Product category is required")
	}

	if in.Image != nil {
		url, err := s.upload(ctx, in)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.discard(ctx, p.ImageURL)
		return nil, apperr.Store("Failed to create product", err)
	}
	return p, nil
}

func (s *Service) upload(ctx context.Context, in CreateInput) (string, error) {
	if s.images == nil {
		return "", apperr.Upload("Image uploads are not configured")
	}
	url, err := s.images.Store(ctx, in.Image)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, storage.ErrNotImage):
		return "", apperr.Upload("Only image files are allowed")
	case errors.Is(err, storage.ErrTooLarge):
		return "", apperr.Upload("File too large. Maximum size is 5MB")
	case errors.Is(err, storage.ErrUnsupportedImage):
		return "", apperr.Upload("Unsupported image format")
	default:
		return "", apperr.Store("Failed to upload image", err)
	}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Store("Failed to fetch products", err)
	}
	return out, nil
}

// Delete removes the product and, when the backend supports it, its image.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.Missing("Product not found")
	}
	if err != nil {
		return apperr.Store("Failed to delete product", err)
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Store("Failed to delete product", err)
	}
	if !ok {
		return apperr.Missing("Product not found")
	}
	s.discard(ctx, p.ImageURL)
	return nil
}

// discard best-effort removes a stored image.
func (s *Service) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	rm, ok := s.images.(storage.Remover)
	if !ok {
		return
	}
	if err := rm.Remove(ctx, url); err != nil {
		s.log.Warn("image cleanup failed", zap.String("url", url), zap.Error(err))
	}
}
