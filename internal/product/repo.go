// Package product manages the catalog: validation, image upload and
// persistence of products.
package product

import (
	"context"
	"errors"
	"time"

	"github.com/MikeMC777/storefront/internal/docstore"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type DocRepo struct{ coll docstore.Collection }

func NewDocRepo(store docstore.Store) *DocRepo {
	return &DocRepo{coll: store.Collection(Collection)}
}

func EnsureIndexes(ctx context.Context, store docstore.Store) error {
	return store.EnsureCollection(ctx, Collection)
}

func (r *DocRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.coll.Insert(ctx, p)
}

// GetByID treats a malformed id like an unknown one.
func (r *DocRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	err := r.coll.FindByID(ctx, id, &p)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DocRepo) List(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out []Product
	if err := r.coll.Find(ctx, nil, docstore.NewestFirst, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (r *DocRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.coll.DeleteByID(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
