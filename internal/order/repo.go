package order

import (
	"context"
	"errors"
	"time"

	"github.com/MikeMC777/storefront/internal/docstore"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// List returns orders newest first, restricted to email when non-empty.
	List(ctx context.Context, email string) ([]Order, error)
	SetFulfilled(ctx context.Context, id string, fulfilled bool) (*Order, error)
}

type DocRepo struct{ coll docstore.Collection }

func NewDocRepo(store docstore.Store) *DocRepo {
	return &DocRepo{coll: store.Collection(Collection)}
}

func EnsureIndexes(ctx context.Context, store docstore.Store) error {
	return store.EnsureCollection(ctx, Collection)
}

func (r *DocRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.coll.Insert(ctx, o)
}

func (r *DocRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	if err := r.coll.FindByID(ctx, id, &o); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.Items == nil {
		o.Items = []Item{}
	}
	return &o, nil
}

func (r *DocRepo) List(ctx context.Context, email string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var filter docstore.Filter
	if email != "" {
		filter = docstore.Filter{"customer.email": email}
	}
	var out []Order
	if err := r.coll.Find(ctx, filter, docstore.NewestFirst, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	for i := range out {
		if out[i].Items == nil {
			out[i].Items = []Item{}
		}
	}
	return out, nil
}

func (r *DocRepo) SetFulfilled(ctx context.Context, id string, fulfilled bool) (*Order, error) {
	uctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.coll.UpdateByID(uctx, id, docstore.Fields{
		"fulfilled": fulfilled,
		"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
