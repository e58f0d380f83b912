package user

import (
	"context"
	"errors"
	"time"

	"github.com/MikeMC777/storefront/internal/docstore"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context) ([]User, error)
}

type DocRepo struct{ coll docstore.Collection }

func NewDocRepo(store docstore.Store) *DocRepo {
	return &DocRepo{coll: store.Collection(Collection)}
}

// EnsureIndexes declares the users collection and its unique email index.
func EnsureIndexes(ctx context.Context, store docstore.Store) error {
	return store.EnsureCollection(ctx, Collection, "email")
}

func (r *DocRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.coll.Insert(ctx, u)
	if errors.Is(err, docstore.ErrDuplicate) {
		return ErrAlreadyExist
	}
	return err
}

func (r *DocRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u User
	err := r.coll.FindOne(ctx, docstore.Filter{"email": email}, &u)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.fill()
	return &u, nil
}

// Update overwrites every mutable field of u and bumps updatedAt.
func (r *DocRepo) Update(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	err := r.coll.UpdateByID(ctx, u.ID.Hex(), docstore.Fields{
		"name":        u.Name,
		"nickname":    u.Nickname,
		"phone":       u.Phone,
		"addresses":   u.Addresses,
		"preferences": u.Preferences,
		"updatedAt":   u.UpdatedAt,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *DocRepo) List(ctx context.Context) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out []User
	if err := r.coll.Find(ctx, nil, docstore.NewestFirst, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []User{}
	}
	for i := range out {
		out[i].fill()
	}
	return out, nil
}

// fill replaces nil collections so they encode as [] rather than null.
func (u *User) fill() {
	if u.Addresses == nil {
		u.Addresses = []Address{}
	}
	if u.Preferences.FavoriteItems == nil {
		u.Preferences.FavoriteItems = []string{}
	}
}
