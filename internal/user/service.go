package user

import (
	"context"
	"errors"
	"strings"

	"github.com/MikeMC777/storefront/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeEmail is the form emails are stored and matched in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateBasic returns the existing user for email, or creates one named
// after nickname. created reports whether a record was inserted.
func (s *Service) CreateBasic(ctx context.Context, email, nickname string) (u *User, created bool, err error) {
	email = NormalizeEmail(email)
	nickname = strings.TrimSpace(nickname)
	if email == "" || nickname == "" {
		return nil, false, apperr.Invalid("Email and nickname are required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, apperr.Store("Failed to create user", err)
	}

	u = newUser(email)
	u.Name = nickname
	u.Nickname = nickname
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			// lost a race with a concurrent create
			if winner, gerr := s.repo.GetByEmail(ctx, email); gerr == nil {
				return winner, false, nil
			}
		}
		return nil, false, apperr.Store("Failed to create user", err)
	}
	return u, true, nil
}

// Register creates a user or overwrites name and phone of an existing one.
// The nickname is only derived from name when it is empty.
func (s *Service) Register(ctx context.Context, name, email, phone string) (u *User, created bool, err error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || phone == "" {
		return nil, false, apperr.Invalid("Name, email and phone are required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.reregister(ctx, existing, name, phone)
	case !errors.Is(err, ErrNotFound):
		return nil, false, apperr.Store("Failed to register user", err)
	}

	u = newUser(email)
	u.Name = name
	u.Nickname = firstToken(name)
	u.Phone = phone
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			if winner, gerr := s.repo.GetByEmail(ctx, email); gerr == nil {
				return s.reregister(ctx, winner, name, phone)
			}
		}
		return nil, false, apperr.Store("Failed to register user", err)
	}
	return u, true, nil
}

func (s *Service) reregister(ctx context.Context, u *User, name, phone string) (*User, bool, error) {
	u.Name = name
	u.Phone = phone
	if u.Nickname == "" {
		u.Nickname = firstToken(name)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, false, apperr.Store("Failed to register user", err)
	}
	return u, false, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("User not found")
	}
	if err != nil {
		return nil, apperr.Store("Failed to fetch user", err)
	}
	return u, nil
}

// Patch applies the provided fields to the user identified by email.
func (s *Service) Patch(ctx context.Context, email string, in PatchRequest) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Nickname != nil {
		u.Nickname = *in.Nickname
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Addresses != nil {
		u.Addresses = *in.Addresses
	}
	if in.Preferences != nil {
		u.Preferences = *in.Preferences
		u.Preferences.FavoriteItems = dedupe(u.Preferences.FavoriteItems)
	}
	u.fill()

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Missing("User not found")
		}
		return nil, apperr.Store("Failed to update user", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Store("Failed to fetch users", err)
	}
	return users, nil
}

func newUser(email string) *User {
	return &User{
		Email:       email,
		Addresses:   []Address{},
		Preferences: Preferences{FavoriteItems: []string{}},
	}
}

func firstToken(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return ""
}

// dedupe keeps the first occurrence of each item.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
