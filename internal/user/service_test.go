package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/docstore"
)

func newTestService(t *testing.T) (*Service, *DocRepo) {
	t.Helper()
	store := docstore.NewMemory()
	require.NoError(t, EnsureIndexes(context.Background(), store))
	repo := NewDocRepo(store)
	return NewService(repo), repo
}

func TestCreateBasic_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, created, err := svc.CreateBasic(ctx, "  Ana@Example.com ", "ana")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ana@example.com", first.Email)
	assert.Equal(t, "ana", first.Name)
	assert.Equal(t, "ana", first.Nickname)
	assert.Equal(t, "", first.Phone)
	assert.NotNil(t, first.Addresses)
	assert.NotNil(t, first.Preferences.FavoriteItems)

	second, created, err := svc.CreateBasic(ctx, "ana@example.com", "someone else")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ana", second.Nickname)
}

func TestCreateBasic_MissingFields(t *testing.T) {
	svc, _ := newTestService(t)
	for _, tc := range []struct{ email, nickname string }{
		{"", "ana"},
		{"ana@example.com", ""},
		{"   ", "  "},
	} {
		_, _, err := svc.CreateBasic(context.Background(), tc.email, tc.nickname)
		assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err), "%+v", tc)
	}
}

func TestRegister_CreatesThenMerges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, created, err := svc.Register(ctx, "Ana María Torres", "ana@example.com", "300")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ana", u.Nickname)

	u, created, err = svc.Register(ctx, "Beatriz Gómez", "ANA@example.com", "311")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Beatriz Gómez", u.Name)
	assert.Equal(t, "311", u.Phone)
	assert.Equal(t, "Ana", u.Nickname, "nickname is kept once set")

	got, err := svc.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "311", got.Phone)
	assert.Equal(t, "Ana", got.Nickname)
}

func TestRegister_BackfillsEmptyNickname(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("carl@example.com")))

	u, created, err := svc.Register(ctx, "Carl Sagan", "carl@example.com", "1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Carl", u.Nickname)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "")
	assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _, err := svc.CreateBasic(ctx, "dan@example.com", "dan")
	require.NoError(t, err)

	u, err := svc.GetByEmail(ctx, " DAN@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "dan", u.Nickname)

	_, err = svc.GetByEmail(ctx, "nobody@example.com")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestPatch_AllowListedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	orig, _, err := svc.Register(ctx, "Eva Luna", "eva@example.com", "1")
	require.NoError(t, err)

	nick := "evi"
	addrs := []Address{{Name: "Home", Address: "Calle 1", IsDefault: true}}
	u, err := svc.Patch(ctx, "EVA@example.com", PatchRequest{
		Nickname:  &nick,
		Addresses: &addrs,
		Preferences: &Preferences{
			FavoriteItems:        []string{"pizza", "taco", "pizza", "soup", "taco"},
			DeliveryInstructions: "ring twice",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "eva@example.com", u.Email)
	assert.Equal(t, "Eva Luna", u.Name)
	assert.Equal(t, "1", u.Phone)
	assert.Equal(t, "evi", u.Nickname)
	assert.Equal(t, addrs, u.Addresses)
	assert.Equal(t, []string{"pizza", "taco", "soup"}, u.Preferences.FavoriteItems)
	assert.False(t, u.UpdatedAt.Before(orig.UpdatedAt))

	stored, err := svc.GetByEmail(ctx, "eva@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ring twice", stored.Preferences.DeliveryInstructions)
	assert.Equal(t, orig.CreatedAt, stored.CreatedAt)
}

func TestPatch_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	name := "x"
	_, err := svc.Patch(context.Background(), "ghost@example.com", PatchRequest{Name: &name})
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestList_NewestFirst(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		u := newUser(email)
		require.NoError(t, repo.Create(ctx, u))
	}
	users, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i := 1; i < len(users); i++ {
		assert.False(t, users[i].CreatedAt.After(users[i-1].CreatedAt))
	}
}

// stubRepo lets tests force store failures and races.
type stubRepo struct {
	users     map[string]*User
	createErr error
	getErr    error
	onCreate  func()
}

func newStubRepo() *stubRepo { return &stubRepo{users: map[string]*User{}} }

func (s *stubRepo) Create(_ context.Context, u *User) error {
	if s.onCreate != nil {
		s.onCreate()
	}
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.users[u.Email]; ok {
		return ErrAlreadyExist
	}
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *stubRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) Update(_ context.Context, u *User) error {
	if _, ok := s.users[u.Email]; !ok {
		return ErrNotFound
	}
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *stubRepo) List(context.Context) ([]User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func TestCreateBasic_DuplicateRaceReturnsWinner(t *testing.T) {
	repo := newStubRepo()
	repo.onCreate = func() {
		// another request inserts the same email first
		repo.users["race@x.com"] = &User{Email: "race@x.com", Nickname: "winner"}
		repo.onCreate = nil
	}
	svc := NewService(repo)

	u, created, err := svc.CreateBasic(context.Background(), "race@x.com", "loser")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "winner", u.Nickname)
}

func TestService_StoreErrors(t *testing.T) {
	repo := newStubRepo()
	repo.getErr = errors.New("connection reset")
	svc := NewService(repo)
	ctx := context.Background()

	_, _, err := svc.CreateBasic(ctx, "a@x.com", "a")
	assert.Equal(t, apperr.StoreError, apperr.CodeOf(err))

	_, err = svc.GetByEmail(ctx, "a@x.com")
	assert.Equal(t, apperr.StoreError, apperr.CodeOf(err))
	assert.ErrorContains(t, err, "connection reset")

	_, err = svc.List(ctx)
	assert.Equal(t, apperr.StoreError, apperr.CodeOf(err))
}
