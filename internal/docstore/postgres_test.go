package docstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgOrderAndWhere(t *testing.T) {
	order, err := pgOrder(NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY created_at DESC, id DESC", order)

	order, err = pgOrder(Sort{Field: "customer.email"})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY doc #> '{customer,email}' ASC, id ASC", order)

	_, err = pgOrder(Sort{Field: "x'; drop table users; --"})
	assert.Error(t, err)

	where, args, err := pgWhere(Filter{"customer.email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, " WHERE doc @> $1::jsonb", where)
	assert.Equal(t, []any{`{"customer":{"email":"a@b.c"}}`}, args)

	where, args, err = pgWhere(nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Nil(t, args)
}

// Runs against a real database when POSTGRES_TEST_DSN is set.
func TestPostgres_Integration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer store.Close(ctx)

	_, err = store.db.Exec(ctx, `DROP TABLE IF EXISTS docstore_things`)
	require.NoError(t, err)
	require.NoError(t, store.EnsureCollection(ctx, "docstore_things", "contact.email"))
	coll := store.Collection("docstore_things")

	seed(t, coll,
		&testDoc{Name: "first", Contact: contact{Email: "a@x.io"}},
		&testDoc{Name: "second", Contact: contact{Email: "b@x.io"}},
	)
	assert.ErrorIs(t, coll.Insert(ctx, &testDoc{Contact: contact{Email: "a@x.io"}}), ErrDuplicate)

	var all []testDoc
	require.NoError(t, coll.Find(ctx, nil, NewestFirst, &all))
	assert.Equal(t, []string{"second", "first"}, names(all))

	var filtered []testDoc
	require.NoError(t, coll.Find(ctx, Filter{"contact.email": "b@x.io"}, NewestFirst, &filtered))
	assert.Equal(t, []string{"second"}, names(filtered))

	require.NoError(t, coll.UpdateByID(ctx, all[0].ID.Hex(), Fields{"name": "renamed"}))
	var got testDoc
	require.NoError(t, coll.FindByID(ctx, all[0].ID.Hex(), &got))
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, coll.DeleteByID(ctx, got.ID.Hex()))
	assert.ErrorIs(t, coll.DeleteByID(ctx, got.ID.Hex()), ErrNotFound)
}
