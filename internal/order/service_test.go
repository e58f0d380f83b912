package order

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/docstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := docstore.NewMemory()
	require.NoError(t, EnsureIndexes(context.Background(), store))
	return NewService(NewDocRepo(store))
}

func decodeRequest(t *testing.T, body string) CreateOrderRequest {
	t.Helper()
	var req CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

const burgerOrder = `{
	"customer": {"name":"A","address":"X","phone":"1","email":"a@b.com"},
	"items": [{"id":"1","name":"Burger","price":5,"quantity":2}],
	"total": 10,
	"paymentMethod": "cash"
}`

func TestCreate_Defaults(t *testing.T) {
	svc := newTestService(t)

	o, err := svc.Create(context.Background(), decodeRequest(t, burgerOrder))
	require.NoError(t, err)
	assert.False(t, o.ID.IsZero())
	assert.Equal(t, 10.0, o.Total)
	assert.Equal(t, 10.0, o.Subtotal)
	assert.Equal(t, 0.0, o.DeliveryFee)
	assert.False(t, o.Fulfilled)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Nil(t, o.DeliveryLocation)
	require.Len(t, o.Items, 1)
	assert.Equal(t, Item{ID: "1", Name: "Burger", Price: 5, Quantity: 2}, o.Items[0])
}

func TestCreate_ExplicitAmountsAndIgnoredFulfilled(t *testing.T) {
	svc := newTestService(t)

	req := decodeRequest(t, `{
		"customer": {"name":"B","address":"Y","phone":"2","email":" Bob@Example.com "},
		"items": [{"id":7,"name":"Soup","price":4.5,"quantity":1}],
		"subtotal": "4.50",
		"deliveryFee": 2,
		"deliveryLocation": {"id":3,"name":"North","fee":2},
		"total": "6.5",
		"paymentMethod": "card",
		"paymentReference": "ref-1",
		"paymentStatus": "paid",
		"orderReference": "ORD-9",
		"fulfilled": true
	}`)
	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", o.Customer.Email)
	assert.Equal(t, 4.5, o.Subtotal)
	assert.Equal(t, 2.0, o.DeliveryFee)
	assert.Equal(t, 6.5, o.Total)
	assert.Equal(t, "paid", o.PaymentStatus)
	assert.Equal(t, Ref("7"), o.Items[0].ID)
	require.NotNil(t, o.DeliveryLocation)
	assert.Equal(t, Ref("3"), o.DeliveryLocation.ID)
	assert.False(t, o.Fulfilled)
}

func TestCreate_NonNumericFallbacks(t *testing.T) {
	svc := newTestService(t)

	req := decodeRequest(t, burgerOrder)
	req.Subtotal = "n/a"
	req.DeliveryFee = true
	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10.0, o.Subtotal)
	assert.Equal(t, 0.0, o.DeliveryFee)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*CreateOrderRequest)
		msg    string
	}{
		{"no customer", func(r *CreateOrderRequest) { r.Customer = nil; r.Items = nil }, "Customer information is required"},
		{"no items", func(r *CreateOrderRequest) { r.Items = nil }, "Order must contain at least one item"},
		{"empty items", func(r *CreateOrderRequest) { r.Items = []Item{}; r.Total = nil }, "Order must contain at least one item"},
		{"no email", func(r *CreateOrderRequest) { r.Customer.Email = " "; r.Customer.Name = "" }, "Customer email is required"},
		{"no phone", func(r *CreateOrderRequest) { r.Customer.Phone = "" }, "Customer name, address and phone are required"},
		{"no total", func(r *CreateOrderRequest) { r.Total = nil }, "Valid total is required"},
		{"text total", func(r *CreateOrderRequest) { r.Total = "ten" }, "Valid total is required"},
		{"no payment", func(r *CreateOrderRequest) { r.PaymentMethod = "" }, "Payment method is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := decodeRequest(t, burgerOrder)
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			var appErr *apperr.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.InvalidInput, appErr.Code)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestList_FilterByEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"a@b.com", "other@b.com", "A@B.com"} {
		req := decodeRequest(t, burgerOrder)
		req.Customer.Email = email
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}

	mine, err := svc.List(ctx, " A@b.COM")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, "a@b.com", o.Customer.Email)
	}

	none, err := svc.List(ctx, "nobody@b.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSetFulfilled(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, decodeRequest(t, burgerOrder))
	require.NoError(t, err)

	yes := true
	for i := 0; i < 2; i++ {
		got, err := svc.SetFulfilled(ctx, o.ID.Hex(), &yes)
		require.NoError(t, err)
		assert.True(t, got.Fulfilled)
		assert.Equal(t, o.Total, got.Total)
		assert.Equal(t, o.CreatedAt, got.CreatedAt)
	}

	no := false
	got, err := svc.SetFulfilled(ctx, o.ID.Hex(), &no)
	require.NoError(t, err)
	assert.False(t, got.Fulfilled)
}

func TestSetFulfilled_Errors(t *testing.T) {
	svc := newTestService(t)
	yes := true

	_, err := svc.SetFulfilled(context.Background(), "bogus", &yes)
	assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))

	_, err = svc.SetFulfilled(context.Background(), "507f1f77bcf86cd799439011", nil)
	assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))

	_, err = svc.SetFulfilled(context.Background(), "507f1f77bcf86cd799439011", &yes)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, decodeRequest(t, burgerOrder))
	require.NoError(t, err)

	got, err := svc.Get(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, o.Customer, got.Customer)

	_, err = svc.Get(ctx, "xyz")
	assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))
	_, err = svc.Get(ctx, "507f1f77bcf86cd799439011")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestAmount(t *testing.T) {
	ok := map[string]struct {
		in   any
		want float64
	}{
		"float":       {12.5, 12.5},
		"int":         {3, 3},
		"number":      {json.Number("7.25"), 7.25},
		"string":      {" 8 ", 8},
		"neg string":  {"-1.5", -1.5},
		"exponential": {"1e1", 10},
	}
	for name, tc := range ok {
		got, valid := amount(tc.in)
		assert.True(t, valid, name)
		assert.Equal(t, tc.want, got, name)
	}
	for _, in := range []any{nil, "", "abc", true, []any{1}, map[string]any{}} {
		_, valid := amount(in)
		assert.False(t, valid, "%v", in)
	}
}

func TestRef_Unmarshal(t *testing.T) {
	var items []Item
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1},{"id":"abc"},{"id":2.5},{"id":null}]`), &items))
	assert.Equal(t, []Ref{"1", "abc", "2.5", ""}, []Ref{items[0].ID, items[1].ID, items[2].ID, items[3].ID})

	assert.Error(t, json.Unmarshal([]byte(`[{"id":{"x":1}}]`), &items))
}

func TestCreate_LenientItemAmounts(t *testing.T) {
	svc := newTestService(t)

	req := decodeRequest(t, `{
		"customer": {"name":"A","address":"X","phone":"1","email":"a@b.com"},
		"items": [
			{"id":"1","name":"Burger","price":"5","quantity":"2"},
			{"id":"2","name":"Cheese","price":0.75,"quantity":1.5}
		],
		"deliveryLocation": {"id":"n","name":"North","fee":"3.25"},
		"total": 14.375,
		"paymentMethod": "cash"
	}`)
	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, Number(5), o.Items[0].Price)
	assert.Equal(t, Number(2), o.Items[0].Quantity)
	assert.Equal(t, Number(1.5), o.Items[1].Quantity)
	assert.Equal(t, Number(3.25), o.DeliveryLocation.Fee)

	got, err := svc.Get(context.Background(), o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, o.Items, got.Items)
}

func TestNumber_Unmarshal(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"price":" 4.5 ","quantity":null}`), &it))
	assert.Equal(t, Number(4.5), it.Price)
	assert.Equal(t, Number(0), it.Quantity)

	assert.Error(t, json.Unmarshal([]byte(`{"price":"cheap"}`), &it))
	assert.Error(t, json.Unmarshal([]byte(`{"quantity":true}`), &it))
}
