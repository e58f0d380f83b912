package order

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MikeMC777/storefront/internal/docstore"
)

// Collection is the document collection orders live in.
const Collection = "orders"

// PaymentPending is the payment status of an order created without one.
const PaymentPending = "pending"

type Customer struct {
	Name    string `bson:"name"    json:"name"`
	Address string `bson:"address" json:"address"`
	Phone   string `bson:"phone"   json:"phone"`
	Email   string `bson:"email"   json:"email"`
}

// Ref is a client-side identifier. Clients send either a JSON string or a
// number; both are kept as text.
type Ref string

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ref must be a string or number: %w", err)
	}
	*r = Ref(n.String())
	return nil
}

// Number is an item amount sent as a JSON number or a numeric string.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	f, ok := amount(v)
	if !ok {
		return fmt.Errorf("amount must be a number or numeric string, got %s", b)
	}
	*n = Number(f)
	return nil
}

type Item struct {
	ID       Ref    `bson:"id"       json:"id"`
	Name     string `bson:"name"     json:"name"`
	Price    Number `bson:"price"    json:"price"`
	Quantity Number `bson:"quantity" json:"quantity"`
}

type DeliveryLocation struct {
	ID   Ref    `bson:"id"   json:"id"`
	Name string `bson:"name" json:"name"`
	Fee  Number `bson:"fee"  json:"fee"`
}

// Order is immutable after creation apart from Fulfilled.
type Order struct {
	docstore.Meta `bson:",inline"`

	Customer         Customer          `bson:"customer"                   json:"customer"`
	Items            []Item            `bson:"items"                      json:"items"`
	Subtotal         float64           `bson:"subtotal"                   json:"subtotal"`
	DeliveryFee      float64           `bson:"deliveryFee"                json:"deliveryFee"`
	DeliveryLocation *DeliveryLocation `bson:"deliveryLocation,omitempty" json:"deliveryLocation,omitempty"`
	Total            float64           `bson:"total"                      json:"total"`
	PaymentMethod    string            `bson:"paymentMethod"              json:"paymentMethod"`
	PaymentReference string            `bson:"paymentReference"           json:"paymentReference"`
	PaymentStatus    string            `bson:"paymentStatus"              json:"paymentStatus"`
	OrderReference   string            `bson:"orderReference"             json:"orderReference"`
	Fulfilled        bool              `bson:"fulfilled"                  json:"fulfilled"`
}
