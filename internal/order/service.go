// Package order places orders and tracks their fulfilment.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/docstore"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeEmail matches the form user emails are stored in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create validates req and stores a new, unfulfilled order. Totals are taken
// as sent; subtotal falls back to total and deliveryFee to zero.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if req.Customer == nil {
		return nil, apperr.Invalid("Customer information is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Invalid("Order must contain at least one item")
	}
	c := Customer{
		Name:    strings.TrimSpace(req.Customer.Name),
		Address: strings.TrimSpace(req.Customer.Address),
		Phone:   strings.TrimSpace(req.Customer.Phone),
		Email:   NormalizeEmail(req.Customer.Email),
	}
	if c.Email == "" {
		return nil, apperr.Invalid("Customer email is required")
	}
	if c.Name == "" || c.Address == "" || c.Phone == "" {
		return nil, apperr.Invalid("Customer name, address and phone are required")
	}
	total, ok := amount(req.Total)
	if !ok {
		return nil, apperr.Invalid("Valid total is required")
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return nil, apperr.Invalid("Payment method is required")
	}

	subtotal, ok := amount(req.Subtotal)
	if !ok {
		subtotal = total
	}
	fee, ok := amount(req.DeliveryFee)
	if !ok {
		fee = 0
	}
	status := strings.TrimSpace(req.PaymentStatus)
	if status == "" {
		status = PaymentPending
	}

	o := &Order{
		Customer:         c,
		Items:            req.Items,
		Subtotal:         subtotal,
		DeliveryFee:      fee,
		DeliveryLocation: req.DeliveryLocation,
		Total:            total,
		PaymentMethod:    method,
		PaymentReference: req.PaymentReference,
		PaymentStatus:    status,
		OrderReference:   req.OrderReference,
		Fulfilled:        false,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, apperr.Store("Failed to create order", err)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, email string) ([]Order, error) {
	out, err := s.repo.List(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Store("Failed to fetch orders", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	if !docstore.ValidID(id) {
		return nil, apperr.Invalid("Invalid order ID")
	}
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("Order not found")
	}
	if err != nil {
		return nil, apperr.Store("Failed to fetch order", err)
	}
	return o, nil
}

// SetFulfilled sets the fulfilment flag. Repeating the call is harmless.
func (s *Service) SetFulfilled(ctx context.Context, id string, fulfilled *bool) (*Order, error) {
	if !docstore.ValidID(id) {
		return nil, apperr.Invalid("Invalid order ID")
	}
	if fulfilled == nil {
		return nil, apperr.Invalid("Fulfilled status is required")
	}
	o, err := s.repo.SetFulfilled(ctx, strings.TrimSpace(id), *fulfilled)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Missing("Order not found")
	}
	if err != nil {
		return nil, apperr.Store("Failed to update order", err)
	}
	return o, nil
}

// amount reads a finite number sent as a JSON number or numeric string.
func amount(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
