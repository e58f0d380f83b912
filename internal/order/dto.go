package order

// CustomerInput payload of the order customer.
// swagger:model CustomerInput
type CustomerInput struct {
	Name    string `json:"name"    example:"Ana Torres"`
	Address string `json:"address" example:"Calle 10 #4-20"`
	Phone   string `json:"phone"   example:"3001234567"`
	Email   string `json:"email"   example:"ana@example.com"`
}

// CreateOrderRequest payload of order creation. Amounts may be JSON numbers
// or numeric strings; anything sent as fulfilled is ignored.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Customer         *CustomerInput    `json:"customer"`
	Items            []Item            `json:"items"`
	Subtotal         any               `json:"subtotal,omitempty"    swaggertype:"number" example:"10"`
	DeliveryFee      any               `json:"deliveryFee,omitempty" swaggertype:"number" example:"0"`
	DeliveryLocation *DeliveryLocation `json:"deliveryLocation,omitempty"`
	Total            any               `json:"total"                 swaggertype:"number" example:"10"`
	PaymentMethod    string            `json:"paymentMethod"         example:"cash"`
	PaymentReference string            `json:"paymentReference,omitempty"`
	PaymentStatus    string            `json:"paymentStatus,omitempty"`
	OrderReference   string            `json:"orderReference,omitempty"`
}

// UpdateStatusRequest payload of PATCH /api/orders/:id.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Fulfilled *bool `json:"fulfilled" example:"true"`
}

// CreateResponse is returned by order creation.
// swagger:model CreateOrderResponse
type CreateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId"`
	Order   *Order `json:"order"`
}

// Response wraps a single order.
// swagger:model OrderResponse
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Order   *Order `json:"order"`
}
