package product

import "mime/multipart"

// CreateInput carries the multipart form of a product upload. Price stays a
// string until validated.
type CreateInput struct {
	Name        string                `form:"name"`
	Description string                `form:"description"`
	Price       string                `form:"price"`
	Category    string                `form:"category"`
	Image       *multipart.FileHeader `form:"image"`
}

// Response wraps a created product.
// swagger:model ProductResponse
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Product *Product `json:"product"`
}
