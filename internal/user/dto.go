package user

// CreateBasicRequest payload of create-basic.
// swagger:model CreateBasicRequest
type CreateBasicRequest struct {
	Email    string `json:"email"    binding:"required" example:"ana@example.com"`
	Nickname string `json:"nickname" binding:"required" example:"ana"`
}

// RegisterRequest payload of register.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name  string `json:"name"  binding:"required" example:"Ana Torres"`
	Email string `json:"email" binding:"required" example:"ana@example.com"`
	Phone string `json:"phone" binding:"required" example:"3001234567"`
}

// PatchRequest lists the fields a client may overwrite. Absent fields are
// left untouched; the email cannot be changed.
// swagger:model PatchUserRequest
type PatchRequest struct {
	Name        *string      `json:"name,omitempty"`
	Nickname    *string      `json:"nickname,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Addresses   *[]Address   `json:"addresses,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Response wraps a single user.
// swagger:model UserResponse
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
}
