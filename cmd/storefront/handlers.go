package main

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/storefront/internal/apperr"
)

// bindError reports a failed body bind. Missing required fields get the
// caller's message; anything else is a malformed body.
func bindError(err error, required string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.Invalid(required)
	}
	return apperr.Wrap(apperr.InvalidInput, "Invalid JSON body", err)
}

// MessageResponse is a bare success envelope.
// swagger:model MessageResponse
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
