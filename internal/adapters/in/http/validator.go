package http

import (
	"github.com/go-playground/validator/v10"
)

// requestValidator plugs validator/v10 into echo.Context.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
