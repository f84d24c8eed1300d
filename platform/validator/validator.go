// Package validator wraps go-playground/validator for request DTOs. Modules
// add their own tags with RegisterValidation.
package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// RegisterValidation adds a string tag checked by pred. Call it during
// startup only.
func (val *Validator) RegisterValidation(tag string, pred func(string) bool) error {
	return val.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pred(fl.Field().String())
	})
}

// FieldErrors maps each failing field to the tag it failed. Errors that are
// not validation errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
