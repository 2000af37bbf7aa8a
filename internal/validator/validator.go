package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "github.com/vendorgate/vendorgate/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})

	return validate
}

// ValidateRequest validates a request struct against its validate tags.
func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation)
	}

	return nil
}
