package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrTermsNotAccepted blocks submission until the terms box is ticked.
	ErrTermsNotAccepted = errors.New("checkout: terms not accepted")
	// ErrMissingFields blocks submission until name and email are filled.
	ErrMissingFields = errors.New("checkout: missing required fields")
)

// Form is the contact and promo input on the booking page.
type Form struct {
	Name      string `validate:"required"`
	Email     string `validate:"required"`
	PromoCode string
	Agree     bool
}

var validate = validator.New()

// Validate checks the form before any network call: terms first, then the
// presence of name and email.
func (f Form) Validate() error {
	if !f.Agree {
		return ErrTermsNotAccepted
	}
	if err := validate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return ErrMissingFields
		}
		return err
	}
	return nil
}

// FormFromValues reads the posted fields. Values are kept as typed.
func FormFromValues(get func(string) string) Form {
	agree := strings.TrimSpace(get("agree"))
	return Form{
		Name:      get("name"),
		Email:     get("email"),
		PromoCode: get("promo"),
		Agree:     agree == "on" || agree == "true" || agree == "1",
	}
}
