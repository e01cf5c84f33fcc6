// Package validation holds the field rules applied to lead contact data, both
// when a visitor submits the public form and when staff edit a stored lead.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names used as FieldErrors keys.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

// Messages shown next to an invalid field.
const (
	NameMessage  = "Name must be at least 2 characters."
	EmailMessage = "Please enter a valid email address."
	PhoneMessage = "Please enter a valid phone number."
)

// PhonePattern is deliberately loose: an optional leading +, an optional
// parenthesised country or area code, then digits and common separators.
var PhonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{1,4}[)]?[-\s./0-9]*$`)

const (
	nameRule  = "min=2"
	emailRule = "email"
	phoneRule = "phone"
)

var messages = map[string]string{ //nolint: gochecknoglobals
	FieldName:  NameMessage,
	FieldEmail: EmailMessage,
	FieldPhone: PhoneMessage,
}

var validate = newValidator() //nolint: gochecknoglobals

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	if err := v.RegisterValidation(phoneRule, func(fl validator.FieldLevel) bool {
		return PhonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Contact is the contact data a visitor enters on the form.
type Contact struct {
	Name  string `json:"name" validate:"min=2"`
	Email string `json:"email" validate:"email"`
	Phone string `json:"phone" validate:"phone"`
}

// FieldErrors maps a field name to the message describing why it is invalid.
type FieldErrors map[string]string

// Error lists the invalid fields in a stable order.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}

	return "invalid fields: " + strings.Join(parts, "; ")
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims every field and lower-cases the email.
func Normalize(c Contact) Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: NormalizeEmail(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

// Validate checks c against the contact rules and returns one message per
// invalid field, or nil when every field is valid. Callers should Normalize
// first.
func Validate(c Contact) FieldErrors {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	return toFieldErrors(err)
}

func toFieldErrors(err error) FieldErrors {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		// only InvalidValidationError gets here, which means a programming error
		panic(err)
	}

	out := make(FieldErrors, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = messages[fe.Field()]
	}

	return out
}

// ValidatePatch checks the fields present in a partial update. Nil pointers
// are skipped, so an empty patch is always valid.
func ValidatePatch(name, email, phone *string) FieldErrors {
	out := FieldErrors{}
	check := func(field string, value *string, rule string) {
		if value == nil {
			return
		}
		if err := validate.Var(*value, rule); err != nil {
			out[field] = messages[field]
		}
	}
	check(FieldName, name, nameRule)
	check(FieldEmail, email, emailRule)
	check(FieldPhone, phone, phoneRule)

	if len(out) == 0 {
		return nil
	}

	return out
}
