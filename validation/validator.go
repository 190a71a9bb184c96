package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/scribekit/errors"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field errors across chained checks so a caller can
// report every problem with a request at once.
type Validator struct {
	errs []FieldError
}

// New returns an empty Validator.
func New() *Validator { return &Validator{} }

// Custom records message against field unless ok holds. Every other check
// is built on it.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Message: message})
	}
	return v
}

// Required rejects blank strings.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// MaxLength bounds a string's byte length.
func (v *Validator) MaxLength(field, value string, limit int) *Validator {
	return v.Custom(len(value) <= limit, field, fmt.Sprintf("must be %d characters or less", limit))
}

// MaxBytes bounds a payload size.
func (v *Validator) MaxBytes(field string, size, limit int64) *Validator {
	return v.Custom(size <= limit, field, fmt.Sprintf("exceeds the %d byte limit", limit))
}

// OneOf restricts value to allowed. An empty value passes; pair with
// Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	ok := value == "" || slices.Contains(allowed, value)
	return v.Custom(ok, field, "must be one of: "+strings.Join(allowed, ", "))
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Errors returns the failed checks in the order they ran.
func (v *Validator) Errors() []FieldError { return v.errs }

// Validate folds the failures into one INVALID_INPUT error with the field
// list under details.fields, or returns nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return fieldsError(v.errs)
}

func fieldsError(fields []FieldError) *errors.AppError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}
