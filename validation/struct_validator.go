package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/kbukum/scribekit/errors"
)

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

// fieldName names a field the way it appears on the wire or in config:
// json tag, then mapstructure tag, then snake_case of the Go name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "mapstructure"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(f.Name)
}

// Validate checks s against its `validate` tags. Failures come back as one
// INVALID_INPUT AppError listing every field.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Message: describe(fe)}
	}
	return fieldsError(fields)
}

var tagMessages = map[string]string{
	"required": "is required",
	"gt":       "must be greater than ",
	"gte":      "must be greater than or equal to ",
	"lt":       "must be less than ",
	"lte":      "must be less than or equal to ",
	"url":      "must be a valid URL",
	"http_url": "must be a valid URL",
	"oneof":    "must be one of: ",
	"dir":      "must be an existing directory",
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		bound := "at least "
		if fe.Tag() == "max" {
			bound = "at most "
		}
		msg := "must be " + bound + fe.Param()
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			msg += " characters"
		}
		return msg
	}
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		msg += fe.Param()
	}
	return msg
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
