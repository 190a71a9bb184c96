// Package validation checks request and config values before a job runs.
//
// Struct tag validation uses go-playground/validator and reports field names
// from json tags. The fluent Validator collects several field errors and
// turns them into a single INVALID_INPUT AppError.
//
//	v := validation.New()
//	v.Required("videoUrl", url).MaxLength("videoUrl", url, 2048)
//	if err := v.Validate(); err != nil { ... }
package validation
