// Package validator validates request structs and reports failures as a
// field-to-message map keyed by snake_case field names.
package validator

// Validator checks a struct against its `validate` tags.
type Validator interface {
	Validate(data any) error
}
