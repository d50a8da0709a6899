// Package validator validates request and usecase input structs.
//
// Rules are declared with `validate` struct tags; failures are returned as a
// field-to-message map keyed in snake_case.
package validator

// Validator validates a struct value.
type Validator interface {
	Validate(data any) error
}
