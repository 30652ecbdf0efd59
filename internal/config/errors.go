package config

import "fmt"

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
