package domain

import "fmt"

// ValidationError reports user input that cannot be accepted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements the handler error-code convention.
func (e *ValidationError) Code() string { return "validation" }

// StoreError wraps a failure of the record store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Code implements the handler error-code convention.
func (e *StoreError) Code() string { return "store" }
