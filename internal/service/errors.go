package service

import "fmt"

// NotFoundError means the addressed resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// InvalidArgumentError is a request that is well-formed but cannot be
// applied, such as a duplicate email.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

// ValidationError maps request fields to the constraint each one failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation failed (%d fields)", len(e.Fields))
}

var (
	ErrUserNotFound = &NotFoundError{Resource: "User"}
	ErrPostNotFound = &NotFoundError{Resource: "Post"}

	ErrEmailExists    = &InvalidArgumentError{Message: "Email already exists"}
	ErrNothingToApply = &InvalidArgumentError{Message: "No valid data to update"}
	ErrNameRequired   = &InvalidArgumentError{Message: "Name parameter is required"}
	ErrTitleRequired  = &InvalidArgumentError{Message: "Title parameter is required"}
	ErrUnknownAuthor  = &InvalidArgumentError{Message: "User not found"}
)
