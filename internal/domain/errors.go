// Package domain holds error types shared by the feature packages and mapped to
// HTTP status codes by the handlers.
package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a request carries no valid user identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrValidation is returned when caller input is rejected before any store call.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrNotFound is returned when a resource does not exist.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService wraps a failure reported by the remote data store.
// The store message is kept verbatim so it can be shown to the user.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}
