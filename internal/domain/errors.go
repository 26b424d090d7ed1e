package domain

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeInternal    ErrorType = "internal"
)

// Error is the structured error carried across component and engine
// boundaries. Details hold machine-readable context for logs and for the
// execution record.
type Error struct {
	Type    ErrorType
	Message string
	Details map[string]interface{}
}

func (e Error) Error() string {
	return e.Message
}

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrClosed       = errors.New("storage closed")
)

func NewNotFoundError(resource, id string) Error {
	return Error{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(message string, details map[string]interface{}) Error {
	return Error{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: details,
	}
}

func NewStorageError(op, key string, err error) Error {
	return Error{
		Type:    ErrorTypeInternal,
		Message: fmt.Sprintf("storage %s failed for key %s", op, key),
		Details: map[string]interface{}{
			"op":    op,
			"key":   key,
			"error": err.Error(),
		},
	}
}

func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var domainErr Error
	return errors.As(err, &domainErr) && domainErr.Type == ErrorTypeNotFound
}

func IsValidation(err error) bool {
	var domainErr Error
	return errors.As(err, &domainErr) && domainErr.Type == ErrorTypeValidation
}

// ExecutionPanicError marks a recovered panic from a component executor so
// the scheduler can record it without crashing the run.
type ExecutionPanicError struct {
	ComponentID string
	PanicValue  interface{}
	StackTrace  string
}

func (e *ExecutionPanicError) Error() string {
	return fmt.Sprintf("component %s panicked: %v", e.ComponentID, e.PanicValue)
}
