package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation is matched by every *InvalidOperationError.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrCycleDetected is returned when the parent relation is not a forest.
	ErrCycleDetected = errors.New("cycle detected in task hierarchy")
)

// NotFoundError reports an operation that referenced an ID absent from the registry.
type NotFoundError struct {
	Kind string // "task", "user", "tag", "custom field"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidOperationError reports a request that is well-formed but not allowed.
type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidOperation) true.
func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func invalidOp(op, format string, args ...any) error {
	return &InvalidOperationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
