package domain

import (
	"context"
	"errors"
)

// Common errors used throughout the application.
var (
	ErrConfigFormat      = errors.New("invalid argument")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrConfigCycle       = errors.New("named set cycle")
	ErrInvalidExpression = errors.New("invalid set expression")
	ErrRouting           = errors.New("routing failed")
	ErrDataStore         = errors.New("data store error")
)

// IsRecoverable reports whether err only affects the wiki it was raised for.
// Routing failures, data store failures and query timeouts are skipped per
// wiki; everything else means the report as a whole cannot be trusted.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrDataStore) ||
		errors.Is(err, ErrRouting) ||
		errors.Is(err, context.DeadlineExceeded)
}
