// Package fallback runs entity reads and writes against the document
// store first and the relational store second, and converts both
// backends' rows into one canonical record shape.
package fallback

import (
	"context"
	"errors"

	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

const (
	BackendDocument   = "document"
	BackendRelational = "relational"
)

// Try runs primary and returns its result unless the backend itself
// failed. A clean not-found from a healthy primary is authoritative and
// never retried on the secondary; only infrastructure errors fall
// through. A nil secondary means the operation is document-only.
func Try[T any](ctx context.Context, log *logger.Logger, op string,
	primary func(ctx context.Context) (T, error),
	secondary func(ctx context.Context) (T, error)) (T, string, error) {

	result, err := primary(ctx)
	if err == nil {
		return result, BackendDocument, nil
	}
	if !shouldFallBack(err) || secondary == nil {
		var zero T
		return zero, BackendDocument, err
	}

	log.Warn("primary store failed, falling back", "op", op, "error", err)
	result, err = secondary(ctx)
	if err != nil {
		var zero T
		return zero, BackendRelational, err
	}
	return result, BackendRelational, nil
}

// shouldFallBack distinguishes backend failure from a domain answer.
func shouldFallBack(err error) bool {
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrInvalidArgument),
		errors.Is(err, apperr.ErrUnauthorized):
		return false
	}
	return true
}
