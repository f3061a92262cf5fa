package services

import (
	"errors"

	"github.com/lib/pq"
)

// Service errors. Handlers translate these to HTTP statuses with errors.Is;
// NotFound, Forbidden and InvalidState are kept distinct even where the HTTP
// layer maps them to the same code.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("not authorized")
	ErrInvalidState    = errors.New("invalid state for this operation")
	ErrConflict        = errors.New("conflict")
	ErrSlotUnavailable = errors.New("time slot not available")
	ErrWorkerMismatch  = errors.New("worker not found or does not provide this service")
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
