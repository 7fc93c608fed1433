package services

import (
	"errors"
	"fmt"

	"salon_backend/internal/repositories"
)

// Error categories. Every error a service returns to a handler either wraps
// one of these or is treated as internal.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrClientNotFound  = fmt.Errorf("client %w", ErrNotFound)
	ErrServiceNotFound = fmt.Errorf("service %w", ErrNotFound)
	ErrVisitNotFound   = fmt.Errorf("visit %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrPhoneExists       = fmt.Errorf("%w: a client with this phone number already exists", ErrConflict)
	ErrEmailExists       = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrServiceNameExists = fmt.Errorf("%w: a service with this name already exists", ErrConflict)

	ErrServiceInactive    = fmt.Errorf("%w: service is not active", ErrInvalidState)
	ErrVisitCancelled     = fmt.Errorf("%w: visit is already cancelled", ErrInvalidState)
	ErrClientHasVisits    = fmt.Errorf("%w: cannot delete client with visit history", ErrInvalidState)
	ErrNoMarketingConsent = fmt.Errorf("%w: client has not consented to receive marketing messages", ErrInvalidState)

	ErrInvalidDate        = fmt.Errorf("%w: invalid date format, use YYYY-MM-DD or RFC3339", ErrInvalidInput)
	ErrInvalidDateRange   = fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
	ErrInvalidSearch      = fmt.Errorf("%w: invalid search pattern", ErrInvalidInput)
	ErrInvalidExportType  = fmt.Errorf("%w: invalid export type", ErrInvalidInput)
	ErrEmptyVisit         = fmt.Errorf("%w: a visit needs at least one service", ErrInvalidInput)
	ErrNegativeAmount     = fmt.Errorf("%w: amounts cannot be negative", ErrInvalidInput)
	ErrLoyaltyUpdateEmpty = fmt.Errorf("%w: provide points or adjustment", ErrInvalidInput)
)

// mapRepoError translates repository sentinels for the given entity. Unknown
// errors pass through and end up as internal errors.
func mapRepoError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return notFound
	case errors.Is(err, repositories.ErrInvalidPattern):
		return fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	case errors.Is(err, repositories.ErrForeignKey):
		return fmt.Errorf("%w: referenced record does not exist", ErrInvalidInput)
	default:
		return err
	}
}
