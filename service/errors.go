package service

import "errors"

// Error kinds surfaced by the raffle lifecycle and treasury. Callers match
// with errors.Is; every operation wraps these with call-specific detail.
var (
	// ErrUnauthorized is returned when a privileged-only operation is
	// called by a non-operator, or a claim by a non-winner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned for an unknown raffle identifier.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference is returned for a zero asset or collection
	// reference.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrTemporalViolation is returned when an operation is attempted
	// outside its valid time window.
	ErrTemporalViolation = errors.New("temporal violation")

	// ErrCapacityExceeded is returned when the ticket cap would be hit.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInsufficientAuthorization is returned when the payer has not
	// pre-approved enough of the payment asset.
	ErrInsufficientAuthorization = errors.New("insufficient authorization")

	// ErrOwnershipMismatch is returned when a custodial transfer is
	// attempted by a non-owner.
	ErrOwnershipMismatch = errors.New("ownership mismatch")

	// ErrInvalidArgument is returned for arguments that can never be
	// valid, like a zero ticket count or a past end timestamp.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReentrantCall is returned when a guarded operation is re-entered
	// before the first call released its lock token.
	ErrReentrantCall = errors.New("reentrant call")
)
