package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Error Taxonomy
// ============================================================================

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyVoted        = errors.New("user has already voted for this map")
	ErrNotVoted            = errors.New("user has not voted for this map")
	ErrStoreConflict       = errors.New("store conflict, retry the operation")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrIndexRequired       = errors.New("store index or schema object required")
	ErrPartiallySucceeded  = errors.New("purchase partially succeeded, reconciliation required")
)

// Not found errors
var (
	ErrMapNotFound     = fmt.Errorf("map %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("credit account %w", ErrNotFound)
)

// Validation errors
var (
	ErrUnsupportedFilter   = fmt.Errorf("%w: unsupported filter field", ErrValidation)
	ErrUnsupportedOperator = fmt.Errorf("%w: unsupported filter operator", ErrValidation)
	ErrInvalidFilterValue  = fmt.Errorf("%w: invalid filter value", ErrValidation)
	ErrInvalidSort         = fmt.Errorf("%w: sort must be recency or popularity", ErrValidation)
	ErrInvalidPageSize     = fmt.Errorf("%w: page size must be positive", ErrValidation)
	ErrPageSizeTooLarge    = fmt.Errorf("%w: page size exceeds maximum", ErrValidation)
	ErrInvalidCursor       = fmt.Errorf("%w: malformed cursor", ErrValidation)
	ErrInvalidTier         = fmt.Errorf("%w: unknown tier", ErrValidation)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrMissingUserID       = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrNotPurchasable      = fmt.Errorf("%w: small maps cannot be purchased", ErrValidation)
	ErrSelfPurchase        = fmt.Errorf("%w: you cannot purchase your own map", ErrValidation)
	ErrNotOwner            = fmt.Errorf("%w: only the owner can modify this map", ErrValidation)
	ErrEmptySearch         = fmt.Errorf("%w: search text is required", ErrValidation)
)

// Reason is the stable code a public operation reports for a failure.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNotFound            Reason = "not found"
	ReasonValidation          Reason = "validation error"
	ReasonNotPurchasable      Reason = "not purchasable"
	ReasonOwnMap              Reason = "own map"
	ReasonInsufficientCredits Reason = "insufficient credits"
	ReasonAlreadyVoted        Reason = "already voted"
	ReasonNotVoted            Reason = "not voted"
	ReasonConflict            Reason = "conflict"
	ReasonUnavailable         Reason = "store unavailable"
	ReasonIndexRequired       Reason = "index required"
	ReasonPartiallySucceeded  Reason = "partially succeeded"
	ReasonInternal            Reason = "internal error"
)

// ReasonOf translates an error into its taxonomy code. Specific validation
// errors that callers must tell apart map to their own code.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrNotPurchasable):
		return ReasonNotPurchasable
	case errors.Is(err, ErrSelfPurchase):
		return ReasonOwnMap
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrInsufficientCredits):
		return ReasonInsufficientCredits
	case errors.Is(err, ErrAlreadyVoted):
		return ReasonAlreadyVoted
	case errors.Is(err, ErrNotVoted):
		return ReasonNotVoted
	case errors.Is(err, ErrStoreConflict):
		return ReasonConflict
	case errors.Is(err, ErrIndexRequired):
		return ReasonIndexRequired
	case errors.Is(err, ErrStoreUnavailable):
		return ReasonUnavailable
	case errors.Is(err, ErrPartiallySucceeded):
		return ReasonPartiallySucceeded
	default:
		return ReasonInternal
	}
}
