package domain

import "errors"

var (
	ErrValidation            = errors.New("validation error")
	ErrDuplicateIdentity     = errors.New("email already exists")
	ErrAlreadyRated          = errors.New("order already rated by this user")
	ErrNotFound              = errors.New("not found")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidLineItem       = errors.New("invalid line item")
	ErrEmptyOrder            = errors.New("order has no line items")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrSelfDeletionForbidden = errors.New("cannot delete the currently authenticated account")
	ErrAlreadySettled        = errors.New("order already settled")
	ErrForbidden             = errors.New("forbidden")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

// Kind names the error class of err for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyOrder):
		return "validation"
	case errors.Is(err, ErrDuplicateIdentity), errors.Is(err, ErrAlreadyRated), errors.Is(err, ErrAlreadySettled):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidLineItem), errors.Is(err, ErrInvalidTransition):
		return "business_rule"
	case errors.Is(err, ErrSelfDeletionForbidden), errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "internal"
}
