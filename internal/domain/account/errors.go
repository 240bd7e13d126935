package account

import "errors"

var (
	// ErrStoreUnavailable marks a scan or read that could not reach the account store.
	ErrStoreUnavailable = errors.New("account store unavailable")
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidPlan      = errors.New("invalid plan")
	ErrInvalidUID       = errors.New("invalid account uid")
)
