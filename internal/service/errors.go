package service

import "errors"

// Business-rule failures returned to the calling layer as typed results.
// Anything not in this list (or repository's sentinels) is a storage
// failure and gets a generic retry message at the boundary.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTaskOnCooldown    = errors.New("task on cooldown")
	ErrBelowMinimum      = errors.New("amount below minimum withdrawal")
	ErrUnknownReferrer   = errors.New("referrer not found")
	ErrAlreadyPaid       = errors.New("referral bonus already paid")
	ErrAlreadyResolved   = errors.New("withdrawal already resolved")
	ErrAccountBanned     = errors.New("account is banned")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
