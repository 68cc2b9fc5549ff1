package rewards

import "errors"

var (
	// ErrNoCardsAvailable means the user has no cards to choose from.
	ErrNoCardsAvailable = errors.New("no cards available")
	// ErrMerchantNotFound means the merchant name has no catalog entry.
	ErrMerchantNotFound = errors.New("merchant not found")
	// ErrInvalidAmount means the purchase amount was negative, NaN or infinite.
	ErrInvalidAmount = errors.New("purchase amount must be a finite non-negative number")
)
