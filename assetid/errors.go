package assetid

import "errors"

var (
	// ErrInvalidUniqueID unique id is not 8 lowercase hex characters
	ErrInvalidUniqueID = errors.New("assetid: invalid unique id")

	// ErrMissingRequiredField tier needs a category or season code that was not given
	ErrMissingRequiredField = errors.New("assetid: missing required field")

	// ErrInvalidLength assembled identifier exceeds the on-chain field limit
	ErrInvalidLength = errors.New("assetid: invalid length")

	// ErrInvalidTier tier is not one of the known tiers
	ErrInvalidTier = errors.New("assetid: invalid tier")
)
