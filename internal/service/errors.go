package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidID         = errors.New("invalid identifier")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidDelta      = errors.New("delta must be a non-zero integer")
	ErrInvalidFood       = errors.New("invalid food payload")
	ErrFoodNotFound      = errors.New("food not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("caller is not allowed to modify this record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// sameIdentity is the single authorization predicate used by every
// ownership and buyer-only check. Emails compare case-insensitively.
func sameIdentity(caller, owner string) bool {
	return caller != "" && strings.EqualFold(caller, owner)
}
