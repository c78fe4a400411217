package services

import (
	"errors"
	"fmt"
)

// State-conflict errors represent legitimate concurrent or temporal outcomes,
// not bugs. Controllers map each one to a distinct response code so the
// client can react (disable a button, re-request a token, show stock state).
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidReward      = errors.New("unknown reward kind")
	ErrInvalidFeedKind    = errors.New("unknown feed kind")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrTokenMismatch      = errors.New("token does not match redemption record")
	ErrAlreadyConsumed    = errors.New("redemption already consumed")
	ErrExpired            = errors.New("redemption expired")
	ErrNotFound           = errors.New("record not found")
	ErrNoPointsEarned     = errors.New("purchase total too small to earn points")
)

// NoStockError signals which feed item kind is exhausted.
type NoStockError struct {
	Kind string
}

func (e *NoStockError) Error() string {
	return fmt.Sprintf("no %s left to feed", e.Kind)
}
