package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrPackageNotFound     = errors.New("package not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal request not found")
	ErrCommissionNotFound  = errors.New("commission not found")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrWithdrawalProcessed = errors.New("withdrawal request already processed")
	ErrReservationConflict = errors.New("commission balance changed, please retry")
	ErrInvalidTransition   = errors.New("invalid commission status transition")
)

// ValidationError carries per-field messages back to the handler layer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
