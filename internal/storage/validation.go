package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veldhoen/tapster/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidSummary  = errors.New("invalid order summary")
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSummary validates an order summary before persistence.
func validateSummary(summary *model.OrderSummary) error {
	if summary == nil {
		return fmt.Errorf("%w: nil", ErrInvalidSummary)
	}
	if strings.TrimSpace(summary.OrderID) == "" {
		return fmt.Errorf("%w: missing order id", ErrInvalidSummary)
	}
	if summary.TotalItems < 0 || summary.LowConfidenceItems < 0 {
		return fmt.Errorf("%w: negative counts", ErrInvalidSummary)
	}
	if summary.LowConfidenceItems > summary.TotalItems {
		return fmt.Errorf("%w: low-confidence count exceeds total", ErrInvalidSummary)
	}
	if summary.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidSummary)
	}
	return nil
}
