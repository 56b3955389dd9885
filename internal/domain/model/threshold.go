package model

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned when a threshold save is rejected. Callers
// must keep the previously applied values.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Default threshold values used when nothing has been persisted yet.
const (
	DefaultDelayMinutes     = 20
	DefaultLowStockQuantity = 5
)

// Thresholds holds the user-configurable limits that control when alerts are raised.
type Thresholds struct {
	// DelayMinutes is the age an active order must reach before it is reported as delayed.
	DelayMinutes int
	// LowStockQuantity is the available quantity at or below which an ingredient is low.
	LowStockQuantity int
}

// DefaultThresholds returns the hard-coded defaults used when no configuration
// record exists.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DelayMinutes:     DefaultDelayMinutes,
		LowStockQuantity: DefaultLowStockQuantity,
	}
}

// Validate reports whether the thresholds may be applied. The returned error
// wraps ErrInvalidThresholds.
func (t Thresholds) Validate() error {
	if t.DelayMinutes <= 0 {
		return fmt.Errorf("%w: delay minutes must be positive, got %d", ErrInvalidThresholds, t.DelayMinutes)
	}
	if t.LowStockQuantity < 0 {
		return fmt.Errorf("%w: low stock quantity must not be negative, got %d", ErrInvalidThresholds, t.LowStockQuantity)
	}
	return nil
}
