package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// ThresholdSource is read by the monitors on every tick.
type ThresholdSource interface {
	Current() model.Thresholds
}

// ThresholdService holds the thresholds in effect. It keeps a mutex-protected
// copy so monitors never hit storage, and swaps it only after a validated save
// has been persisted.
type ThresholdService struct {
	mu      sync.RWMutex
	current model.Thresholds
	store   driven.ThresholdStore
	logger  *slog.Logger
}

// NewThresholdService creates a service that starts with the defaults until
// Load is called.
func NewThresholdService(store driven.ThresholdStore, logger *slog.Logger) *ThresholdService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThresholdService{
		current: model.DefaultThresholds(),
		store:   store,
		logger:  logger,
	}
}

// Load reads the persisted thresholds into memory. A storage failure is
// non-fatal: the defaults stay in effect and the store is left untouched.
func (s *ThresholdService) Load(ctx context.Context) model.Thresholds {
	loaded, err := s.store.Load(ctx)
	if err == nil {
		if verr := loaded.Validate(); verr != nil {
			err = verr
		}
	}
	if err != nil {
		s.logger.Warn("failed to load thresholds, using defaults", "error", err)
		loaded = model.DefaultThresholds()
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	s.logger.Info("thresholds loaded",
		"delay_minutes", loaded.DelayMinutes,
		"low_stock_quantity", loaded.LowStockQuantity,
	)
	return loaded
}

// Current returns the thresholds in effect.
func (s *ThresholdService) Current() model.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates and persists thresholds, then makes them current. On any
// error the previous thresholds remain in effect.
func (s *ThresholdService) Save(ctx context.Context, thresholds model.Thresholds) error {
	if err := thresholds.Validate(); err != nil {
		return err
	}

	if err := s.store.Save(ctx, thresholds); err != nil {
		return fmt.Errorf("persist thresholds: %w", err)
	}

	s.mu.Lock()
	s.current = thresholds
	s.mu.Unlock()

	s.logger.Info("thresholds updated",
		"delay_minutes", thresholds.DelayMinutes,
		"low_stock_quantity", thresholds.LowStockQuantity,
	)
	return nil
}
