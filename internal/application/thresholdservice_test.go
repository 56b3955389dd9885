package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/kitchenwatch/internal/application"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

func TestThresholdService_StartsWithDefaults(t *testing.T) {
	svc := application.NewThresholdService(&mockThresholdStore{}, nil)
	assert.Equal(t, model.DefaultThresholds(), svc.Current())
}

func TestThresholdService_Load(t *testing.T) {
	t.Run("fresh store yields defaults", func(t *testing.T) {
		store := &mockThresholdStore{}
		svc := application.NewThresholdService(store, nil)

		got := svc.Load(context.Background())

		assert.Equal(t, model.Thresholds{DelayMinutes: 20, LowStockQuantity: 5}, got)
		require.NotNil(t, store.stored, "store initialises itself on first load")
	})

	t.Run("persisted values", func(t *testing.T) {
		stored := model.Thresholds{DelayMinutes: 12, LowStockQuantity: 2}
		svc := application.NewThresholdService(&mockThresholdStore{stored: &stored}, nil)

		assert.Equal(t, stored, svc.Load(context.Background()))
		assert.Equal(t, stored, svc.Current())
	})

	t.Run("store error falls back to defaults", func(t *testing.T) {
		svc := application.NewThresholdService(&mockThresholdStore{loadErr: errors.New("corrupt")}, nil)
		assert.Equal(t, model.DefaultThresholds(), svc.Load(context.Background()))
	})

	t.Run("invalid persisted values fall back to defaults", func(t *testing.T) {
		bad := model.Thresholds{DelayMinutes: -3, LowStockQuantity: 5}
		store := &mockThresholdStore{stored: &bad}
		svc := application.NewThresholdService(store, nil)

		assert.Equal(t, model.DefaultThresholds(), svc.Load(context.Background()))
		assert.Equal(t, 0, store.saves, "load never rewrites the store")
	})
}

func TestThresholdService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("valid values are persisted and applied", func(t *testing.T) {
		store := &mockThresholdStore{}
		svc := application.NewThresholdService(store, nil)
		next := model.Thresholds{DelayMinutes: 30, LowStockQuantity: 0}

		require.NoError(t, svc.Save(ctx, next))
		assert.Equal(t, next, svc.Current())
		assert.Equal(t, next, *store.stored)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		store := &mockThresholdStore{}
		svc := application.NewThresholdService(store, nil)
		svc.Load(ctx)

		err := svc.Save(ctx, model.Thresholds{DelayMinutes: 0, LowStockQuantity: 5})

		require.ErrorIs(t, err, model.ErrInvalidThresholds)
		assert.Equal(t, model.DefaultThresholds(), svc.Current())
		assert.Equal(t, model.DefaultThresholds(), *store.stored)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("store failure keeps previous values", func(t *testing.T) {
		store := &mockThresholdStore{saveErr: errors.New("read-only filesystem")}
		svc := application.NewThresholdService(store, nil)

		err := svc.Save(ctx, model.Thresholds{DelayMinutes: 10, LowStockQuantity: 3})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persist thresholds")
		assert.Equal(t, model.DefaultThresholds(), svc.Current())
	})
}
