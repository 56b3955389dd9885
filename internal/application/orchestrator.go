package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

// Default loop periods.
const (
	DefaultUIInterval    = 3 * time.Second
	DefaultStockInterval = 30 * time.Second
	DefaultDelayInterval = 60 * time.Second
)

// Intervals holds the period of each background loop.
type Intervals struct {
	UI    time.Duration
	Stock time.Duration
	Delay time.Duration
}

// DefaultIntervals returns the standard 3s/30s/60s periods.
func DefaultIntervals() Intervals {
	return Intervals{UI: DefaultUIInterval, Stock: DefaultStockInterval, Delay: DefaultDelayInterval}
}

// ErrNotRunning is returned by NotifyRefresh once Start has returned.
var ErrNotRunning = errors.New("refresh orchestrator is not running")

// refreshRequest represents an ad-hoc refresh trigger.
type refreshRequest struct {
	done chan error
}

// RefreshOrchestrator drives the stock and delay monitors and the UI refresh
// loop, and fans out refresh notifications to the registered views.
type RefreshOrchestrator struct {
	board     *AlertBoard
	stock     *StockMonitor
	delay     *DelayMonitor
	views     []driven.ViewNotifier
	intervals Intervals
	refreshCh chan refreshRequest
	stopped   chan struct{}
	stopOnce  sync.Once
	opts      options
}

// NewRefreshOrchestrator creates an orchestrator. Views are notified in order
// on every refresh.
func NewRefreshOrchestrator(
	board *AlertBoard,
	stock *StockMonitor,
	delay *DelayMonitor,
	views []driven.ViewNotifier,
	intervals Intervals,
	opts ...Option,
) *RefreshOrchestrator {
	return &RefreshOrchestrator{
		board:     board,
		stock:     stock,
		delay:     delay,
		views:     views,
		intervals: intervals,
		refreshCh: make(chan refreshRequest),
		stopped:   make(chan struct{}),
		opts:      newOptions(opts),
	}
}

// Start runs the monitors on their own goroutines and the UI refresh loop on
// the calling goroutine. It also serves ad-hoc refresh requests. Start blocks
// until ctx is canceled and the monitor loops have returned. An orchestrator
// cannot be restarted.
func (o *RefreshOrchestrator) Start(ctx context.Context) {
	defer o.stopOnce.Do(func() { close(o.stopped) })

	var wg sync.WaitGroup
	if o.stock != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.stock.Run(ctx, o.intervals.Stock)
		}()
	}
	if o.delay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.delay.Run(ctx, o.intervals.Delay)
		}()
	}

	o.opts.logger.Info("refresh orchestrator started",
		"ui_interval", o.intervals.UI,
		"stock_interval", o.intervals.Stock,
		"delay_interval", o.intervals.Delay,
		"views", len(o.views),
	)

	ticker := o.opts.newTicker(o.intervals.UI)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			o.opts.logger.Info("refresh orchestrator stopped")
			return
		case <-ticker.C():
			_ = runGuarded(ctx, "ui_refresh", o.opts.logger, o.refresh)
		case req := <-o.refreshCh:
			req.done <- runGuarded(ctx, "ui_refresh", o.opts.logger, o.refresh)
		}
	}
}

// NotifyRefresh recomputes visibility and notifies every view without waiting
// for the next UI tick. It blocks until the views have been notified or ctx is
// canceled, and fails with ErrNotRunning once Start has returned.
func (o *RefreshOrchestrator) NotifyRefresh(ctx context.Context) error {
	done := make(chan error, 1)
	req := refreshRequest{done: done}

	select {
	case o.refreshCh <- req:
	case <-o.stopped:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-o.stopped:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ToggleStockDetail flips the stock detail toggle and refreshes the views.
func (o *RefreshOrchestrator) ToggleStockDetail(ctx context.Context) (bool, error) {
	expanded := o.board.ToggleStockDetail()
	return expanded, o.NotifyRefresh(ctx)
}

// ToggleDelayDetail flips the delay detail toggle and refreshes the views.
func (o *RefreshOrchestrator) ToggleDelayDetail(ctx context.Context) (bool, error) {
	expanded := o.board.ToggleDelayDetail()
	return expanded, o.NotifyRefresh(ctx)
}

// Snapshot returns the current alert state with visibility derived.
func (o *RefreshOrchestrator) Snapshot() model.AlertSnapshot {
	return o.board.Snapshot(o.opts.now())
}

// refresh is the single "recompute and notify" path for ticks and ad-hoc
// triggers. Every view is notified even when an earlier one fails.
func (o *RefreshOrchestrator) refresh(ctx context.Context) error {
	snapshot := o.Snapshot()

	var errs []error
	for i, v := range o.views {
		if err := notifyView(ctx, v, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("view %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func notifyView(ctx context.Context, v driven.ViewNotifier, snapshot model.AlertSnapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("view panicked: %v", r)
		}
	}()
	return v.NotifyRefresh(ctx, snapshot)
}
