package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Ticker is the subset of *time.Ticker the background loops depend on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc creates a Ticker that fires every d. Tests inject manual
// tickers to step loops deterministically.
type NewTickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Option configures monitors and the refresh orchestrator.
type Option func(*options)

type options struct {
	now       func() time.Time
	newTicker NewTickerFunc
	logger    *slog.Logger
	location  *time.Location
}

func newOptions(opts []Option) options {
	o := options{
		now:       time.Now,
		newTicker: newStdTicker,
		logger:    slog.Default(),
		location:  time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTicker overrides how loop tickers are created.
func WithTicker(f NewTickerFunc) Option {
	return func(o *options) { o.newTicker = f }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLocation sets the time zone used to interpret backend order timestamps,
// which carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// runEvery runs fn immediately and then on every tick until ctx is canceled.
// Errors and panics inside fn are logged; the loop always waits for the next
// tick rather than exiting.
func runEvery(ctx context.Context, name string, interval time.Duration, o options, fn func(context.Context) error) {
	runGuarded(ctx, name, o.logger, fn)

	ticker := o.newTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("loop stopped", "loop", name)
			return
		case <-ticker.C():
			runGuarded(ctx, name, o.logger, fn)
		}
	}
}

// runGuarded invokes fn, converting a panic into a logged error.
func runGuarded(ctx context.Context, name string, logger *slog.Logger, fn func(context.Context) error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic in %s: %v", name, v)
			logger.Error("loop body panicked", "loop", name, "panic", v)
		}
	}()

	if err = fn(ctx); err != nil {
		logger.Error("loop iteration failed", "loop", name, "error", err)
	}
	return err
}
