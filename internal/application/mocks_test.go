package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/kitchenwatch/internal/application"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

// --- Mock implementations ---

type mockInventory struct {
	mu    sync.Mutex
	items []model.InventoryItem
	err   error
	panic bool
	calls int
}

func (m *mockInventory) AllItems(_ context.Context) ([]model.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.panic {
		m.panic = false
		panic("inventory exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.InventoryItem(nil), m.items...), nil
}

func (m *mockInventory) set(items ...model.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

func (m *mockInventory) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockOrders struct {
	mu     sync.Mutex
	orders []model.Order
	err    error
	calls  int
}

func (m *mockOrders) ActiveOrders(_ context.Context) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Order(nil), m.orders...), nil
}

func (m *mockOrders) set(orders ...model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = orders
}

func (m *mockOrders) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockThresholdStore struct {
	stored  *model.Thresholds
	loadErr error
	saveErr error
	saves   int
}

func (m *mockThresholdStore) Load(_ context.Context) (model.Thresholds, error) {
	if m.loadErr != nil {
		return model.Thresholds{}, m.loadErr
	}
	if m.stored == nil {
		d := model.DefaultThresholds()
		m.stored = &d
	}
	return *m.stored, nil
}

func (m *mockThresholdStore) Save(_ context.Context, t model.Thresholds) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.stored = &t
	return nil
}

// fixedThresholds is a ThresholdSource whose value tests change directly.
type fixedThresholds struct {
	mu sync.Mutex
	t  model.Thresholds
}

func (f *fixedThresholds) Current() model.Thresholds {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fixedThresholds) set(t model.Thresholds) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

type recordingSink struct {
	mu     sync.Mutex
	events []model.AlertEvent
	err    error
}

func (r *recordingSink) Record(_ context.Context, events []model.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return r.err
}

func (r *recordingSink) all() []model.AlertEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AlertEvent(nil), r.events...)
}

type recordingView struct {
	mu        sync.Mutex
	snapshots []model.AlertSnapshot
	err       error
	panic     bool
}

func (r *recordingView) NotifyRefresh(_ context.Context, s model.AlertSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
	if r.panic {
		panic("view exploded")
	}
	return r.err
}

func (r *recordingView) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recordingView) last() model.AlertSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[len(r.snapshots)-1]
}

// --- Manual tickers ---

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

// tickers hands out one manual ticker per interval so a test can fire each
// loop independently.
type tickers struct {
	mu         sync.Mutex
	byInterval map[time.Duration]*manualTicker
}

func newTickers() *tickers {
	return &tickers{byInterval: make(map[time.Duration]*manualTicker)}
}

func (tk *tickers) factory() application.NewTickerFunc {
	return func(d time.Duration) application.Ticker {
		tk.mu.Lock()
		defer tk.mu.Unlock()
		mt := &manualTicker{ch: make(chan time.Time)}
		tk.byInterval[d] = mt
		return mt
	}
}

// fire blocks until the loop owning the ticker for d has received a tick.
func (tk *tickers) fire(t *testing.T, d time.Duration) {
	t.Helper()
	var mt *manualTicker
	require.Eventually(t, func() bool {
		tk.mu.Lock()
		defer tk.mu.Unlock()
		mt = tk.byInterval[d]
		return mt != nil
	}, time.Second, time.Millisecond)

	select {
	case mt.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatalf("ticker %s was not read", d)
	}
}

// --- Helpers ---

var testNow = time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)

func stamp(age time.Duration) string {
	return testNow.Add(-age).Format(model.OrderTimestampLayout)
}

func order(id int, status model.OrderStatus, age time.Duration) model.Order {
	return model.Order{ID: id, TableNumber: id % 20, Status: status, CreatedAt: stamp(age)}
}

func thresholds(delay, stock int) *fixedThresholds {
	return &fixedThresholds{t: model.Thresholds{DelayMinutes: delay, LowStockQuantity: stock}}
}

func alertIDs(alerts []model.DelayAlert) []int {
	ids := make([]int, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.OrderID)
	}
	return ids
}
