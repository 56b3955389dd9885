package model

import (
	"fmt"
	"strings"
	"time"
)

// OrderTimestampLayout is the creation timestamp format emitted by the POS backend.
const OrderTimestampLayout = "2006-01-02 15:04:05"

// digitalTableNumber is the virtual table used for app orders.
const digitalTableNumber = 99

// OrderItem is one line of an order.
type OrderItem struct {
	Name  string
	Price float64
}

// Order is an order as read from the POS backend. It is read-only to this service.
type Order struct {
	ID                 int
	TableNumber        int
	DigitalOrderNumber *int
	Status             OrderStatus
	CreatedAt          string // as reported by the backend, see ParseCreatedAt
	Items              []OrderItem
	Notes              string
}

// Title returns the label staff use for the order: "Digital #007" for app
// orders placed on the virtual table, "Mesa N" otherwise.
func (o Order) Title() string {
	if o.TableNumber == digitalTableNumber && o.DigitalOrderNumber != nil {
		return fmt.Sprintf("Digital #%03d", *o.DigitalOrderNumber)
	}
	return fmt.Sprintf("Mesa %d", o.TableNumber)
}

// ParseCreatedAt parses the backend timestamp in loc. Fractional seconds are
// dropped before parsing.
func (o Order) ParseCreatedAt(loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(o.CreatedAt)
	if raw == "" {
		return time.Time{}, fmt.Errorf("order %d has no creation timestamp", o.ID)
	}
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(OrderTimestampLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse order %d timestamp %q: %w", o.ID, o.CreatedAt, err)
	}
	return ts, nil
}
