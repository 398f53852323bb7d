// Package lifecycle defines the legal states of an order and how an order
// moves between them. All functions are pure: they take an order value and
// return a new one, never touching the caller's slices.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"flowerShopCRM/internal/display"
	"flowerShopCRM/models"
)

var (
	// ErrTerminal is returned by Advance for an order that has no successor.
	ErrTerminal = errors.New("order is in a terminal state")
	// ErrUnknownStatus is returned for a status outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown order status")
)

// chain is the quick-action order of states.
var chain = []models.OrderStatus{
	models.OrderStatusNew,
	models.OrderStatusPaid,
	models.OrderStatusAccepted,
	models.OrderStatusAssembled,
	models.OrderStatusInTransit,
	models.OrderStatusCompleted,
}

var transitions = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusNew:       models.OrderStatusPaid,
	models.OrderStatusPaid:      models.OrderStatusAccepted,
	models.OrderStatusAccepted:  models.OrderStatusAssembled,
	models.OrderStatusAssembled: models.OrderStatusInTransit,
	models.OrderStatusInTransit: models.OrderStatusCompleted,
}

// Statuses returns every status in lifecycle order.
func Statuses() []models.OrderStatus {
	return append([]models.OrderStatus(nil), chain...)
}

// IsKnown reports whether s belongs to the lifecycle.
func IsKnown(s models.OrderStatus) bool {
	for _, c := range chain {
		if c == s {
			return true
		}
	}
	return false
}

// Next returns the quick-action successor of s.
func Next(s models.OrderStatus) (models.OrderStatus, bool) {
	n, ok := transitions[s]
	return n, ok
}

// IsTerminal reports whether s has no outgoing transition.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusCompleted
}

// Engine applies status changes and writes their history entries using the
// labels of one catalog.
type Engine struct {
	labels *display.Catalog
}

// NewEngine returns an engine writing history in the catalog's language.
// A nil catalog selects the English one.
func NewEngine(labels *display.Catalog) *Engine {
	if labels == nil {
		labels = display.Default()
	}
	return &Engine{labels: labels}
}

// Labels returns the catalog the engine describes changes with.
func (e *Engine) Labels() *display.Catalog {
	return e.labels
}

// StatusRow is one line of the status board legend.
type StatusRow struct {
	Status models.OrderStatus
	Next   models.OrderStatus // empty for the terminal status
	display.Presentation
}

// Table lists every status in lifecycle order with its presentation.
func (e *Engine) Table() []StatusRow {
	rows := make([]StatusRow, 0, len(chain))
	for _, s := range chain {
		next, _ := Next(s)
		rows = append(rows, StatusRow{Status: s, Next: next, Presentation: e.labels.Order(s)})
	}
	return rows
}

// Create stamps a freshly built order: status defaults to new, both
// timestamps are set and the creation entry starts the history.
func (e *Engine) Create(o models.Order, at time.Time) models.Order {
	c := o.Clone()
	if c.Status == "" {
		c.Status = models.OrderStatusNew
	}
	c.CreatedAt = at
	c.UpdatedAt = at
	c.History = append(c.History, models.HistoryEntry{
		Timestamp:   at,
		Description: e.labels.OrderCreated(),
		Type:        models.HistoryTypeCreated,
	})
	return c
}

// Advance moves the order one step along the chain.
// A completed order is rejected with ErrTerminal and returned unchanged.
func (e *Engine) Advance(o models.Order, at time.Time) (models.Order, error) {
	next, ok := transitions[o.Status]
	if !ok {
		if IsTerminal(o.Status) {
			return o.Clone(), fmt.Errorf("advance order %d: %w", o.Number, ErrTerminal)
		}
		return o.Clone(), fmt.Errorf("advance order %d from %q: %w", o.Number, o.Status, ErrUnknownStatus)
	}
	return e.change(o, next, at), nil
}

// SetStatus is the manual override: any known status may be chosen, including
// earlier ones. Choosing the current status is a no-op.
func (e *Engine) SetStatus(o models.Order, s models.OrderStatus, at time.Time) (models.Order, error) {
	if !IsKnown(s) {
		return o.Clone(), fmt.Errorf("set status %q: %w", s, ErrUnknownStatus)
	}
	if s == o.Status {
		return o.Clone(), nil
	}
	return e.change(o, s, at), nil
}

func (e *Engine) change(o models.Order, s models.OrderStatus, at time.Time) models.Order {
	c := o.Clone()
	stamp := nextStamp(c, at)
	c.Status = s
	c.UpdatedAt = stamp
	c.History = append(c.History, models.HistoryEntry{
		Timestamp:   stamp,
		Description: e.labels.StatusChanged(s),
		Type:        string(s),
	})
	return c
}

// nextStamp keeps history strictly increasing even when the caller's clock
// does not move between two changes.
func nextStamp(o models.Order, at time.Time) time.Time {
	last := o.UpdatedAt
	if n := len(o.History); n > 0 && o.History[n-1].Timestamp.After(last) {
		last = o.History[n-1].Timestamp
	}
	if !at.After(last) {
		return last.Add(time.Nanosecond)
	}
	return at
}
