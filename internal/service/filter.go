package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"flowerShopCRM/internal/lifecycle"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderFilter narrows the order list. Zero values match everything.
type OrderFilter struct {
	Statuses     []models.OrderStatus
	DeliveryDate string // today, tomorrow or YYYY-MM-DD
	Search       string
	CreatedFrom  *time.Time // inclusive
	CreatedTo    *time.Time // exclusive
	PageSize     int
	BeforeNumber int64 // cursor returned by a previous call
}

// List returns one page of matching orders, newest first, and the cursor of
// the next page (zero when there is none).
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	size := f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	for _, st := range f.Statuses {
		if !lifecycle.IsKnown(st) {
			return nil, 0, lifecycle.ErrUnknownStatus
		}
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && !f.CreatedFrom.Before(*f.CreatedTo) {
		return nil, 0, fmt.Errorf("created range is empty: %w", ErrInvalidInput)
	}
	match, err := newMatcher(f, s.opts.Now())
	if err != nil {
		return nil, 0, err
	}

	out := make([]models.Order, 0, size)
	cursor := f.BeforeNumber
	for {
		batch, err := s.orders.List(ctx, repository.ListOrdersParams{
			Statuses:    f.Statuses,
			CreatedFrom: f.CreatedFrom,
			CreatedTo:   f.CreatedTo,
			PageSize:    size,
			BeforeNum:   cursor,
		})
		if err != nil {
			return nil, 0, err
		}
		for _, o := range batch {
			cursor = o.Number
			if !match(o) {
				continue
			}
			out = append(out, o)
			if len(out) == size {
				return out, cursor, nil
			}
		}
		if len(batch) < size {
			return out, 0, nil
		}
	}
}

// fold makes search case and normalization insensitive. A Caser keeps state,
// so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

func newMatcher(f OrderFilter, now time.Time) (func(models.Order) bool, error) {
	var day time.Time
	if f.DeliveryDate != "" {
		d, err := lifecycle.ResolveDeliveryDate(f.DeliveryDate, now)
		if err != nil {
			return nil, err
		}
		day = d
	}
	needle := fold(f.Search)

	return func(o models.Order) bool {
		if !day.IsZero() {
			// Symbolic dates are relative to the day the order was taken.
			d, err := lifecycle.ResolveDeliveryDate(o.DeliveryDate, o.CreatedAt.In(now.Location()))
			if err != nil || !d.Equal(day) {
				return false
			}
		}
		if needle != "" && !strings.Contains(haystack(o), needle) {
			return false
		}
		return true
	}, nil
}

func haystack(o models.Order) string {
	parts := []string{
		strconv.FormatInt(o.Number, 10),
		o.Sender.Name, o.Sender.Phone,
		o.RecipientName, o.RecipientPhone,
		o.MainProduct.Name,
	}
	for _, it := range o.AdditionalItems {
		parts = append(parts, it.Name)
	}
	return fold(strings.Join(parts, "\n"))
}
