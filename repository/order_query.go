package repository

import (
	"context"
	"strings"
	"time"

	"flowerShopCRM/models"
)

// ListOrdersParams represents filters and pagination for List.
type ListOrdersParams struct {
	Statuses    []models.OrderStatus
	CustomerID  *int64
	CreatedFrom *time.Time // optional inclusive lower bound on created_at
	CreatedTo   *time.Time // optional exclusive upper bound on created_at
	PageSize    int
	BeforeNum   int64 // keyset cursor: return orders with a smaller number
}

// List returns orders matching filters, newest number first, with keyset pagination.
func (r *OrderRepository) List(ctx context.Context, p ListOrdersParams) ([]models.Order, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 500 {
		p.PageSize = 500
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where []string
	var args []any

	if len(p.Statuses) > 0 {
		placeholders := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if p.CustomerID != nil {
		where = append(where, "customer_id = ?")
		args = append(args, *p.CustomerID)
	}
	if p.CreatedFrom != nil {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(*p.CreatedFrom))
	}
	if p.CreatedTo != nil {
		where = append(where, "created_at < ?")
		args = append(args, formatTime(*p.CreatedTo))
	}
	if p.BeforeNum > 0 {
		where = append(where, "number < ?")
		args = append(args, p.BeforeNum)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY number DESC LIMIT ?"
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the connection before loading history.
	rows.Close()

	if len(out) == 0 {
		return out, nil
	}
	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	hist, err := r.loadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].History = hist[out[i].ID]
	}
	return out, nil
}

// ListByCustomer returns every order of one customer, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	return r.List(ctx, ListOrdersParams{CustomerID: &customerID, PageSize: 500})
}

// loadHistory fetches the history of several orders in append order.
func (r *OrderRepository) loadHistory(ctx context.Context, ids []string) (map[string][]models.HistoryEntry, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `SELECT order_id, timestamp, description, type FROM order_history WHERE order_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY order_id, seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]models.HistoryEntry, len(ids))
	for rows.Next() {
		var id, ts string
		var h models.HistoryEntry
		if err := rows.Scan(&id, &ts, &h.Description, &h.Type); err != nil {
			return nil, err
		}
		if h.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out[id] = append(out[id], h)
	}
	return out, rows.Err()
}
