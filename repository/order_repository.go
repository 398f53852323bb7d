package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"flowerShopCRM/models"
)

var (
	// ErrHistoryRewrite is returned when a save would drop stored history entries.
	ErrHistoryRewrite = errors.New("order history is append-only")
	// ErrConflict is returned when an order changed after it was loaded.
	ErrConflict = errors.New("order was modified concurrently")
)

const orderColumns = `id, number, status, main_product, additional_items, delivery_type, delivery_address, recipient_name, recipient_phone, delivery_date, delivery_time, sender_name, sender_phone, customer_id, comment, created_at, updated_at`

// OrderRepository is the core repository for Order entities.
// History lives in order_history and is only ever appended to.
type OrderRepository struct {
	db querier
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *OrderRepository) WithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create inserts a new order with its history. When Number is zero the next
// sequential number is allocated.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if strings.TrimSpace(o.ID) == "" {
		return nil, errors.New("order id is required")
	}
	out := o.Clone()
	err := inTx(ctx, r.db, func(q querier) error {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		if out.Number == 0 {
			if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(number), 0) + 1 FROM orders`).Scan(&out.Number); err != nil {
				return fmt.Errorf("next order number: %w", err)
			}
		}
		args, err := orderArgs(&out)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...); err != nil {
			return err
		}
		return appendHistory(ctx, q, out.ID, 0, out.History)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID fetches an order with its full history.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

// GetByNumber fetches an order by its human-facing number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number int64) (*models.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = ?`, number)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	hist, err := r.loadHistory(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.History = hist[o.ID]
	return o, nil
}

// Save writes the mutable columns of an order and appends the history
// entries that are not stored yet. prev is the UpdatedAt the change was
// computed from; when the stored order has moved on since, Save fails with
// ErrConflict and writes nothing. The order's history must extend the stored
// one; a shorter history fails with ErrHistoryRewrite.
func (r *OrderRepository) Save(ctx context.Context, o *models.Order, prev time.Time) error {
	if o == nil {
		return errors.New("order is nil")
	}
	return inTx(ctx, r.db, func(q querier) error {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		var stored int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_history WHERE order_id = ?`, o.ID).Scan(&stored); err != nil {
			return err
		}
		if len(o.History) < stored {
			return fmt.Errorf("order %s has %d entries, %d stored: %w", o.ID, len(o.History), stored, ErrHistoryRewrite)
		}
		extra, err := json.Marshal(o.AdditionalItems)
		if err != nil {
			return err
		}
		main, err := json.Marshal(o.MainProduct)
		if err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `UPDATE orders SET status = ?, main_product = ?, additional_items = ?, delivery_type = ?, delivery_address = ?, recipient_name = ?, recipient_phone = ?, delivery_date = ?, delivery_time = ?, sender_name = ?, sender_phone = ?, customer_id = ?, comment = ?, updated_at = ? WHERE id = ? AND updated_at = ?`,
			string(o.Status), string(main), string(extra), string(o.DeliveryType), o.DeliveryAddress, o.RecipientName, o.RecipientPhone,
			o.DeliveryDate, o.DeliveryTime, o.Sender.Name, o.Sender.Phone, nullID(o.CustomerID), o.Comment, formatTime(o.UpdatedAt), o.ID, formatTime(prev))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE id = ?`, o.ID).Scan(&exists); err != nil {
				return err
			}
			if exists == 0 {
				return sql.ErrNoRows
			}
			return fmt.Errorf("order %s: %w", o.ID, ErrConflict)
		}
		return appendHistory(ctx, q, o.ID, stored, o.History[stored:])
	})
}

func appendHistory(ctx context.Context, q querier, orderID string, from int, entries []models.HistoryEntry) error {
	for i, h := range entries {
		if _, err := q.ExecContext(ctx, `INSERT INTO order_history (order_id, seq, timestamp, description, type) VALUES (?,?,?,?,?)`,
			orderID, from+i, formatTime(h.Timestamp), h.Description, h.Type); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	return nil
}

func orderArgs(o *models.Order) ([]any, error) {
	main, err := json.Marshal(o.MainProduct)
	if err != nil {
		return nil, err
	}
	items := o.AdditionalItems
	if items == nil {
		items = []models.ProductSnapshot{}
	}
	extra, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return []any{
		o.ID, o.Number, string(o.Status), string(main), string(extra), string(o.DeliveryType),
		o.DeliveryAddress, o.RecipientName, o.RecipientPhone, o.DeliveryDate, o.DeliveryTime,
		o.Sender.Name, o.Sender.Phone, nullID(o.CustomerID), o.Comment, formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	}, nil
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var status, deliveryType, main, extra, created, updated string
	var customerID sql.NullInt64
	if err := row.Scan(&o.ID, &o.Number, &status, &main, &extra, &deliveryType, &o.DeliveryAddress, &o.RecipientName, &o.RecipientPhone,
		&o.DeliveryDate, &o.DeliveryTime, &o.Sender.Name, &o.Sender.Phone, &customerID, &o.Comment, &created, &updated); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.DeliveryType = models.DeliveryType(deliveryType)
	if customerID.Valid {
		o.CustomerID = customerID.Int64
	}
	if err := json.Unmarshal([]byte(main), &o.MainProduct); err != nil {
		return nil, fmt.Errorf("decode main product of %s: %w", o.ID, err)
	}
	if err := json.Unmarshal([]byte(extra), &o.AdditionalItems); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", o.ID, err)
	}
	if len(o.AdditionalItems) == 0 {
		o.AdditionalItems = nil
	}
	var err error
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &o, nil
}
