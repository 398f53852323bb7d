package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flowerShopCRM/models"
)

const customerColumns = `id, name, phone, total_orders, total_spent, last_order_date, created_at`

// CustomerRepository stores customers keyed by their unique phone.
type CustomerRepository struct {
	db querier
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *CustomerRepository) WithTx(tx *sql.Tx) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

// Create inserts a customer with zero totals.
func (r *CustomerRepository) Create(ctx context.Context, name, phone string, at time.Time) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, errors.New("customer phone is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `INSERT INTO customers (name, phone, created_at) VALUES (?,?,?)`, strings.TrimSpace(name), phone, formatTime(at))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Customer{ID: id, Name: strings.TrimSpace(name), Phone: phone, TotalSpent: decimal.Zero, CreatedAt: at.UTC()}, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanCustomerRow(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanCustomerRow(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = ?`, strings.TrimSpace(phone)))
}

// List returns customers, most recent buyers first.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY last_order_date IS NULL, last_order_date DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordOrder finds the customer by phone, creating it if needed, and adds one
// order of the given amount to its running totals. A non-empty name replaces
// the stored one.
func (r *CustomerRepository) RecordOrder(ctx context.Context, name, phone string, amount decimal.Decimal, at time.Time) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" {
		return nil, errors.New("customer phone is required")
	}
	var out *models.Customer
	err := inTx(ctx, r.db, func(q querier) error {
		tr := &CustomerRepository{db: q}
		c, err := tr.GetByPhone(ctx, phone)
		if err != nil {
			return err
		}
		if c == nil {
			if c, err = tr.Create(ctx, name, phone, at); err != nil {
				return err
			}
		}
		c.TotalOrders++
		c.TotalSpent = c.TotalSpent.Add(amount)
		if c.LastOrderDate == nil || at.After(*c.LastOrderDate) {
			t := at.UTC()
			c.LastOrderDate = &t
		}
		if name != "" {
			c.Name = name
		}
		tctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		_, err = q.ExecContext(tctx, `UPDATE customers SET name = ?, total_orders = ?, total_spent = ?, last_order_date = ? WHERE id = ?`,
			c.Name, c.TotalOrders, c.TotalSpent.String(), nullTime(c.LastOrderDate), c.ID)
		out = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanCustomerRow(row *sql.Row) (*models.Customer, error) {
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	var spent, created string
	var last sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.TotalOrders, &spent, &last, &created); err != nil {
		return nil, err
	}
	var err error
	if c.TotalSpent, err = parseMoney(spent); err != nil {
		return nil, err
	}
	if c.LastOrderDate, err = parseNullTime(last); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &c, nil
}
