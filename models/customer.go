package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is identified by phone; the name is decorative and may be empty.
// The running totals are updated whenever an order for this phone is created.
type Customer struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name,omitempty"`
	Phone         string          `db:"phone" json:"phone"`
	TotalOrders   int             `db:"total_orders" json:"total_orders"`
	TotalSpent    decimal.Decimal `db:"total_spent" json:"total_spent"`
	LastOrderDate *time.Time      `db:"last_order_date" json:"last_order_date,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
