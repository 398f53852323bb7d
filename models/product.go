package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock is the recorded quantity that an
// inventory audit compares against a physical count.
type Product struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Image     string          `db:"image" json:"image,omitempty"`
	Unit      string          `db:"unit" json:"unit,omitempty"`
	Stock     int             `db:"stock" json:"stock"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Snapshot copies the fields an order keeps about this product.
func (p Product) Snapshot(quantity int) ProductSnapshot {
	if quantity <= 0 {
		quantity = 1
	}
	return ProductSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.Price,
		Quantity:  quantity,
	}
}
