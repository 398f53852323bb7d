package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current progress of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusAssembled OrderStatus = "assembled"
	OrderStatusInTransit OrderStatus = "in-transit"
	OrderStatusCompleted OrderStatus = "completed"
)

// DeliveryType is how the bouquet reaches the recipient.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Symbolic delivery dates. Any other value is a literal calendar date (YYYY-MM-DD).
const (
	DeliveryDateToday    = "today"
	DeliveryDateTomorrow = "tomorrow"
)

// HistoryTypeCreated marks the history entry written when an order is created.
// Status change entries carry the new status as their type.
const HistoryTypeCreated = "created"

// ProductSnapshot is a copy of a product taken when the order was placed.
// It is never refreshed from the catalog, so deleting or repricing a product
// leaves existing orders intact.
type ProductSnapshot struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price multiplied by quantity (a zero quantity counts as one).
func (p ProductSnapshot) Subtotal() decimal.Decimal {
	q := p.Quantity
	if q <= 0 {
		q = 1
	}
	return p.Price.Mul(decimal.NewFromInt(int64(q)))
}

// Contact is a name/phone pair used for the sender and the recipient.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// HistoryEntry is one line of the append-only order log.
type HistoryEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
}

// Order is a customer request for one or more floral products.
// ID is opaque, Number is the human-facing sequential order number.
type Order struct {
	ID              string            `json:"id"`
	Number          int64             `json:"number"`
	Status          OrderStatus       `json:"status"`
	MainProduct     ProductSnapshot   `json:"main_product"`
	AdditionalItems []ProductSnapshot `json:"additional_items,omitempty"`
	DeliveryType    DeliveryType      `json:"delivery_type"`
	DeliveryAddress string            `json:"delivery_address"`
	RecipientName   string            `json:"recipient_name"`
	RecipientPhone  string            `json:"recipient_phone"`
	DeliveryDate    string            `json:"delivery_date"`
	DeliveryTime    string            `json:"delivery_time"`
	Sender          Contact           `json:"sender"`
	CustomerID      int64             `json:"customer_id,omitempty"`
	Comment         string            `json:"comment,omitempty"`
	History         []HistoryEntry    `json:"history"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Total sums the main product and all additional items.
func (o Order) Total() decimal.Decimal {
	total := o.MainProduct.Subtotal()
	for _, it := range o.AdditionalItems {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Clone returns a copy of the order that shares no slices with the receiver.
func (o Order) Clone() Order {
	c := o
	if o.AdditionalItems != nil {
		c.AdditionalItems = append([]ProductSnapshot(nil), o.AdditionalItems...)
	}
	if o.History != nil {
		c.History = append([]HistoryEntry(nil), o.History...)
	}
	return c
}
