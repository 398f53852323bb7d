package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"flowerShopCRM/models"
)

var (
	// ErrInvalidDelivery is returned when an order's delivery details do not validate.
	ErrInvalidDelivery = errors.New("invalid delivery details")
	// ErrMissingSender is returned when an order has no sender phone.
	ErrMissingSender = errors.New("sender phone is required")
	// ErrMissingProduct is returned when an order has no main product.
	ErrMissingProduct = errors.New("main product is required")
)

// Recipient carries the fields that only exist for delivery orders.
type Recipient struct {
	Address string
	Name    string
	Phone   string
}

func (r Recipient) complete() bool {
	return strings.TrimSpace(r.Address) != "" && strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.Phone) != ""
}

// SetDeliveryType switches the order between delivery and pickup.
// Switching to pickup wipes the recipient fields; switching to delivery
// requires a complete recipient.
func SetDeliveryType(o models.Order, t models.DeliveryType, r Recipient, at time.Time) (models.Order, error) {
	c := o.Clone()
	switch t {
	case models.DeliveryTypePickup:
		c.DeliveryAddress = ""
		c.RecipientName = ""
		c.RecipientPhone = ""
	case models.DeliveryTypeDelivery:
		if !r.complete() {
			return o.Clone(), fmt.Errorf("address, recipient name and phone are required: %w", ErrInvalidDelivery)
		}
		c.DeliveryAddress = strings.TrimSpace(r.Address)
		c.RecipientName = strings.TrimSpace(r.Name)
		c.RecipientPhone = strings.TrimSpace(r.Phone)
	default:
		return o.Clone(), fmt.Errorf("delivery type %q: %w", t, ErrInvalidDelivery)
	}
	c.DeliveryType = t
	c.UpdatedAt = nextStamp(c, at)
	return c, nil
}

// Validate checks the invariants an order must satisfy before it is stored.
func Validate(o models.Order) error {
	if strings.TrimSpace(o.MainProduct.ProductID) == "" {
		return ErrMissingProduct
	}
	if strings.TrimSpace(o.Sender.Phone) == "" {
		return ErrMissingSender
	}
	if !IsKnown(o.Status) {
		return fmt.Errorf("status %q: %w", o.Status, ErrUnknownStatus)
	}
	r := Recipient{Address: o.DeliveryAddress, Name: o.RecipientName, Phone: o.RecipientPhone}
	switch o.DeliveryType {
	case models.DeliveryTypeDelivery:
		if !r.complete() {
			return fmt.Errorf("address, recipient name and phone are required: %w", ErrInvalidDelivery)
		}
	case models.DeliveryTypePickup:
		if r != (Recipient{}) {
			return fmt.Errorf("pickup order carries recipient details: %w", ErrInvalidDelivery)
		}
	default:
		return fmt.Errorf("delivery type %q: %w", o.DeliveryType, ErrInvalidDelivery)
	}
	if _, err := ResolveDeliveryDate(o.DeliveryDate, time.Now()); err != nil {
		return err
	}
	return nil
}

// ResolveDeliveryDate turns today/tomorrow or a YYYY-MM-DD literal into the
// start of that day in now's location.
func ResolveDeliveryDate(value string, now time.Time) (time.Time, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch strings.TrimSpace(value) {
	case models.DeliveryDateToday:
		return today, nil
	case models.DeliveryDateTomorrow:
		return today.AddDate(0, 0, 1), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("delivery date %q: %w", value, ErrInvalidDelivery)
	}
	return t, nil
}
