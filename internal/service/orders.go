package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/lifecycle"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

// LineItem references a catalog product by id.
type LineItem struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput is what a florist fills in at the counter.
type CreateOrderInput struct {
	MainProduct     LineItem
	AdditionalItems []LineItem
	DeliveryType    models.DeliveryType
	Recipient       lifecycle.Recipient
	DeliveryDate    string
	DeliveryTime    string
	Sender          models.Contact
	Comment         string
}

// OrderService runs the order lifecycle against the database.
type OrderService struct {
	db        *sql.DB
	orders    *repository.OrderRepository
	customers *repository.CustomerRepository
	products  *repository.ProductRepository
	engine    *lifecycle.Engine
	opts      Options
}

func NewOrderService(d *sql.DB, engine *lifecycle.Engine, opts Options) *OrderService {
	if engine == nil {
		engine = lifecycle.NewEngine(nil)
	}
	return &OrderService{
		db:        d,
		orders:    repository.NewOrderRepository(d),
		customers: repository.NewCustomerRepository(d),
		products:  repository.NewProductRepository(d),
		engine:    engine,
		opts:      opts.withDefaults(),
	}
}

// Engine exposes the lifecycle engine, mainly for its labels.
func (s *OrderService) Engine() *lifecycle.Engine { return s.engine }

// Create snapshots the referenced products, numbers the order, records the
// sender as a customer and stores everything in one transaction.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	now := s.opts.Now()
	main, err := s.snapshot(ctx, in.MainProduct)
	if err != nil {
		return nil, err
	}
	var extra []models.ProductSnapshot
	for _, li := range in.AdditionalItems {
		p, err := s.snapshot(ctx, li)
		if err != nil {
			return nil, err
		}
		extra = append(extra, p)
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	o := models.Order{
		ID:              id,
		MainProduct:     main,
		AdditionalItems: extra,
		DeliveryType:    in.DeliveryType,
		DeliveryDate:    strings.TrimSpace(in.DeliveryDate),
		DeliveryTime:    strings.TrimSpace(in.DeliveryTime),
		Sender:          models.Contact{Name: strings.TrimSpace(in.Sender.Name), Phone: strings.TrimSpace(in.Sender.Phone)},
		Comment:         in.Comment,
	}
	if o.DeliveryType == models.DeliveryTypeDelivery {
		o.DeliveryAddress = strings.TrimSpace(in.Recipient.Address)
		o.RecipientName = strings.TrimSpace(in.Recipient.Name)
		o.RecipientPhone = strings.TrimSpace(in.Recipient.Phone)
	}
	o = s.engine.Create(o, now)
	if err := lifecycle.Validate(o); err != nil {
		return nil, err
	}

	var created *models.Order
	err = repository.Transact(ctx, s.db, func(tx *sql.Tx) error {
		c, err := s.customers.WithTx(tx).RecordOrder(ctx, o.Sender.Name, o.Sender.Phone, o.Total(), now)
		if err != nil {
			return fmt.Errorf("record customer: %w", err)
		}
		o.CustomerID = c.ID
		created, err = s.orders.WithTx(tx).Create(ctx, &o)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.opts.Log.WithFields(log.Fields{"order_id": created.ID, "number": created.Number}).Info("order created")
	s.opts.publish(ctx, events.Event{Kind: events.OrderCreated, OrderID: created.ID, OrderNumber: created.Number, Status: string(created.Status), At: now})
	return created, nil
}

func (s *OrderService) snapshot(ctx context.Context, li LineItem) (models.ProductSnapshot, error) {
	id := strings.TrimSpace(li.ProductID)
	if id == "" {
		return models.ProductSnapshot{}, lifecycle.ErrMissingProduct
	}
	if li.Quantity < 0 {
		return models.ProductSnapshot{}, fmt.Errorf("quantity %d for %s: %w", li.Quantity, id, ErrInvalidInput)
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return models.ProductSnapshot{}, err
	}
	if p == nil {
		return models.ProductSnapshot{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	q := li.Quantity
	if q == 0 {
		q = 1
	}
	return p.Snapshot(q), nil
}

// Get returns the order with the given id.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, nil
}

// GetByNumber returns the order with the given human-facing number.
func (s *OrderService) GetByNumber(ctx context.Context, number int64) (*models.Order, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order #%d: %w", number, ErrNotFound)
	}
	return o, nil
}

// Advance applies the quick action of the order's current status.
func (s *OrderService) Advance(ctx context.Context, id string) (*models.Order, error) {
	return s.apply(ctx, id, events.OrderStatusChanged, func(o models.Order) (models.Order, error) {
		return s.engine.Advance(o, s.opts.Now())
	})
}

// SetStatus is the manual override. Setting the current status stores nothing.
func (s *OrderService) SetStatus(ctx context.Context, id string, st models.OrderStatus) (*models.Order, error) {
	return s.apply(ctx, id, events.OrderStatusChanged, func(o models.Order) (models.Order, error) {
		return s.engine.SetStatus(o, st, s.opts.Now())
	})
}

// ChangeDeliveryType switches between pickup and delivery.
func (s *OrderService) ChangeDeliveryType(ctx context.Context, id string, t models.DeliveryType, r lifecycle.Recipient) (*models.Order, error) {
	return s.apply(ctx, id, events.OrderDeliveryChanged, func(o models.Order) (models.Order, error) {
		return lifecycle.SetDeliveryType(o, t, r, s.opts.Now())
	})
}

func (s *OrderService) apply(ctx context.Context, id string, kind events.Kind, fn func(models.Order) (models.Order, error)) (*models.Order, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(*cur)
	if err != nil {
		return nil, err
	}
	if next.UpdatedAt.Equal(cur.UpdatedAt) {
		return cur, nil
	}
	if err := s.orders.Save(ctx, &next, cur.UpdatedAt); err != nil {
		return nil, err
	}
	s.opts.Log.WithFields(log.Fields{"order_id": next.ID, "status": next.Status, "kind": kind}).Info("order updated")
	s.opts.publish(ctx, events.Event{Kind: kind, OrderID: next.ID, OrderNumber: next.Number, Status: string(next.Status), At: next.UpdatedAt})
	return &next, nil
}
