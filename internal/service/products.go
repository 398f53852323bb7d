package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

// ErrAlreadyExists is returned when a product id is taken.
var ErrAlreadyExists = errors.New("already exists")

// ProductService maintains the catalog that orders and audits read from.
type ProductService struct {
	products *repository.ProductRepository
	opts     Options
}

func NewProductService(d *sql.DB, opts Options) *ProductService {
	return &ProductService{products: repository.NewProductRepository(d), opts: opts.withDefaults()}
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Unit = strings.TrimSpace(p.Unit)
	if p.Name == "" {
		return fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if p.Price.LessThan(decimal.Zero) {
		return fmt.Errorf("price %s: %w", p.Price, ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock %d: %w", p.Stock, ErrInvalidInput)
	}
	return nil
}

// Create adds a product. An empty id gets a generated one.
func (s *ProductService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		p.ID = id
	} else {
		existing, err := s.products.GetByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("product %s: %w", p.ID, ErrAlreadyExists)
		}
	}
	p.UpdatedAt = s.opts.Now().UTC()
	out, err := s.products.Create(ctx, &p)
	if err != nil {
		return nil, err
	}
	s.opts.Log.WithFields(log.Fields{"product_id": out.ID, "stock": out.Stock}).Info("product created")
	return out, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// List returns the whole catalog ordered by name.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

// Update replaces the editable fields of an existing product. Existing orders
// keep their snapshots.
func (s *ProductService) Update(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	err := s.products.Update(ctx, &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.opts.Log.WithField("product_id", p.ID).Info("product updated")
	return s.Get(ctx, p.ID)
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.opts.Log.WithField("product_id", id).Info("product deleted")
	return nil
}
