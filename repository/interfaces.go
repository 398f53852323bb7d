package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"flowerShopCRM/models"
)

// StaffRepositoryI defines operations on Staff entities.
type StaffRepositoryI interface {
	Create(ctx context.Context, s *models.Staff) (*models.Staff, error)
	GetByUsername(ctx context.Context, username string) (*models.Staff, error)
	List(ctx context.Context, limit, offset int) ([]models.Staff, error)
	UpdateProfile(ctx context.Context, username, fullName, phone, email string) error
	UpdateRoleByUsername(ctx context.Context, username, role string) error
}

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByNumber(ctx context.Context, number int64) (*models.Order, error)
	Save(ctx context.Context, o *models.Order, prev time.Time) error
	List(ctx context.Context, p ListOrdersParams) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
}

// CustomerRepositoryI defines operations on Customer entities.
type CustomerRepositoryI interface {
	Create(ctx context.Context, name, phone string, at time.Time) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*models.Customer, error)
	List(ctx context.Context, limit, offset int) ([]models.Customer, error)
	RecordOrder(ctx context.Context, name, phone string, amount decimal.Decimal, at time.Time) (*models.Customer, error)
}

// ProductRepositoryI defines operations on Product entities.
type ProductRepositoryI interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	UpdateStock(ctx context.Context, id string, stock int) error
	Delete(ctx context.Context, id string) error
}

// AuditRepositoryI defines operations on inventory audit sessions.
type AuditRepositoryI interface {
	CreateSession(ctx context.Context, s *models.AuditSession) error
	GetSession(ctx context.Context, id string) (*models.AuditSession, error)
	ListSessions(ctx context.Context, limit int) ([]models.AuditSession, error)
	UpdateCount(ctx context.Context, sessionID, productID string, actual int) error
	Complete(ctx context.Context, sessionID string, at time.Time) error
}

var (
	_ StaffRepositoryI    = (*StaffRepository)(nil)
	_ OrderRepositoryI    = (*OrderRepository)(nil)
	_ CustomerRepositoryI = (*CustomerRepository)(nil)
	_ ProductRepositoryI  = (*ProductRepository)(nil)
	_ AuditRepositoryI    = (*AuditRepository)(nil)
)
