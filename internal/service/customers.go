package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

// CustomerService reads the customer records kept up to date by order intake.
type CustomerService struct {
	customers *repository.CustomerRepository
	orders    *repository.OrderRepository
}

func NewCustomerService(d *sql.DB) *CustomerService {
	return &CustomerService{
		customers: repository.NewCustomerRepository(d),
		orders:    repository.NewOrderRepository(d),
	}
}

// CustomerDetail is a customer with every order placed under their phone.
type CustomerDetail struct {
	Customer models.Customer
	Orders   []models.Order
}

// Get looks a customer up by id, or by phone when id is zero.
func (s *CustomerService) Get(ctx context.Context, id int64, phone string) (*CustomerDetail, error) {
	var (
		c   *models.Customer
		err error
	)
	switch {
	case id > 0:
		c, err = s.customers.GetByID(ctx, id)
	case strings.TrimSpace(phone) != "":
		c, err = s.customers.GetByPhone(ctx, phone)
	default:
		return nil, fmt.Errorf("customer id or phone is required: %w", ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("customer: %w", ErrNotFound)
	}
	orders, err := s.orders.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &CustomerDetail{Customer: *c, Orders: orders}, nil
}

// List returns customers, most recent buyers first.
func (s *CustomerService) List(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.customers.List(ctx, limit, offset)
}
