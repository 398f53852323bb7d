package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"flowerShopCRM/models"
)

const productColumns = `id, name, category, price, image, unit, stock, updated_at`

type ProductRepository struct {
	db querier
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *sql.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Create inserts a catalog product. ID must be set by the caller.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p == nil {
		return nil, errors.New("product is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return nil, errors.New("product id is required")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO products (`+productColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Category, p.Price.String(), p.Image, p.Unit, p.Stock, formatTime(p.UpdatedAt))
	if err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List returns all products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every column of a product.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	if p == nil {
		return errors.New("product is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE products SET name = ?, category = ?, price = ?, image = ?, unit = ?, stock = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Category, p.Price.String(), p.Image, p.Unit, p.Stock, formatTime(time.Now()), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStock sets the recorded quantity of a product.
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE products SET stock = ?, updated_at = ? WHERE id = ?`, stock, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a product. Orders keep their own snapshot and are unaffected.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var price, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &price, &p.Image, &p.Unit, &p.Stock, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = parseMoney(price); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}
