package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"flowerShopCRM/models"
)

const staffColumns = `id, username, full_name, phone, email, role`

type StaffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a new staff member. Role defaults to 'florist'.
func (r *StaffRepository) Create(ctx context.Context, s *models.Staff) (*models.Staff, error) {
	if s == nil {
		return nil, errors.New("staff is nil")
	}
	if s.Role == "" {
		s.Role = models.RoleFlorist
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO staff (username, full_name, phone, email, role) VALUES (?,?,?,?,?)`,
		s.Username, s.FullName, s.Phone, s.Email, s.Role)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *s
	out.ID = id
	return &out, nil
}

func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanStaff(r.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE username = ?`, username))
}

func (r *StaffRepository) List(ctx context.Context, limit, offset int) ([]models.Staff, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Staff
	for rows.Next() {
		var s models.Staff
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Phone, &s.Email, &s.Role); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile overwrites the editable profile fields of the given username.
func (r *StaffRepository) UpdateProfile(ctx context.Context, username, fullName, phone, email string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE staff SET full_name = ?, phone = ?, email = ? WHERE username = ?`, fullName, phone, email, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateRoleByUsername sets the role for the given username.
func (r *StaffRepository) UpdateRoleByUsername(ctx context.Context, username, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE staff SET role = ? WHERE username = ?`, role, username)
	return err
}

func scanStaff(row *sql.Row) (*models.Staff, error) {
	var s models.Staff
	if err := row.Scan(&s.ID, &s.Username, &s.FullName, &s.Phone, &s.Email, &s.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
