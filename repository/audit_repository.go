package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"flowerShopCRM/internal/reconcile"
	"flowerShopCRM/models"
)

// AuditRepository stores stock-count sessions. Only the two quantities of a
// line are stored; difference and status are recomputed on every read.
type AuditRepository struct {
	db querier
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *AuditRepository) WithTx(tx *sql.Tx) *AuditRepository {
	return &AuditRepository{db: tx}
}

// CreateSession inserts a session and all of its lines.
func (r *AuditRepository) CreateSession(ctx context.Context, s *models.AuditSession) error {
	if s == nil {
		return errors.New("audit session is nil")
	}
	return inTx(ctx, r.db, func(q querier) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := q.ExecContext(ctx, `INSERT INTO audit_sessions (id, started_by, started_at, completed_at) VALUES (?,?,?,?)`,
			s.ID, s.StartedBy, formatTime(s.StartedAt), nullTime(s.CompletedAt)); err != nil {
			return err
		}
		for i, it := range s.Items {
			if _, err := q.ExecContext(ctx, `INSERT INTO audit_items (session_id, position, product_id, name, unit, system_quantity, actual_quantity) VALUES (?,?,?,?,?,?,?)`,
				s.ID, i, it.ID, it.Name, it.Unit, it.SystemQuantity, it.ActualQuantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSession fetches a session with its lines in their original order.
func (r *AuditRepository) GetSession(ctx context.Context, id string) (*models.AuditSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.AuditSession
	var started string
	var completed sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT id, started_by, started_at, completed_at FROM audit_sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.StartedBy, &started, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if s.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if s.CompletedAt, err = parseNullTime(completed); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT product_id, name, unit, system_quantity, actual_quantity FROM audit_items WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.AuditItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.SystemQuantity, &it.ActualQuantity); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, reconcile.Recompute(it))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns session headers (without lines), newest first.
func (r *AuditRepository) ListSessions(ctx context.Context, limit int) ([]models.AuditSession, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, started_by, started_at, completed_at FROM audit_sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.AuditSession
	for rows.Next() {
		var s models.AuditSession
		var started string
		var completed sql.NullString
		if err := rows.Scan(&s.ID, &s.StartedBy, &started, &completed); err != nil {
			return nil, err
		}
		if s.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if s.CompletedAt, err = parseNullTime(completed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateCount stores the counted quantity of one line.
func (r *AuditRepository) UpdateCount(ctx context.Context, sessionID, productID string, actual int) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE audit_items SET actual_quantity = ? WHERE session_id = ? AND product_id = ?`, actual, sessionID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Complete closes a session. Closing an already closed session fails with sql.ErrNoRows.
func (r *AuditRepository) Complete(ctx context.Context, sessionID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE audit_sessions SET completed_at = ? WHERE id = ? AND completed_at IS NULL`, formatTime(at), sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
