package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/export"
	"flowerShopCRM/internal/reconcile"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

// SaveResult reports what a save wrote.
type SaveResult struct {
	Applied int // stock corrections written
	Skipped int // counted lines whose product no longer exists
	Stats   reconcile.Stats
}

// AuditService runs inventory audit sessions.
type AuditService struct {
	db       *sql.DB
	audits   *repository.AuditRepository
	products *repository.ProductRepository
	labels   *display.Catalog
	opts     Options
}

func NewAuditService(d *sql.DB, labels *display.Catalog, opts Options) *AuditService {
	if labels == nil {
		labels = display.Default()
	}
	return &AuditService{
		db:       d,
		audits:   repository.NewAuditRepository(d),
		products: repository.NewProductRepository(d),
		labels:   labels,
		opts:     opts.withDefaults(),
	}
}

// Start opens a session with one pending line per product, using the current
// stock as the system quantity.
func (s *AuditService) Start(ctx context.Context, startedBy string) (*models.AuditSession, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	sess := &models.AuditSession{ID: id, StartedBy: startedBy, StartedAt: s.opts.Now().UTC()}
	for _, p := range products {
		sess.Items = append(sess.Items, reconcile.NewItem(p))
	}
	if err := s.audits.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	s.opts.Log.WithFields(log.Fields{"session_id": id, "items": len(sess.Items)}).Info("audit started")
	return sess, nil
}

// Get returns a session with derived line statuses.
func (s *AuditService) Get(ctx context.Context, id string) (*models.AuditSession, error) {
	sess, err := s.audits.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("audit %s: %w", id, ErrNotFound)
	}
	return sess, nil
}

// List returns recent session headers, newest first. Lines are not loaded.
func (s *AuditService) List(ctx context.Context, limit int) ([]models.AuditSession, error) {
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.audits.ListSessions(ctx, limit)
}

// Count records the raw input for one line. The input is sanitized first, so
// garbage and negatives are stored as zero, which reads back as pending.
func (s *AuditService) Count(ctx context.Context, sessionID, productID, raw string) (*models.AuditSession, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Closed() {
		return nil, ErrSessionClosed
	}
	actual := reconcile.SanitizeCount(raw)
	items, ok := reconcile.UpdateCount(sess.Items, productID, actual)
	if !ok {
		return nil, fmt.Errorf("audit line %s: %w", productID, ErrNotFound)
	}
	if err := s.audits.UpdateCount(ctx, sessionID, productID, actual); err != nil {
		return nil, err
	}
	sess.Items = items
	return sess, nil
}

// Stats summarizes a session.
func (s *AuditService) Stats(ctx context.Context, id string) (reconcile.Stats, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return reconcile.Stats{}, err
	}
	return reconcile.SessionStats(sess.Items), nil
}

// Save writes counted quantities as the new stock and closes the session.
// Pending lines are left alone. A session with nothing counted is not saved
// and ErrNothingCounted is returned.
func (s *AuditService) Save(ctx context.Context, id string) (SaveResult, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return SaveResult{}, err
	}
	if sess.Closed() {
		return SaveResult{}, ErrSessionClosed
	}
	res := SaveResult{Stats: reconcile.SessionStats(sess.Items)}
	if res.Stats.Checked == 0 {
		s.opts.Log.WithField("session_id", id).Warn("audit save skipped: nothing counted")
		return res, ErrNothingCounted
	}

	now := s.opts.Now()
	err = repository.Transact(ctx, s.db, func(tx *sql.Tx) error {
		products := s.products.WithTx(tx)
		for _, it := range reconcile.Committable(sess.Items) {
			err := products.UpdateStock(ctx, it.ID, it.ActualQuantity)
			if errors.Is(err, sql.ErrNoRows) {
				res.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("update stock %s: %w", it.ID, err)
			}
			res.Applied++
		}
		err := s.audits.WithTx(tx).Complete(ctx, id, now)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionClosed
		}
		return err
	})
	if err != nil {
		return SaveResult{}, err
	}

	s.opts.Log.WithFields(log.Fields{"session_id": id, "applied": res.Applied, "skipped": res.Skipped}).Info("audit saved")
	s.opts.publish(ctx, events.Event{Kind: events.AuditSaved, SessionID: id, Applied: res.Applied, At: now})
	return res, nil
}

// Export writes the session report as XLSX.
func (s *AuditService) Export(ctx context.Context, id string, w io.Writer) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return export.AuditXLSX(w, sess, s.labels)
}
