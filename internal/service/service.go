// Package service orchestrates the order and audit engines over storage,
// publishing an event after every successful change.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"flowerShopCRM/internal/events"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNothingCounted = errors.New("no items counted")
	ErrSessionClosed  = errors.New("audit session is closed")
)

// Options carries the collaborators shared by every service.
type Options struct {
	Events events.Publisher
	Log    log.FieldLogger
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Events == nil {
		o.Events = events.Nop{}
	}
	if o.Log == nil {
		o.Log = log.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// publish never fails the operation that triggered it.
func (o Options) publish(ctx context.Context, e events.Event) {
	if err := o.Events.Publish(ctx, e); err != nil {
		o.Log.WithError(err).WithField("kind", e.Kind).Warn("publish event")
	}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
