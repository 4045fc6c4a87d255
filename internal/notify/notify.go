// Package notify implements the single-slot notification surface: each
// browser client has at most one pending notification, a newer one replaces
// it, and it disappears after a fixed TTL or an explicit dismiss.
package notify

import (
	"context"
	"time"

	"finsight/internal/log"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// DefaultTTL is the auto-dismiss delay.
const DefaultTTL = 3 * time.Second

// ParseSeverity returns s when it is a known severity and Info otherwise.
func ParseSeverity(s string) Severity {
	switch sev := Severity(s); sev {
	case Success, Error, Info, Warning:
		return sev
	}
	return Info
}

type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Store holds one notification slot per client. Put replaces the slot and
// restarts its expiry.
type Store interface {
	Put(ctx context.Context, client string, n Notification) error
	Get(ctx context.Context, client string) (Notification, bool, error)
	Delete(ctx context.Context, client string) error
}

// Sink is the narrow surface handed to page components.
type Sink interface {
	Notify(ctx context.Context, message string, severity Severity)
}

type Notifier struct {
	store  Store
	ttl    time.Duration
	logger *log.Logger
}

func New(store Store, ttl time.Duration, logger *log.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{store: store, ttl: ttl, logger: logger.WithComponent(log.ComponentNotify)}
}

// TTL is the auto-dismiss delay applied to every notification.
func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

// Notify replaces the client's pending notification. Storage failures are
// logged; a lost notification never fails the caller.
func (n *Notifier) Notify(ctx context.Context, client, message string, severity Severity) {
	note := Notification{Message: message, Severity: ParseSeverity(string(severity))}
	if err := n.store.Put(ctx, client, note); err != nil {
		n.logger.WarnContext(ctx, "Failed to store notification",
			log.FieldClientID, client,
			log.FieldSeverity, note.Severity,
			log.FieldError, err)
	}
}

// Current returns the visible notification, if any.
func (n *Notifier) Current(ctx context.Context, client string) (Notification, bool) {
	note, ok, err := n.store.Get(ctx, client)
	if err != nil {
		n.logger.WarnContext(ctx, "Failed to read notification", log.FieldClientID, client, log.FieldError, err)
		return Notification{}, false
	}
	return note, ok
}

// Dismiss hides the client's notification.
func (n *Notifier) Dismiss(ctx context.Context, client string) {
	if err := n.store.Delete(ctx, client); err != nil {
		n.logger.WarnContext(ctx, "Failed to dismiss notification", log.FieldClientID, client, log.FieldError, err)
	}
}

// For binds the notifier to one client.
func (n *Notifier) For(client string) Sink {
	return clientSink{n: n, client: client}
}

type clientSink struct {
	n      *Notifier
	client string
}

func (s clientSink) Notify(ctx context.Context, message string, severity Severity) {
	s.n.Notify(ctx, s.client, message, severity)
}
