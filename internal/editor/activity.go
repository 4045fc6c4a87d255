package editor

import (
	"context"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Activity describes one successful mutation.
type Activity struct {
	Resource string    `json:"resource"`
	Action   string    `json:"action"`
	ID       int64     `json:"id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher forwards activity events. Failures never affect the mutation.
type Publisher interface {
	Publish(ctx context.Context, a Activity) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Activity) error { return nil }

// NopPublisher drops every event.
var NopPublisher Publisher = nopPublisher{}
