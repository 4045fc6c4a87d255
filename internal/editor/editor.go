// Package editor implements the list-editor pattern shared by the resource
// pages: load a list, open a create or edit modal over one form slot, submit,
// delete, then re-fetch and notify.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsight/internal/log"
	"finsight/internal/notify"
)

var (
	// ErrForbidden is returned for a mutation attempted without passing the gate.
	ErrForbidden = errors.New("editor: not allowed")
	// ErrNoEditPath is returned for an update on a resource that has none.
	ErrNoEditPath = errors.New("editor: resource has no edit path")
)

type Phase int

const (
	Loading Phase = iota
	Ready
)

type ModalKind int

const (
	ModalClosed ModalKind = iota
	ModalCreating
	ModalEditing
)

// Modal is the page's single modal slot. EditID is set only while editing.
type Modal struct {
	Kind   ModalKind
	EditID int64
}

func (m Modal) Open() bool     { return m.Kind != ModalClosed }
func (m Modal) Creating() bool { return m.Kind == ModalCreating }
func (m Modal) Editing() bool  { return m.Kind == ModalEditing }

// Resource adapts one backend collection to the editor.
type Resource[T, F any] interface {
	Name() string
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, form F) error
	Delete(ctx context.Context, id int64) error
	ID(item T) int64
	FormOf(item T) F
	Blank() F
}

// Updater is implemented by resources that can be edited in place.
type Updater[F any] interface {
	Update(ctx context.Context, id int64, form F) error
}

// FailurePolicy says how a failed page load is surfaced.
type FailurePolicy int

const (
	LogOnFailure FailurePolicy = iota
	NotifyOnFailure
)

// Messages are the notification texts of one page.
type Messages struct {
	FetchFailed  string
	Created      string
	Updated      string
	SaveFailed   string
	Deleted      string
	DeleteFailed string
}

// Config is the per-page parameterization of the editor.
type Config struct {
	Gate           Gate
	OnFetchFailure FailurePolicy
	Messages       Messages
}

// Editor is the state of one page for the duration of a request.
type Editor[T, F any] struct {
	res       Resource[T, F]
	cfg       Config
	principal Principal
	sink      notify.Sink
	publisher Publisher
	logger    *log.Logger
	also      []Fetch
	now       func() time.Time

	Phase Phase
	Items []T
	Modal Modal
	Form  F
}

type Option[T, F any] func(*Editor[T, F])

// WithFetches adds lists fetched alongside the resource on every load.
func WithFetches[T, F any](fetches ...Fetch) Option[T, F] {
	return func(e *Editor[T, F]) { e.also = append(e.also, fetches...) }
}

func WithPublisher[T, F any](p Publisher) Option[T, F] {
	return func(e *Editor[T, F]) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithLogger[T, F any](l *log.Logger) Option[T, F] {
	return func(e *Editor[T, F]) {
		if l != nil {
			e.logger = l.WithComponent(log.ComponentEditor)
		}
	}
}

func New[T, F any](res Resource[T, F], cfg Config, principal Principal, sink notify.Sink, opts ...Option[T, F]) *Editor[T, F] {
	if principal == nil {
		principal = Guest{}
	}
	if cfg.Gate == nil {
		cfg.Gate = AdminRole
	}
	e := &Editor[T, F]{
		res:       res,
		cfg:       cfg,
		principal: principal,
		sink:      sink,
		publisher: NopPublisher,
		logger:    log.Discard(),
		now:       time.Now,
		Phase:     Loading,
		Form:      res.Blank(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Allowed reports whether the gate shows the mutation controls.
func (e *Editor[T, F]) Allowed() bool {
	return e.cfg.Gate(e.principal)
}

// Editable reports whether rows get an edit control.
func (e *Editor[T, F]) Editable() bool {
	_, ok := e.res.(Updater[F])
	return ok && e.Allowed()
}

// Load fetches the list and any extra lists together. On failure the page
// ends Ready with empty lists and the failure is notified or logged as the
// page is configured. Results are dropped when ctx is done.
func (e *Editor[T, F]) Load(ctx context.Context) error {
	e.Phase = Loading
	var items []T
	fetches := append([]Fetch{Into(&items, e.res.List)}, e.also...)

	err := Join(ctx, fetches...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	e.Phase = Ready
	if err != nil {
		e.Items = nil
		e.fetchFailed(ctx, err)
		return fmt.Errorf("load %s: %w", e.res.Name(), err)
	}
	e.Items = items
	return nil
}

func (e *Editor[T, F]) fetchFailed(ctx context.Context, err error) {
	fields := log.NewFields().
		WithOperation(log.OpLoad).
		WithResource(e.res.Name(), 0).
		WithError(err)
	if e.cfg.OnFetchFailure == NotifyOnFailure && e.cfg.Messages.FetchFailed != "" {
		e.logger.WarnContext(ctx, "Fetch failed", fields.ToSlice()...)
		e.notify(ctx, e.cfg.Messages.FetchFailed, notify.Error)
		return
	}
	e.logger.ErrorContext(ctx, "Fetch failed", fields.ToSlice()...)
}

// OpenCreate opens the modal with a blank form.
func (e *Editor[T, F]) OpenCreate() {
	e.Modal = Modal{Kind: ModalCreating}
	e.Form = e.res.Blank()
}

// OpenEdit opens the modal prefilled from the loaded row with the given id.
// It reports false, leaving the modal closed, when the resource has no edit
// path or no such row is loaded.
func (e *Editor[T, F]) OpenEdit(id int64) bool {
	if _, ok := e.res.(Updater[F]); !ok {
		return false
	}
	for _, item := range e.Items {
		if e.res.ID(item) == id {
			e.Modal = Modal{Kind: ModalEditing, EditID: id}
			e.Form = e.res.FormOf(item)
			return true
		}
	}
	e.Modal = Modal{}
	return false
}

// Close discards the modal and its form.
func (e *Editor[T, F]) Close() {
	e.Modal = Modal{}
	e.Form = e.res.Blank()
}

// Submit creates a record when editID is zero and updates it otherwise. On
// success the modal closes, the form is cleared and the lists are re-fetched.
// On failure the modal stays open with the submitted form.
func (e *Editor[T, F]) Submit(ctx context.Context, editID int64, form F) error {
	if !e.Allowed() {
		return ErrForbidden
	}

	var updater Updater[F]
	if editID != 0 {
		u, ok := e.res.(Updater[F])
		if !ok {
			return ErrNoEditPath
		}
		updater = u
	}

	op, action, okMsg := log.OpCreate, ActionCreated, e.cfg.Messages.Created
	var err error
	if updater != nil {
		op, action, okMsg = log.OpUpdate, ActionUpdated, e.cfg.Messages.Updated
		err = updater.Update(ctx, editID, form)
	} else {
		err = e.res.Create(ctx, form)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "Save failed", log.NewFields().
			WithOperation(op).
			WithResource(e.res.Name(), editID).
			WithError(err).ToSlice()...)
		_ = e.Load(ctx)
		e.notify(ctx, e.cfg.Messages.SaveFailed, notify.Error)
		if updater != nil {
			e.Modal = Modal{Kind: ModalEditing, EditID: editID}
		} else {
			e.Modal = Modal{Kind: ModalCreating}
		}
		e.Form = form
		return fmt.Errorf("%s %s: %w", op, e.res.Name(), err)
	}

	e.notify(ctx, okMsg, notify.Success)
	e.Close()
	e.publish(ctx, action, editID)
	_ = e.Load(ctx)
	return nil
}

// Delete removes the record without confirmation and re-fetches the lists.
func (e *Editor[T, F]) Delete(ctx context.Context, id int64) error {
	if !e.Allowed() {
		return ErrForbidden
	}

	if err := e.res.Delete(ctx, id); err != nil {
		e.logger.WarnContext(ctx, "Delete failed", log.NewFields().
			WithOperation(log.OpDelete).
			WithResource(e.res.Name(), id).
			WithError(err).ToSlice()...)
		_ = e.Load(ctx)
		e.notify(ctx, e.cfg.Messages.DeleteFailed, notify.Error)
		return fmt.Errorf("delete %s %d: %w", e.res.Name(), id, err)
	}

	e.notify(ctx, e.cfg.Messages.Deleted, notify.Success)
	e.publish(ctx, ActionDeleted, id)
	_ = e.Load(ctx)
	return nil
}

func (e *Editor[T, F]) notify(ctx context.Context, msg string, sev notify.Severity) {
	if e.sink == nil || msg == "" {
		return
	}
	e.sink.Notify(ctx, msg, sev)
}

func (e *Editor[T, F]) publish(ctx context.Context, action string, id int64) {
	a := Activity{Resource: e.res.Name(), Action: action, ID: id, At: e.now().UTC()}
	if err := e.publisher.Publish(ctx, a); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish activity",
			log.FieldOperation, log.OpPublish,
			log.FieldResource, a.Resource,
			log.FieldError, err)
	}
}
