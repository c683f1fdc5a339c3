// Package billing implements the bill lifecycle: creation, invitations and
// their resolution, finalization, payment tracking and monthly recurrence.
//
// Every operation runs as one storage transaction that starts by locking the
// bill it mutates. Notifications and metrics are emitted only after commit.
package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
)

// Engine runs bill lifecycle operations against a Store.
type Engine struct {
	store     storage.Store
	codes     CodeGenerator
	sink      notify.Sink
	metrics   *metrics.Metrics
	validator *validator.Validate
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets where events are published. Defaults to notify.Discard.
func WithSink(sink notify.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine.
func New(store storage.Store, codes CodeGenerator, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		codes:     codes,
		sink:      notify.Discard,
		validator: newValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// delivery is a notification queued for after commit.
type delivery struct {
	userID string
	event  notify.Event
}

// effects collects what a transaction wants to publish once it commits.
type effects struct {
	deliveries  []delivery
	transitions []models.BillStatus
	responses   []string
	created     []string
	payments    int
	spawned     int
}

func (fx *effects) notify(userID string, ev notify.Event) {
	fx.deliveries = append(fx.deliveries, delivery{userID: userID, event: ev})
}

func (fx *effects) transition(status models.BillStatus) {
	fx.transitions = append(fx.transitions, status)
}

// inTx runs fn in a transaction and flushes the collected effects on commit.
func (e *Engine) inTx(ctx context.Context, fn func(tx storage.Tx, fx *effects) error) error {
	fx := &effects{}
	if err := e.store.InTx(ctx, func(tx storage.Tx) error {
		return fn(tx, fx)
	}); err != nil {
		return err
	}
	e.flush(fx)
	return nil
}

func (e *Engine) flush(fx *effects) {
	for _, kind := range fx.created {
		e.metrics.BillCreated(kind)
	}
	for _, status := range fx.transitions {
		e.metrics.Transition(string(status))
	}
	for _, action := range fx.responses {
		e.metrics.Response(action)
	}
	for i := 0; i < fx.payments; i++ {
		e.metrics.Payment()
	}
	e.metrics.Spawned(fx.spawned)

	now := e.now()
	for _, d := range fx.deliveries {
		ev := d.event
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now
		}
		delivered := e.sink.Notify(d.userID, ev)
		e.metrics.Notification(delivered)
		if !delivered {
			slog.Debug("Notification not delivered", "user_id", d.userID, "type", ev.Type, "bill_id", ev.Data.BillID)
		}
	}
}

func (e *Engine) logActivity(ctx context.Context, tx storage.Tx, billID, userID string, action models.ActivityAction, details string) error {
	return tx.AppendActivity(ctx, &models.ActivityLogEntry{
		BillID:    billID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: e.now().Unix(),
	})
}

// displayName resolves a user's name for event payloads. Unknown users are
// shown by ID.
func displayName(ctx context.Context, q storage.Queries, userID string) string {
	user, err := q.GetUser(ctx, userID)
	if err != nil {
		return userID
	}
	return user.Name()
}

// lockOwned locks the bill and checks that actor created it.
func lockOwned(ctx context.Context, tx storage.Tx, billID, actor string) (*models.Bill, error) {
	bill, err := tx.LockBill(ctx, billID)
	if err != nil {
		return nil, notFound(err, "bill "+billID)
	}
	if bill.CreatedBy != actor {
		return nil, notFound(storage.ErrNotFound, "bill "+billID)
	}
	return bill, nil
}

func requireStatus(bill *models.Bill, allowed ...models.BillStatus) error {
	for _, s := range allowed {
		if bill.Status == s {
			return nil
		}
	}
	return &stateError{billID: bill.ID, status: bill.Status}
}

type stateError struct {
	billID string
	status models.BillStatus
}

func (e *stateError) Error() string {
	return "bill " + e.billID + " is " + string(e.status) + ": " + ErrInvalidState.Error()
}

func (e *stateError) Unwrap() error { return ErrInvalidState }
