package stores

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/storage"
)

// Action types, one per domain.
const (
	OrdersActions            dispatch.ActionType = "orders"
	ProductsActions          dispatch.ActionType = "products"
	RefundsActions           dispatch.ActionType = "refunds"
	ProductTagsActions       dispatch.ActionType = "product_tags"
	ProductAttributesActions dispatch.ActionType = "product_attributes"
	ShippingClassesActions   dispatch.ActionType = "shipping_classes"
	ShipmentTrackingActions  dispatch.ActionType = "shipment_tracking"
	SettingsActions          dispatch.ActionType = "settings"
	StatsActions             dispatch.ActionType = "stats"
)

// DefaultFullSyncPageSize is the page size used by actions that walk every
// page of a remote list.
const DefaultFullSyncPageSize = 100

type options struct {
	logger       *slog.Logger
	validate     *validator.Validate
	window       pagination.Window
	fullPageSize int
	now          func() time.Time
}

// Option configures a store.
type Option func(*options)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWindow sets the page numbering of remote lists.
func WithWindow(w pagination.Window) Option {
	return func(o *options) {
		o.window = pagination.NewWindow(w.FirstPage)
	}
}

// WithValidator replaces the parameter validator.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) {
		o.validate = v
	}
}

// WithFullSyncPageSize sets the page size of actions that walk every page.
func WithFullSyncPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fullPageSize = n
		}
	}
}

// WithClock sets the time source for timestamps stores assign locally.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewValidator returns the validator stores use by default. Decimal fields
// validate as numbers, so `validate:"gt=0"` works on amounts.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterStructValidation(validateCreateRefund, CreateRefund{})
	return v
}

// Base carries what every store shares: the dispatcher registration, the
// persistence provider and the in-flight bookkeeping.
type Base struct {
	dispatcher   *dispatch.Dispatcher
	provider     *storage.Provider
	logger       *slog.Logger
	validate     *validator.Validate
	window       pagination.Window
	fullPageSize int
	now          func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	flights flights
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
	self   dispatch.Processor
}

func newBase(d *dispatch.Dispatcher, p *storage.Provider, name string, opts ...Option) *Base {
	o := options{
		logger:       slog.Default(),
		window:       pagination.NewWindow(pagination.DefaultFirstPage),
		fullPageSize: DefaultFullSyncPageSize,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.validate == nil {
		o.validate = NewValidator()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Base{
		dispatcher:   d,
		provider:     p,
		logger:       o.logger.With("store", name),
		validate:     o.validate,
		window:       o.window,
		fullPageSize: o.fullPageSize,
		now:          o.now,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (b *Base) register(self dispatch.Processor, t dispatch.ActionType) error {
	b.self = self
	if err := b.dispatcher.Register(self, t); err != nil {
		return fmt.Errorf("register %s store: %w", t, err)
	}
	return nil
}

// Close unregisters the store and cancels in-flight remote calls. Results
// of actions still running are dropped.
func (b *Base) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	if b.self != nil {
		b.dispatcher.Unregister(b.self)
	}
	b.cancel()
}

// Wait blocks until every accepted action has finished.
func (b *Base) Wait() {
	b.wg.Wait()
}

// Phase returns the lifecycle phase of op for scope.
func (b *Base) Phase(op, scope string) Phase {
	return b.flights.phase(op + "|" + scope)
}

func (b *Base) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

type flightCtxKey struct{}

func withFlight(ctx context.Context, fl *flight) context.Context {
	return context.WithValue(ctx, flightCtxKey{}, fl)
}

// write merges a successful response: it moves the action's flight,
// carried by ctx, to PhaseReconciling and applies fn.
func (b *Base) write(ctx context.Context, fn func(c *storage.Context) error) error {
	if fl, ok := ctx.Value(flightCtxKey{}).(*flight); ok {
		b.flights.set(fl, PhaseReconciling)
	}
	return b.apply(fn)
}

// apply runs fn on the writer context and saves it.
func (b *Base) apply(fn func(c *storage.Context) error) error {
	return b.provider.Writer().Perform(func(c *storage.Context) error {
		if err := fn(c); err != nil {
			return err
		}
		_, err := c.Save()
		return err
	})
}

func (b *Base) check(op string, params any) error {
	if err := b.validate.Struct(params); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	return nil
}

// scope joins the parts identifying what an action touches.
func scope(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "/")
}

// submit runs fn for op in its own goroutine and delivers the result to
// done. Parameters are validated first; fn never runs for invalid input.
// The flight is reserved before submit returns, so actions on one scope run
// in the order they were dispatched. Completions run before the scope is
// released, so a completion must not wait for another action on the same
// scope.
func submit[T any](b *Base, op, key string, params any, done dispatch.Completion[T], fn func(ctx context.Context) (T, error)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Debug("action dropped after close", "op", op, "scope", key)
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	if err := b.check(op, params); err != nil {
		b.logger.Warn("action rejected", "op", op, "error", err)
		go func() {
			defer b.wg.Done()
			deliver(b, op, key, done, dispatch.Failure[T](err))
		}()
		return
	}

	flightKey := op + "|" + key
	fl := b.flights.reserve(flightKey)

	go func() {
		defer b.wg.Done()

		release, err := b.flights.start(b.ctx, flightKey, fl)
		if err != nil {
			deliver(b, op, key, done, dispatch.Failure[T](err))
			return
		}
		defer release()

		b.logger.Debug("action requesting", "op", op, "scope", key)
		v, err := fn(withFlight(b.ctx, fl))
		if err != nil {
			b.flights.set(fl, PhaseFailed)
			b.logger.Info("action failed", "op", op, "scope", key, "error", err)
			deliver(b, op, key, done, dispatch.Failure[T](err))
			return
		}
		b.flights.set(fl, PhaseCompleted)
		deliver(b, op, key, done, dispatch.Success(v))
	}()
}

func deliver[T any](b *Base, op, key string, done dispatch.Completion[T], r dispatch.Result[T]) {
	if b.isClosed() {
		b.logger.Debug("result dropped after close", "op", op, "scope", key, "ok", r.OK())
		return
	}
	done.Complete(r)
}
