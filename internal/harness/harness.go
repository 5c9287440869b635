package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/remote/fake"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/stores"
	"github.com/roach88/storesync/internal/testutil"
)

// DefaultStepTimeout bounds the wait for one action's completion.
const DefaultStepTimeout = 10 * time.Second

type options struct {
	database    string
	logger      *slog.Logger
	storeOpts   []stores.Option
	stepTimeout time.Duration
	pageSize    int
	lenient     bool
}

// Option configures Run.
type Option func(*options)

// WithDatabase runs against the cache at path instead of a fresh
// in-memory database.
func WithDatabase(path string) Option {
	return func(o *options) { o.database = path }
}

// WithLogger sets the logger handed to the provider, dispatcher and stores.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStoreOptions adds store options, e.g. a pagination window.
func WithStoreOptions(opts ...stores.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithDefaultPageSize fills page_size into steps that name none.
func WithDefaultPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// WithLenientDispatch lets a duplicate store registration log a warning
// instead of failing the run.
func WithLenientDispatch() Option {
	return func(o *options) { o.lenient = true }
}

// WithStepTimeout bounds the wait for each completion.
func WithStepTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.stepTimeout = d
		}
	}
}

// Harness drives one scenario: a provider, a fake remote and every store
// wired to one dispatcher.
type Harness struct {
	scenario   *Scenario
	provider   *storage.Provider
	remote     *fake.Service
	dispatcher *dispatch.Dispatcher
	timeout    time.Duration
	pageSize   int
}

// Run executes a scenario and returns its result. Object IDs and clock
// readings are deterministic, so the same scenario on a fresh database
// always commits the same graph.
//
// Action failures are recorded in the result; the returned error covers
// only setup failures and actions that never completed.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	o := options{
		database:    ":memory:",
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Sequential IDs would collide with rows already in a persistent cache.
	var ids storage.IDGenerator = storage.UUIDv7Generator{}
	if o.database == ":memory:" {
		ids = testutil.SequentialIDs("obj")
	}
	p, err := storage.Open(o.database, storage.WithIDGenerator(ids), storage.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer p.Close()

	svc := fake.New()
	seed, err := fake.DecodeSeed(&s.Remote)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	svc.Apply(seed)

	dopts := []dispatch.Option{dispatch.WithLogger(o.logger)}
	if !o.lenient {
		dopts = append(dopts, dispatch.WithStrictRegistration())
	}
	d := dispatch.New(dopts...)
	clock := testutil.NewDeterministicClock(time.Second)
	storeOpts := append([]stores.Option{
		stores.WithLogger(o.logger),
		stores.WithClock(clock.Now),
	}, o.storeOpts...)
	set, err := stores.Open(d, p, svc, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	defer set.Close()

	h := &Harness{
		scenario:   s,
		provider:   p,
		remote:     svc,
		dispatcher: d,
		timeout:    o.stepTimeout,
		pageSize:   o.pageSize,
	}

	result := NewResult()
	for i, step := range s.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap

	for _, msg := range EvaluateAssertions(snap, s.Site, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	site := h.scenario.Site

	if step.Remote.Kind != 0 {
		seed, err := fake.DecodeSeed(&step.Remote)
		if err != nil {
			return fmt.Errorf("steps[%d].remote: %w", i, err)
		}
		h.remote.Apply(seed)
	}
	if r := step.Remove; r != nil {
		for _, id := range r.Orders {
			h.remote.RemoveOrder(site, id)
		}
		for _, id := range r.Products {
			h.remote.RemoveProduct(site, id)
		}
		for _, id := range r.Refunds {
			h.remote.RemoveRefund(site, id)
		}
		for _, id := range r.ProductTags {
			h.remote.RemoveProductTag(site, id)
		}
		for _, id := range r.ShippingClasses {
			h.remote.RemoveShippingClass(site, id)
		}
	}
	if f := step.Fail; f != nil {
		injected, _ := injectedError(f.Kind)
		h.remote.FailNext(f.Op, injected)
	}

	trace := StepTrace{Index: i, Action: step.Action}
	if step.Action == "" {
		result.Steps = append(result.Steps, trace)
		return nil
	}

	args, err := encodeArgs(step.Args, site, h.pageSize)
	if err != nil {
		return fmt.Errorf("steps[%d]: encode args: %w", i, err)
	}
	stepCtx, cancel := context.WithTimeout(ctx, h.timeout)
	value, err := actions[step.Action](stepCtx, h.dispatcher, args)
	timedOut := stepCtx.Err() != nil && errors.Is(err, stepCtx.Err())
	cancel()
	if timedOut {
		return fmt.Errorf("steps[%d] %s: no completion: %w", i, step.Action, err)
	}

	trace.Outcome = Classify(err)
	trace.Value = value
	if err != nil {
		trace.Error = err.Error()
	}
	result.Steps = append(result.Steps, trace)

	want := OutcomeOK
	if step.Expect != nil && step.Expect.Outcome != "" {
		want = step.Expect.Outcome
	}
	if trace.Outcome != want {
		msg := fmt.Sprintf("steps[%d] %s: outcome %s, want %s", i, step.Action, trace.Outcome, want)
		if trace.Error != "" {
			msg += ": " + trace.Error
		}
		result.AddError(msg)
		return nil
	}
	if step.Expect != nil && step.Expect.Result != nil {
		ok, err := matchJSON(value, step.Expect.Result)
		if err != nil {
			return fmt.Errorf("steps[%d] %s: compare result: %w", i, step.Action, err)
		}
		if !ok {
			result.AddError(fmt.Sprintf("steps[%d] %s: result does not match expectation", i, step.Action))
		}
	}
	return nil
}
