package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ActionType groups the actions one processor handles, usually one domain.
type ActionType string

// Action is a request delivered to a processor.
type Action interface {
	ActionType() ActionType
}

// Processor handles every action of the types it registered for.
type Processor interface {
	OnAction(a Action)
}

// ProcessorFunc adapts a function to Processor. Function values are not
// comparable, so a ProcessorFunc cannot be passed to Unregister; use a
// pointer type when unregistration is needed.
type ProcessorFunc func(a Action)

// OnAction calls f(a).
func (f ProcessorFunc) OnAction(a Action) { f(a) }

// ErrNoProcessor is returned by Dispatch when no processor handles the
// action's type.
var ErrNoProcessor = errors.New("dispatch: no processor registered")

// RegistrationError reports a second registration for an action type.
type RegistrationError struct {
	Type ActionType
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("dispatch: action type %q already has a processor", e.Type)
}

// IsRegistrationError reports whether err is a RegistrationError.
func IsRegistrationError(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re)
}

// Dispatcher routes actions by type.
type Dispatcher struct {
	logger *slog.Logger
	strict bool

	mu         sync.RWMutex
	processors map[ActionType]Processor
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for registration warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithStrictRegistration makes duplicate registrations panic.
func WithStrictRegistration() Option {
	return func(d *Dispatcher) {
		d.strict = true
	}
}

// New returns an empty dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:     slog.Default(),
		processors: make(map[ActionType]Processor),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register makes p the processor for each of types. Types that already
// have a processor keep it; the first conflict is returned as a
// *RegistrationError after the remaining types are registered. Strict
// dispatchers panic instead.
func (d *Dispatcher) Register(p Processor, types ...ActionType) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var first error
	for _, t := range types {
		if _, taken := d.processors[t]; taken {
			err := &RegistrationError{Type: t}
			if d.strict {
				panic(err)
			}
			d.logger.Warn("duplicate processor registration ignored", "action_type", string(t))
			if first == nil {
				first = err
			}
			continue
		}
		d.processors[t] = p
	}
	return first
}

// Unregister removes every registration held by p.
func (d *Dispatcher) Unregister(p Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for t, registered := range d.processors {
		if registered == p {
			delete(d.processors, t)
		}
	}
}

// Dispatch delivers a to its processor.
func (d *Dispatcher) Dispatch(a Action) error {
	d.mu.RLock()
	p, ok := d.processors[a.ActionType()]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w for %q (%T)", ErrNoProcessor, a.ActionType(), a)
	}
	p.OnAction(a)
	return nil
}

// Handles reports whether a processor is registered for t.
func (d *Dispatcher) Handles(t ActionType) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.processors[t]
	return ok
}
