package coordinator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/store"
)

// ErrSuperseded is returned by Put once a newer intent replaced the worker
var ErrSuperseded = errors.New("worker superseded by a newer request")

// Store is the state container capability handed to workers
type Store interface {
	store.Reader
	Dispatch(ctx context.Context, act *action.Action) error
}

// Effects gives a worker read access to state and the ability to put actions
type Effects struct {
	ctx        context.Context
	store      Store
	feature    action.Feature
	generation uint64
	taskID     string
	logger     zerolog.Logger
	terminal   atomic.Int32
}

// NewEffects creates effects for running a worker outside a coordinator, e.g. in tests
func NewEffects(ctx context.Context, s Store, feature action.Feature, generation uint64) *Effects {
	return &Effects{ctx: ctx, store: s, feature: feature, generation: generation, logger: zerolog.Nop()}
}

// State returns the current root snapshot
func (e *Effects) State() state.Root {
	return e.store.State()
}

// Feature returns the watched feature
func (e *Effects) Feature() action.Feature {
	return e.feature
}

// Generation returns the worker generation
func (e *Effects) Generation() uint64 {
	return e.generation
}

// Logger returns the worker logger
func (e *Effects) Logger() *zerolog.Logger {
	return &e.logger
}

// Put dispatches an action; terminal actions are tagged with the worker
// generation. Nothing is written once the worker has been superseded.
func (e *Effects) Put(act *action.Action) error {
	if err := e.ctx.Err(); err != nil {
		return ErrSuperseded
	}
	if act.Kind.Lifecycle.IsTerminal() {
		act.Generation = e.generation
	}
	if err := e.store.Dispatch(e.ctx, act); err != nil {
		return err
	}
	if act.Kind.Feature == e.feature && act.Kind.Lifecycle.IsTerminal() {
		e.terminal.Store(int32(act.Kind.Lifecycle))
	}
	return nil
}

// Succeed puts the feature Succeeded action
func (e *Effects) Succeed(payload interface{}) error {
	return e.Put(action.New(e.feature.SucceededOf(), payload))
}

// Fail puts the feature Failed action
func (e *Effects) Fail(payload interface{}) error {
	return e.Put(action.New(e.feature.FailedOf(), action.Message(payload)))
}

// Terminated returns true once a terminal action of the feature was put
func (e *Effects) Terminated() bool {
	return e.terminal.Load() != 0
}

// Failed returns true when the terminal action put was Failed
func (e *Effects) Failed() bool {
	return action.Lifecycle(e.terminal.Load()) == action.Failed
}

// Select applies selector to the worker's current state
func Select[T any](e *Effects, selector store.Selector[T]) T {
	return selector(e.State())
}
