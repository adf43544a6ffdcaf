package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/viant/authflow/metrics"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/event"
	"github.com/viant/authflow/service/messaging"
	"github.com/viant/authflow/service/messaging/memory"
)

var (
	// ErrStale is the dead letter reason of terminal actions from superseded workers
	ErrStale = errors.New("stale terminal action")
	// ErrDuplicateSlice is returned when a slice is registered twice
	ErrDuplicateSlice = errors.New("slice already registered")
	// ErrNilAction is returned when dispatching nil
	ErrNilAction = errors.New("action is nil")
)

// Service is the state container
type Service struct {
	mux       sync.RWMutex
	root      state.Root
	slices    []*slice
	observers []Observer
	guard     Guard
	queue     messaging.Queue[action.Action]
	hub       *event.Hub[Change]
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	dropped   atomic.Int64
	reduced   atomic.Int64

	started  atomic.Bool
	cancelFn context.CancelFunc
	done     chan struct{}
}

// New creates a store
func New(options ...Option) *Service {
	ret := &Service{
		root:   state.Root{},
		hub:    event.NewHub[Change](),
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.queue == nil {
		ret.queue = memory.NewQueue[action.Action](memory.DefaultConfig())
	}
	return ret
}

// Register adds a named slice with its initial state and reducer
func (s *Service) Register(name string, initial state.Workflow, reducer Reducer) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, candidate := range s.slices {
		if candidate.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateSlice, name)
		}
	}
	s.slices = append(s.slices, &slice{name: name, reducer: reducer})
	s.root = s.root.With(name, initial)
	return nil
}

// Observe registers an observer invoked after every reduced action
func (s *Service) Observe(observer Observer) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.observers = append(s.observers, observer)
}

// SetGuard replaces the stale action guard
func (s *Service) SetGuard(guard Guard) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.guard = guard
}

// Subscribe registers a change listener and returns a function removing it
func (s *Service) Subscribe(listener event.Listener[Change]) func() {
	return s.hub.Subscribe(listener)
}

// State returns the current root snapshot; snapshots are never mutated
func (s *Service) State() state.Root {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.root
}

// Slice returns the current state of a named slice
func (s *Service) Slice(name string) state.Workflow {
	return s.State().Slice(name)
}

// Dropped returns the number of stale terminal actions discarded so far
func (s *Service) Dropped() int64 {
	return s.dropped.Load()
}

// Reduced returns the number of actions reduced so far
func (s *Service) Reduced() int64 {
	return s.reduced.Load()
}

// Dispatch enqueues an action for the dispatch loop
func (s *Service) Dispatch(ctx context.Context, act *action.Action) error {
	if act == nil {
		return ErrNilAction
	}
	return s.queue.Publish(ctx, act)
}

// Start launches the dispatch loop; it is a no-op when already started
func (s *Service) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	ctx, s.cancelFn = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

// Shutdown stops the dispatch loop and waits for it to exit
func (s *Service) Shutdown() {
	if !s.started.Load() || s.cancelFn == nil {
		return
	}
	s.cancelFn()
	<-s.done
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)
	for {
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn().Err(err).Msg("failed to consume action")
			continue
		}
		if msg == nil {
			continue
		}
		s.process(msg)
	}
}

func (s *Service) process(msg messaging.Message[action.Action]) {
	act := msg.T()
	s.mux.RLock()
	guard := s.guard
	s.mux.RUnlock()
	if act.Kind.Lifecycle.IsTerminal() && act.Generation != 0 && guard != nil && !guard(act) {
		s.dropped.Add(1)
		s.metrics.ActionDropped(act.Kind.String())
		s.logger.Debug().Str("kind", act.Kind.String()).Uint64("generation", act.Generation).Msg("dropped stale action")
		_ = msg.Nack(ErrStale)
		return
	}
	_ = msg.Ack()
	changes, observers := s.reduce(act)
	s.reduced.Add(1)
	s.metrics.ActionDispatched(act.Kind.String())
	for _, change := range changes {
		s.hub.Publish(change)
	}
	for _, observer := range observers {
		observer(act)
	}
}

// reduce applies act to every slice and returns the change events
func (s *Service) reduce(act *action.Action) ([]*event.Event[Change], []Observer) {
	s.mux.Lock()
	defer s.mux.Unlock()
	var changes []*event.Event[Change]
	root := s.root
	for _, candidate := range s.slices {
		previous := root.Slice(candidate.name)
		current := s.apply(candidate, previous, act)
		if reflect.DeepEqual(previous, current) {
			continue
		}
		root = root.With(candidate.name, current)
		changes = append(changes, event.NewEvent(&event.Context{
			Slice:      candidate.name,
			Kind:       act.Kind.String(),
			Generation: act.Generation,
		}, Change{Previous: previous, Current: current, Action: act}))
	}
	s.root = root
	return changes, append([]Observer(nil), s.observers...)
}

// apply runs a reducer; a panicking reducer leaves the slice unchanged
func (s *Service) apply(candidate *slice, previous state.Workflow, act *action.Action) (next state.Workflow) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("slice", candidate.name).Str("kind", act.Kind.String()).Interface("panic", r).Msg("reducer panicked")
			next = previous
		}
	}()
	return candidate.reducer(previous, act)
}

// WaitFor blocks until predicate holds for the named slice or ctx is done
func (s *Service) WaitFor(ctx context.Context, name string, predicate func(state.Workflow) bool) (state.Workflow, error) {
	matched := make(chan state.Workflow, 1)
	unsubscribe := s.Subscribe(func(e *event.Event[Change]) {
		if e.Context.Slice != name || !predicate(e.Data.Current) {
			return
		}
		select {
		case matched <- e.Data.Current:
		default:
		}
	})
	defer unsubscribe()
	if current := s.Slice(name); predicate(current) {
		return current, nil
	}
	select {
	case current := <-matched:
		return current, nil
	case <-ctx.Done():
		return s.Slice(name), ctx.Err()
	}
}
