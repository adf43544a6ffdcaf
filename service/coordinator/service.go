package coordinator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/viant/authflow/internal/clock"
	"github.com/viant/authflow/internal/idgen"
	"github.com/viant/authflow/metrics"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/tracing"
)

// Worker performs the side effect of an intent. Returned errors and panics
// are converted into the feature Failed action unless the worker already put
// a terminal action.
type Worker func(ctx context.Context, effects *Effects, act *action.Action) error

type task struct {
	id         string
	ctx        context.Context
	generation uint64
	cancelFn   context.CancelFunc
}

type watcher struct {
	kind       action.Kind
	worker     Worker
	mux        sync.Mutex
	generation uint64
	active     *task
}

// Service coordinates watchers and their workers
type Service struct {
	store      Store
	watchers   map[action.Feature]*watcher
	mux        sync.RWMutex
	generation atomic.Uint64
	baseCtx    context.Context
	cancelFn   context.CancelFunc
	runMux     sync.Mutex
	closed     bool
	wg         sync.WaitGroup
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// New creates a coordinator bound to a store
func New(s Store, options ...Option) (*Service, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	ret := &Service{
		store:    s,
		watchers: make(map[action.Feature]*watcher),
		logger:   zerolog.Nop(),
	}
	ret.baseCtx, ret.cancelFn = context.WithCancel(context.Background())
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

// TakeLatest registers worker for the Requested kind of feature; a new intent
// cancels the worker still running for the same feature
func (s *Service) TakeLatest(feature action.Feature, worker Worker) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.watchers[feature]; ok {
		return fmt.Errorf("watcher already registered: %s", feature)
	}
	s.watchers[feature] = &watcher{kind: feature.RequestedOf(), worker: worker}
	return nil
}

func (s *Service) watcher(feature action.Feature) *watcher {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.watchers[feature]
}

// IsCurrent reports whether a terminal action comes from the active
// generation of its feature; actions of unwatched features are always current
func (s *Service) IsCurrent(act *action.Action) bool {
	w := s.watcher(act.Kind.Feature)
	if w == nil || act.Generation == 0 {
		return true
	}
	w.mux.Lock()
	defer w.mux.Unlock()
	return act.Generation == w.generation
}

// Generation returns the generation of the latest worker scheduled for feature;
// zero when none ran yet
func (s *Service) Generation(feature action.Feature) uint64 {
	w := s.watcher(feature)
	if w == nil {
		return 0
	}
	w.mux.Lock()
	defer w.mux.Unlock()
	return w.generation
}

// Observe reacts to a reduced action; it is invoked from the store dispatch
// loop, so the generation switch happens before any later action is reduced
func (s *Service) Observe(act *action.Action) {
	if act == nil || act.Kind.Lifecycle != action.Requested {
		return
	}
	w := s.watcher(act.Kind.Feature)
	if w == nil {
		return
	}
	s.runMux.Lock()
	defer s.runMux.Unlock()
	if s.closed {
		return
	}
	t := s.schedule(w)
	s.wg.Add(1)
	go s.run(w, t, act)
}

// schedule cancels the active task of w and installs a new one
func (s *Service) schedule(w *watcher) *task {
	ctx, cancel := context.WithCancel(s.baseCtx)
	t := &task{
		id:         idgen.New(),
		ctx:        ctx,
		generation: s.generation.Add(1),
		cancelFn:   cancel,
	}
	w.mux.Lock()
	previous := w.active
	w.active = t
	w.generation = t.generation
	w.mux.Unlock()
	if previous != nil {
		previous.cancelFn()
		s.logger.Debug().Str("feature", string(w.kind.Feature)).Str("task", previous.id).Msg("superseded worker")
	}
	return t
}

func (s *Service) run(w *watcher, t *task, act *action.Action) {
	defer s.wg.Done()
	defer t.cancelFn()
	ctx := t.ctx

	feature := string(w.kind.Feature)
	started := clock.Now()
	s.metrics.WorkflowStarted(feature)
	ctx, span := tracing.StartSpan(ctx, "worker "+feature, tracing.KindConsumer)
	span.WithAttributes(map[string]string{"feature": feature, "task.id": t.id})

	logger := s.logger.With().Str("feature", feature).Str("task", t.id).Uint64("generation", t.generation).Logger()
	effects := &Effects{
		ctx:        ctx,
		store:      s.store,
		feature:    w.kind.Feature,
		generation: t.generation,
		taskID:     t.id,
		logger:     logger,
	}
	err := s.invoke(ctx, w.worker, effects, act)
	if err != nil && !effects.Terminated() {
		if putErr := effects.Fail(err); putErr != nil && ctx.Err() == nil {
			logger.Error().Err(putErr).Msg("failed to put failure")
		}
	}

	outcome := metrics.OutcomeSucceeded
	switch {
	case ctx.Err() != nil:
		outcome = metrics.OutcomeSuperseded
	case err != nil, effects.Failed():
		outcome = metrics.OutcomeFailed
	}
	s.metrics.WorkflowFinished(feature, outcome, clock.Since(started).Seconds())
	tracing.EndSpan(span, err)
	logger.Debug().Str("outcome", outcome).Msg("worker finished")

	w.mux.Lock()
	if w.active == t {
		w.active = nil
	}
	w.mux.Unlock()
}

// invoke runs the worker converting a panic into an error
func (s *Service) invoke(ctx context.Context, worker Worker, effects *Effects, act *action.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return worker(ctx, effects, act)
}

// Active returns the id of the running worker of feature, or empty
func (s *Service) Active(feature action.Feature) string {
	w := s.watcher(feature)
	if w == nil {
		return ""
	}
	w.mux.Lock()
	defer w.mux.Unlock()
	if w.active == nil {
		return ""
	}
	return w.active.id
}

// Shutdown cancels all running workers and waits for them to return
func (s *Service) Shutdown() {
	s.runMux.Lock()
	s.closed = true
	s.cancelFn()
	s.runMux.Unlock()
	s.wg.Wait()
}
