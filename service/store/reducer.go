package store

import (
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
)

// Reducer computes the next workflow state of a slice. Reducers are pure and
// total: kinds they do not handle return the state unchanged.
type Reducer func(current state.Workflow, act *action.Action) state.Workflow

// Selector projects a value out of the root state
type Selector[T any] func(root state.Root) T

// Reader exposes the current root state
type Reader interface {
	State() state.Root
}

// Select applies selector to the reader's current state
func Select[T any](reader Reader, selector Selector[T]) T {
	return selector(reader.State())
}

// Guard reports whether a terminal action is still current; stale actions are dropped
type Guard func(act *action.Action) bool

// Observer receives every reduced action
type Observer func(act *action.Action)

// Change describes a slice transition caused by an action
type Change struct {
	Previous state.Workflow
	Current  state.Workflow
	Action   *action.Action
}

type slice struct {
	name    string
	reducer Reducer
}
