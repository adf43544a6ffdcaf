// Package store holds the process wide workflow state. Actions are published
// to a queue and consumed by a single dispatch goroutine, the only writer of
// the state; reads return immutable snapshots.
//
// After reducing an action the store notifies subscribers with the changed
// slices and then hands the action to observers such as the coordinator.
// Terminal actions rejected by the guard are dead-lettered without being
// reduced.
package store
