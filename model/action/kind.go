package action

import "strings"

// Feature identifies an asynchronous workflow, e.g. "FA/Auth/PASSWORD_RECOVERY".
type Feature string

// Lifecycle identifies the stage of a feature workflow.
type Lifecycle int

const (
	// Build is a pure, feature specific model-building stage with no side effect.
	Build Lifecycle = iota
	// Requested is the intent that starts a worker.
	Requested
	// Succeeded is the terminal success produced by a worker.
	Succeeded
	// Failed is the terminal failure produced by a worker.
	Failed
)

// String returns the lifecycle suffix
func (l Lifecycle) String() string {
	switch l {
	case Build:
		return "BUILD"
	case Requested:
		return "REQUESTED"
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// IsTerminal returns true for the lifecycle stages emitted by workers
func (l Lifecycle) IsTerminal() bool {
	return l == Succeeded || l == Failed
}

// Kind is a two-part action tag; kinds compare structurally, the string form
// is only used for logging and metrics labels.
type Kind struct {
	Feature   Feature
	Lifecycle Lifecycle
}

// String returns <Feature>_<LIFECYCLE>
func (k Kind) String() string {
	var b strings.Builder
	b.WriteString(string(k.Feature))
	b.WriteByte('_')
	b.WriteString(k.Lifecycle.String())
	return b.String()
}

// With returns the kind of the same feature at another lifecycle stage
func (k Kind) With(lifecycle Lifecycle) Kind {
	return Kind{Feature: k.Feature, Lifecycle: lifecycle}
}

// BuildOf returns the model-building kind of the feature
func (f Feature) BuildOf() Kind { return Kind{Feature: f, Lifecycle: Build} }

// RequestedOf returns the intent kind of the feature
func (f Feature) RequestedOf() Kind { return Kind{Feature: f, Lifecycle: Requested} }

// SucceededOf returns the success kind of the feature
func (f Feature) SucceededOf() Kind { return Kind{Feature: f, Lifecycle: Succeeded} }

// FailedOf returns the failure kind of the feature
func (f Feature) FailedOf() Kind { return Kind{Feature: f, Lifecycle: Failed} }
