package action

import (
	"fmt"
	"time"

	"github.com/viant/authflow/internal/clock"
	"github.com/viant/authflow/internal/idgen"
)

// Action represents an intent or terminal event flowing through the store
type Action struct {
	ID      string      `json:"id"`
	Kind    Kind        `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	// Generation identifies the worker run that produced a terminal action;
	// zero for actions dispatched by views.
	Generation uint64    `json:"generation,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// New creates an action
func New(kind Kind, payload interface{}) *Action {
	return &Action{ID: idgen.New(), Kind: kind, Payload: payload, CreatedAt: clock.Now()}
}

// WithMeta creates an action carrying a secondary value
func WithMeta(kind Kind, payload, meta interface{}) *Action {
	ret := New(kind, payload)
	ret.Meta = meta
	return ret
}

// Is returns true if action has the supplied kind
func (a *Action) Is(kind Kind) bool {
	return a != nil && a.Kind == kind
}

// ErrorText returns a user facing message carried by a Failed action payload
func (a *Action) ErrorText() string {
	if a == nil {
		return ""
	}
	return Message(a.Payload)
}

// Message normalizes an error payload into a message string
func Message(payload interface{}) string {
	switch actual := payload.(type) {
	case nil:
		return ""
	case string:
		return actual
	case error:
		return actual.Error()
	}
	return fmt.Sprint(payload)
}
