package event

import (
	"time"

	"github.com/viant/authflow/internal/clock"
)

// Context describes what caused an event
type Context struct {
	Slice      string `json:"slice"`
	Kind       string `json:"kind"`
	Generation uint64 `json:"generation,omitempty"`
}

// Event carries data published to store subscribers
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
