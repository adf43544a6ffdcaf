package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier as string.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new task identifier.
func New() string { return NewFunc() }
