// Package model contains the value types shared by the store, the
// coordinator and the feature packages.
//
// The `action` sub-package defines the tagged actions dispatched by views and
// workers; the `state` sub-package defines the fixed-shape workflow record
// held per store slice.
package model
