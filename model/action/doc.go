// Package action defines the tagged actions exchanged between views, the
// store and the coordinator. Every asynchronous feature declares exactly the
// Requested, Succeeded and Failed lifecycle variants plus an optional pure
// Build variant.
package action
