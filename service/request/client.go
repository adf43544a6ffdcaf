// Package request implements the client used by workers to reach the
// authentication API. A plain request carries no session context; an
// authenticated request attaches the session credentials.
package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrURLRequired is returned when a request has no URL
	ErrURLRequired = errors.New("request URL is required")
	// ErrDecode wraps response decoding failures
	ErrDecode = errors.New("failed to decode response")
)

// Client performs outbound calls against named endpoints
type Client interface {
	// Request performs a plain call; result, when not nil, receives the decoded JSON response
	Request(ctx context.Context, options *Options, result interface{}) error
	// AuthRequest posts body to URL with session credentials attached
	AuthRequest(ctx context.Context, body interface{}, URL string, result interface{}) error
}

// Options describes a plain request
type Options struct {
	URL    string
	Method string
	Body   interface{}
	Header http.Header
}

// method returns the HTTP method, defaulting to POST with a body and GET otherwise
func (o *Options) method() string {
	if o.Method != "" {
		return o.Method
	}
	if o.Body != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d %s", e.Code, http.StatusText(e.Code))
}

// IsStatus returns true if err is a StatusError with the supplied code
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == code
	}
	return false
}

// Func adapts a function pair to Client, mostly for tests
type Func struct {
	RequestFn     func(ctx context.Context, options *Options, result interface{}) error
	AuthRequestFn func(ctx context.Context, body interface{}, URL string, result interface{}) error
}

// Request calls RequestFn
func (f *Func) Request(ctx context.Context, options *Options, result interface{}) error {
	if f.RequestFn == nil {
		return fmt.Errorf("request %v: not implemented", options.URL)
	}
	return f.RequestFn(ctx, options, result)
}

// AuthRequest calls AuthRequestFn
func (f *Func) AuthRequest(ctx context.Context, body interface{}, URL string, result interface{}) error {
	if f.AuthRequestFn == nil {
		return fmt.Errorf("auth request %v: not implemented", URL)
	}
	return f.AuthRequestFn(ctx, body, URL, result)
}
