// Package feature holds what the authentication feature workflows share: the
// API status envelope and its user facing message policy.
package feature

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/coordinator"
	"github.com/viant/authflow/service/store"
	"github.com/viant/toolbox"
)

// Status codes returned by the authentication API
const (
	StatusOK         = 0
	StatusError      = 1
	StatusValidation = 2
	StatusRejected   = 3
)

// GenericErrorMessage prefixes the server text for StatusError responses
const GenericErrorMessage = "Something went wrong. Please try again or contact your support helpdesk."

// Envelope is the status envelope of the authentication API. A missing or
// null Status decodes to nil and is never treated as StatusOK.
type Envelope struct {
	Status                      *int
	StatusAsUserFriendlyMessage string
}

// Code returns a status pointer, mostly for building envelopes in tests
func Code(status int) *int {
	return &status
}

// StatusText renders the status for messages and logs
func (e *Envelope) StatusText() string {
	if e.Status == nil {
		return "undefined"
	}
	return strconv.Itoa(*e.Status)
}

// Failure returns the message to show for a non OK envelope; ok is true for StatusOK.
// requestName is used in the diagnostic of unexpected codes.
func (e *Envelope) Failure(requestName string) (message string, ok bool) {
	if e.Status != nil {
		switch *e.Status {
		case StatusOK:
			return "", true
		case StatusError:
			return fmt.Sprintf("%s\nMessage: %s", GenericErrorMessage, e.StatusAsUserFriendlyMessage), false
		case StatusValidation, StatusRejected:
			return e.StatusAsUserFriendlyMessage, false
		}
	}
	return fmt.Sprintf("Unhandled %s status %s:\n%s.", requestName, e.StatusText(), e.StatusAsUserFriendlyMessage), false
}

// Endpoint joins the API base URL and path
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// WithQuery appends a single escaped query parameter
func WithQuery(URL, name, value string) string {
	separator := "?"
	if strings.Contains(URL, "?") {
		separator = "&"
	}
	return URL + separator + url.QueryEscape(name) + "=" + url.QueryEscape(value)
}

// Field returns a named field of a query-like payload; anything else yields nil
func Field(payload interface{}, name string) interface{} {
	switch actual := payload.(type) {
	case map[string]interface{}:
		return actual[name]
	case map[string]string:
		if v, ok := actual[name]; ok {
			return v
		}
	case url.Values:
		if _, ok := actual[name]; ok {
			return actual.Get(name)
		}
	}
	return nil
}

// Text converts a payload value to string; nil yields empty text
func Text(value interface{}) string {
	if value == nil {
		return ""
	}
	return toolbox.AsString(value)
}

// Registry is where a feature installs its slice and watchers
type Registry interface {
	Register(slice string, initial state.Workflow, reducer store.Reducer) error
	TakeLatest(feature action.Feature, worker coordinator.Worker) error
}
