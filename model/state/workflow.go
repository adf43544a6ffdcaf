package state

// Model is a pending request payload fragment keyed by field name
type Model map[string]interface{}

// Get returns a model field; nil model yields nil
func (m Model) Get(key string) interface{} {
	if m == nil {
		return nil
	}
	return m[key]
}

// Merge returns a new model with fields applied over m; m is left untouched
func (m Model) Merge(fields Model) Model {
	ret := make(Model, len(m)+len(fields))
	for k, v := range m {
		ret[k] = v
	}
	for k, v := range fields {
		ret[k] = v
	}
	return ret
}

// Clone returns a shallow copy of the model
func (m Model) Clone() Model {
	if m == nil {
		return nil
	}
	return m.Merge(nil)
}

// Workflow represents the state of one asynchronous feature workflow.
// Values are treated as immutable: every transition returns a new Workflow.
type Workflow struct {
	IsLoading          bool   `json:"isLoading" yaml:"isLoading"`
	ErrorText          string `json:"errorText,omitempty" yaml:"errorText,omitempty"`
	ShowSuccessMessage bool   `json:"showSuccessMessage" yaml:"showSuccessMessage"`
	Model              Model  `json:"model,omitempty" yaml:"model,omitempty"`
}

// Initial returns the workflow state every slice starts with
func Initial() Workflow {
	return Workflow{}
}

// HasError returns true when an error message is shown
func (w Workflow) HasError() bool {
	return w.ErrorText != ""
}

// MergeModel returns a copy of w with fields merged into its model
func (w Workflow) MergeModel(fields Model) Workflow {
	w.Model = w.Model.Merge(fields)
	return w
}

// Loading returns a copy of w with the loading flag set
func (w Workflow) Loading(loading bool) Workflow {
	w.IsLoading = loading
	return w
}

// WithError returns a copy of w with the error text replaced; empty clears it
func (w Workflow) WithError(text string) Workflow {
	w.ErrorText = text
	return w
}

// ClearError returns a copy of w without error text
func (w Workflow) ClearError() Workflow {
	return w.WithError("")
}

// Success returns a copy of w with the success message flag set
func (w Workflow) Success(show bool) Workflow {
	w.ShowSuccessMessage = show
	return w
}
