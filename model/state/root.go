package state

// Root maps a store slice name to its workflow state
type Root map[string]Workflow

// Slice returns the workflow state of a slice; absent slices yield the initial state
func (r Root) Slice(name string) Workflow {
	if r == nil {
		return Initial()
	}
	ret, ok := r[name]
	if !ok {
		return Initial()
	}
	return ret
}

// With returns a new root with the slice replaced
func (r Root) With(name string, workflow Workflow) Root {
	ret := make(Root, len(r)+1)
	for k, v := range r {
		ret[k] = v
	}
	ret[name] = workflow
	return ret
}
