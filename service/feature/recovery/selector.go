package recovery

import (
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/feature"
)

// Model returns the pending recovery request model
func Model(root state.Root) state.Model {
	return root.Slice(Slice).Model
}

// CorrelationID returns the reactivation id recorded by BuildModel
func CorrelationID(root state.Root) string {
	return feature.Text(Model(root).Get(FieldReactivationGUID))
}

// IsLoading returns true while a recovery call is in flight
func IsLoading(root state.Root) bool {
	return root.Slice(Slice).IsLoading
}

// ErrorText returns the recovery error message
func ErrorText(root state.Root) string {
	return root.Slice(Slice).ErrorText
}

// ShowSuccessMessage returns true once the recovery succeeded
func ShowSuccessMessage(root state.Root) bool {
	return root.Slice(Slice).ShowSuccessMessage
}
