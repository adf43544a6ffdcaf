package recovery

import (
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/feature"
)

// Reduce is the recovery slice reducer.
// A new request does not reset ShowSuccessMessage.
func Reduce(current state.Workflow, act *action.Action) state.Workflow {
	if act == nil {
		return current
	}
	switch act.Kind {
	case PasswordRecovery.BuildOf():
		return current.MergeModel(state.Model{
			FieldReactivationGUID: feature.Field(act.Payload, "id"),
			FieldNewPassword:      act.Meta,
		}).ClearError()
	case PasswordRecovery.RequestedOf():
		return current.MergeModel(requestFields(act.Payload)).Loading(true).ClearError()
	case PasswordRecovery.SucceededOf():
		return current.Loading(false).Success(true)
	case PasswordRecovery.FailedOf():
		return current.Loading(false).WithError(act.ErrorText())

	case ResendSMS.RequestedOf():
		return current.Loading(true)
	case ResendSMS.SucceededOf():
		return current.Loading(false)
	case ResendSMS.FailedOf():
		return current.Loading(false).WithError(act.ErrorText())
	}
	return current
}

// requestFields maps a Requested payload onto model fields: maps merge field
// by field, any other value is the SMS code
func requestFields(payload interface{}) state.Model {
	switch actual := payload.(type) {
	case state.Model:
		return actual
	case map[string]interface{}:
		return state.Model(actual)
	}
	return state.Model{FieldSmsCode: payload}
}
