package signin

import (
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/feature"
	"github.com/viant/toolbox"
)

// Reduce is the sign-in slice reducer
func Reduce(current state.Workflow, act *action.Action) state.Workflow {
	if act == nil {
		return current
	}
	switch act.Kind {
	case PasswordRequiredCheck.RequestedOf():
		return current.MergeModel(state.Model{FieldUserName: feature.Text(act.Payload)}).ClearError()
	case PasswordRequiredCheck.SucceededOf():
		return current.MergeModel(state.Model{FieldPasswordRequired: act.Payload != nil && toolbox.AsBoolean(act.Payload)})
	case PasswordRequiredCheck.FailedOf():
		return current.WithError(act.ErrorText())

	case SignIn.RequestedOf():
		fields := credentialFields(act.Payload)
		fields[FieldReturnURL] = feature.Field(act.Meta, FieldReturnURL)
		return current.MergeModel(fields).Loading(true).ClearError()
	case SignIn.SucceededOf():
		return current.MergeModel(state.Model{FieldRedirectURL: feature.Text(act.Payload)}).Loading(false).Success(true)
	case SignIn.FailedOf():
		return current.Loading(false).WithError(act.ErrorText())
	}
	return current
}

func credentialFields(payload interface{}) state.Model {
	switch actual := payload.(type) {
	case Request:
		return state.Model{FieldUserName: actual.UserName, FieldPassword: actual.Password}
	case *Request:
		if actual != nil {
			return state.Model{FieldUserName: actual.UserName, FieldPassword: actual.Password}
		}
	case map[string]interface{}:
		return state.Model{}.Merge(actual)
	}
	return state.Model{}
}
