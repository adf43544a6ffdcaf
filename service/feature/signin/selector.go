package signin

import (
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/feature"
)

// PasswordRequired returns true when the checked account needs a password
func PasswordRequired(root state.Root) bool {
	required, _ := root.Slice(Slice).Model.Get(FieldPasswordRequired).(bool)
	return required
}

// IsLoading returns true while the sign-in call is in flight
func IsLoading(root state.Root) bool {
	return root.Slice(Slice).IsLoading
}

// ErrorText returns the sign-in error message
func ErrorText(root state.Root) string {
	return root.Slice(Slice).ErrorText
}

// Credentials returns the credentials recorded by the last sign-in request
func Credentials(root state.Root) Request {
	model := root.Slice(Slice).Model
	return Request{
		UserName:  feature.Text(model.Get(FieldUserName)),
		Password:  feature.Text(model.Get(FieldPassword)),
		ReturnURL: feature.Text(model.Get(FieldReturnURL)),
	}
}

// RedirectURL returns the location to open after a successful sign-in
func RedirectURL(root state.Root) string {
	return feature.Text(root.Slice(Slice).Model.Get(FieldRedirectURL))
}
