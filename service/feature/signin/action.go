// Package signin implements the sign-in workflow: the password required check
// performed while the user types the email, and the credentialed sign-in call.
package signin

import (
	"github.com/go-playground/validator/v10"
	"github.com/viant/authflow/model/action"
)

// Slice is the store slice holding the sign-in workflow state
const Slice = "signIn"

const (
	// PasswordRequiredCheck asks whether the account needs a password
	PasswordRequiredCheck action.Feature = "FA/Auth/PASSWORD_REQUIRED_CHECK"
	// SignIn submits the credentials
	SignIn action.Feature = "FA/Auth/SIGN_IN"
)

// Model fields
const (
	FieldUserName         = "UserName"
	FieldPassword         = "Password"
	FieldReturnURL        = "ReturnUrl"
	FieldPasswordRequired = "PasswordRequired"
	FieldRedirectURL      = "RedirectUrl"
)

// Request is the sign-in request body
type Request struct {
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
	ReturnURL string `json:"ReturnUrl"`
}

var validate = validator.New()

// ValidateEmail returns an error unless email is a well formed address
func ValidateEmail(email string) error {
	return validate.Var(email, "required,email")
}

// RequestPasswordRequiredCheck starts the password required check for email
func RequestPasswordRequiredCheck(email string) *action.Action {
	return action.New(PasswordRequiredCheck.RequestedOf(), email)
}

// RequestSignIn submits the credentials; query is the sign-in page query carrying ReturnUrl
func RequestSignIn(query interface{}, userName, password string) *action.Action {
	return action.WithMeta(SignIn.RequestedOf(), Request{UserName: userName, Password: password}, query)
}
