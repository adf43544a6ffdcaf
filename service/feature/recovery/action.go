// Package recovery implements the password recovery workflow: building the
// recovery model from the reactivation link, submitting the SMS code and
// resending the SMS.
package recovery

import (
	"github.com/viant/authflow/model/action"
)

// Slice is the store slice holding the recovery workflow state
const Slice = "forgotPasswordRecover"

const (
	// PasswordRecovery submits the recovery model
	PasswordRecovery action.Feature = "FA/Auth/PASSWORD_RECOVERY"
	// ResendSMS asks the API to send the recovery SMS again
	ResendSMS action.Feature = "FA/Auth/PASSWORD_RECOVERY_RESEND_SMS"
)

// Model fields
const (
	FieldReactivationGUID = "ReactivationGuid"
	FieldNewPassword      = "NewPassword"
	FieldSmsCode          = "SmsCode"
)

// BuildModel records the reactivation link query (its "id" field) and the new password
func BuildModel(query interface{}, password string) *action.Action {
	return action.WithMeta(PasswordRecovery.BuildOf(), query, password)
}

// RequestPasswordRecovery submits the recovery model with the SMS code
func RequestPasswordRecovery(code string) *action.Action {
	return action.New(PasswordRecovery.RequestedOf(), code)
}

// RequestResendSMS asks for a new SMS code
func RequestResendSMS() *action.Action {
	return action.New(ResendSMS.RequestedOf(), nil)
}
