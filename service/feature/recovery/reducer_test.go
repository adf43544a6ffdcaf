package recovery

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
)

func TestReduce(t *testing.T) {
	loading := state.Initial().Loading(true)
	withModel := state.Initial().MergeModel(state.Model{FieldReactivationGUID: "abc", FieldNewPassword: "secret"}).WithError("old")

	testCases := []struct {
		name     string
		current  state.Workflow
		action   *action.Action
		expected state.Workflow
	}{
		{
			name:     "build model from query",
			current:  withModel,
			action:   BuildModel(map[string]interface{}{"id": "guid-1"}, "new-secret"),
			expected: state.Workflow{Model: state.Model{FieldReactivationGUID: "guid-1", FieldNewPassword: "new-secret"}},
		},
		{
			name:     "build model from url values",
			current:  state.Initial(),
			action:   BuildModel(url.Values{"id": []string{"guid-2"}}, "pwd"),
			expected: state.Workflow{Model: state.Model{FieldReactivationGUID: "guid-2", FieldNewPassword: "pwd"}},
		},
		{
			name:     "build model tolerates malformed query",
			current:  state.Initial(),
			action:   BuildModel(42, "pwd"),
			expected: state.Workflow{Model: state.Model{FieldReactivationGUID: nil, FieldNewPassword: "pwd"}},
		},
		{
			name:    "requested merges code over prior model",
			current: withModel,
			action:  RequestPasswordRecovery("1234"),
			expected: state.Workflow{IsLoading: true, Model: state.Model{
				FieldReactivationGUID: "abc", FieldNewPassword: "secret", FieldSmsCode: "1234",
			}},
		},
		{
			name:    "requested merges map payload",
			current: withModel,
			action:  action.New(PasswordRecovery.RequestedOf(), map[string]interface{}{FieldSmsCode: "9"}),
			expected: state.Workflow{IsLoading: true, Model: state.Model{
				FieldReactivationGUID: "abc", FieldNewPassword: "secret", FieldSmsCode: "9",
			}},
		},
		{
			name:     "requested keeps prior success flag",
			current:  state.Initial().Success(true),
			action:   RequestPasswordRecovery("1"),
			expected: state.Workflow{IsLoading: true, ShowSuccessMessage: true, Model: state.Model{FieldSmsCode: "1"}},
		},
		{
			name:     "succeeded",
			current:  loading,
			action:   action.New(PasswordRecovery.SucceededOf(), nil),
			expected: state.Workflow{ShowSuccessMessage: true},
		},
		{
			name:     "failed with text",
			current:  loading,
			action:   action.New(PasswordRecovery.FailedOf(), "x"),
			expected: state.Workflow{ErrorText: "x"},
		},
		{
			name:     "failed when not loading",
			current:  state.Initial(),
			action:   action.New(PasswordRecovery.FailedOf(), errors.New("network down")),
			expected: state.Workflow{ErrorText: "network down"},
		},
		{
			name:     "resend requested keeps error",
			current:  state.Initial().WithError("old"),
			action:   RequestResendSMS(),
			expected: state.Workflow{IsLoading: true, ErrorText: "old"},
		},
		{
			name:     "resend succeeded",
			current:  loading,
			action:   action.New(ResendSMS.SucceededOf(), nil),
			expected: state.Workflow{},
		},
		{
			name:     "resend failed",
			current:  loading,
			action:   action.New(ResendSMS.FailedOf(), "sms down"),
			expected: state.Workflow{ErrorText: "sms down"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := Reduce(tc.current, tc.action)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestReduce_Identity(t *testing.T) {
	current := state.Initial().MergeModel(state.Model{FieldSmsCode: "1"}).Loading(true)
	unknown := []*action.Action{
		nil,
		action.New(action.Kind{Feature: "FA/Auth/SIGN_IN", Lifecycle: action.Requested}, "x"),
		action.New(ResendSMS.BuildOf(), "x"),
		action.New(action.Kind{Feature: PasswordRecovery, Lifecycle: action.Lifecycle(42)}, nil),
	}
	for _, act := range unknown {
		assert.Equal(t, current, Reduce(current, act))
	}
}

func TestSelectors(t *testing.T) {
	var empty state.Root
	assert.Nil(t, Model(empty))
	assert.Equal(t, "", CorrelationID(empty))
	assert.False(t, IsLoading(empty))
	assert.Equal(t, "", ErrorText(empty))
	assert.False(t, ShowSuccessMessage(empty))

	root := empty.With(Slice, state.Workflow{
		IsLoading:          true,
		ErrorText:          "e",
		ShowSuccessMessage: true,
		Model:              state.Model{FieldReactivationGUID: "guid"},
	})
	assert.Equal(t, "guid", CorrelationID(root))
	assert.True(t, IsLoading(root))
	assert.Equal(t, "e", ErrorText(root))
	assert.True(t, ShowSuccessMessage(root))
}
