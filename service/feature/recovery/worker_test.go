package recovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/coordinator"
	"github.com/viant/authflow/service/feature"
	"github.com/viant/authflow/service/request"
	"github.com/viant/authflow/service/store"
)

const apiURL = "https://api.example.com/"

// recorder is a store stub keeping every dispatched action
type recorder struct {
	mux     sync.Mutex
	root    state.Root
	actions []*action.Action
}

func (r *recorder) State() state.Root {
	return r.root
}

func (r *recorder) Dispatch(_ context.Context, act *action.Action) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.actions = append(r.actions, act)
	return nil
}

func recoveryRoot(model state.Model) state.Root {
	return state.Root{}.With(Slice, state.Initial().MergeModel(model).Loading(true))
}

func TestService_Recover(t *testing.T) {
	model := state.Model{FieldReactivationGUID: "abc", FieldNewPassword: "secret", FieldSmsCode: "1234"}
	testCases := []struct {
		name         string
		envelope     feature.Envelope
		err          error
		expectKind   action.Kind
		expectText   string
		expectSubstr []string
	}{
		{
			name:       "status ok",
			envelope:   feature.Envelope{Status: feature.Code(0)},
			expectKind: PasswordRecovery.SucceededOf(),
		},
		{
			name:       "generic error",
			envelope:   feature.Envelope{Status: feature.Code(1), StatusAsUserFriendlyMessage: "db down"},
			expectKind: PasswordRecovery.FailedOf(),
			expectText: feature.GenericErrorMessage + "\nMessage: db down",
		},
		{
			name:       "validation",
			envelope:   feature.Envelope{Status: feature.Code(2), StatusAsUserFriendlyMessage: "bad code"},
			expectKind: PasswordRecovery.FailedOf(),
			expectText: "bad code",
		},
		{
			name:       "rejected",
			envelope:   feature.Envelope{Status: feature.Code(3), StatusAsUserFriendlyMessage: "expired link"},
			expectKind: PasswordRecovery.FailedOf(),
			expectText: "expired link",
		},
		{
			name:         "unhandled status",
			envelope:     feature.Envelope{Status: feature.Code(99), StatusAsUserFriendlyMessage: "?"},
			expectKind:   PasswordRecovery.FailedOf(),
			expectSubstr: []string{"99", "?", "passwordRecoveryRequest"},
		},
		{
			name:       "call error",
			err:        errors.New("network down"),
			expectKind: PasswordRecovery.FailedOf(),
			expectText: "network down",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calledURL string
			var calledBody interface{}
			client := &request.Func{AuthRequestFn: func(ctx context.Context, body interface{}, URL string, result interface{}) error {
				calledURL = URL
				calledBody = body
				if tc.err != nil {
					return tc.err
				}
				*result.(*feature.Envelope) = tc.envelope
				return nil
			}}
			srv, err := New(client, apiURL)
			require.NoError(t, err)
			rec := &recorder{root: recoveryRoot(model)}
			effects := coordinator.NewEffects(context.Background(), rec, PasswordRecovery, 7)

			require.NoError(t, srv.Recover(context.Background(), effects, RequestPasswordRecovery("1234")))
			assert.Equal(t, "https://api.example.com/password/recover", calledURL)
			assert.Equal(t, model, calledBody)
			require.Len(t, rec.actions, 1)
			put := rec.actions[0]
			assert.Equal(t, tc.expectKind, put.Kind)
			assert.EqualValues(t, 7, put.Generation)
			if tc.expectText != "" {
				assert.Equal(t, tc.expectText, put.ErrorText())
			}
			for _, fragment := range tc.expectSubstr {
				assert.Contains(t, put.ErrorText(), fragment)
			}
		})
	}
}

func TestService_RecoverMissingStatus(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "empty object", body: `{}`},
		{name: "null status", body: `{"Status":null}`},
		{name: "message only", body: `{"StatusAsUserFriendlyMessage":"x"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()
			client, err := request.New()
			require.NoError(t, err)
			srv, err := New(client, server.URL)
			require.NoError(t, err)
			rec := &recorder{root: recoveryRoot(state.Model{FieldSmsCode: "1"})}
			effects := coordinator.NewEffects(context.Background(), rec, PasswordRecovery, 1)

			require.NoError(t, srv.Recover(context.Background(), effects, RequestPasswordRecovery("1")))
			require.Len(t, rec.actions, 1)
			assert.Equal(t, PasswordRecovery.FailedOf(), rec.actions[0].Kind)
			assert.Contains(t, rec.actions[0].ErrorText(), "Unhandled passwordRecoveryRequest status undefined")
		})
	}
}

func TestService_ResendSMS(t *testing.T) {
	testCases := []struct {
		name       string
		id         string
		err        error
		expectURL  string
		expectKind action.Kind
		expectText string
	}{
		{
			name:       "success",
			id:         "abc",
			expectURL:  "https://api.example.com/password/recover/resendsms?model.passwordRecoverId=abc",
			expectKind: ResendSMS.SucceededOf(),
		},
		{
			name:       "escaped id",
			id:         "a b&c",
			expectURL:  "https://api.example.com/password/recover/resendsms?model.passwordRecoverId=a+b%26c",
			expectKind: ResendSMS.SucceededOf(),
		},
		{
			name:       "call error",
			id:         "abc",
			err:        &request.StatusError{Code: 500},
			expectURL:  "https://api.example.com/password/recover/resendsms?model.passwordRecoverId=abc",
			expectKind: ResendSMS.FailedOf(),
			expectText: "request failed with status 500 Internal Server Error",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var options *request.Options
			client := &request.Func{RequestFn: func(ctx context.Context, o *request.Options, result interface{}) error {
				options = o
				return tc.err
			}}
			srv, err := New(client, apiURL)
			require.NoError(t, err)
			rec := &recorder{root: recoveryRoot(state.Model{FieldReactivationGUID: tc.id})}
			effects := coordinator.NewEffects(context.Background(), rec, ResendSMS, 1)

			require.NoError(t, srv.ResendSMS(context.Background(), effects, RequestResendSMS()))
			require.NotNil(t, options)
			assert.Equal(t, tc.expectURL, options.URL)
			assert.Nil(t, options.Body)
			require.Len(t, rec.actions, 1)
			assert.Equal(t, tc.expectKind, rec.actions[0].Kind)
			assert.Equal(t, tc.expectText, rec.actions[0].ErrorText())
		})
	}
}

func TestService_Superseded(t *testing.T) {
	client := &request.Func{AuthRequestFn: func(ctx context.Context, body interface{}, URL string, result interface{}) error {
		return nil
	}}
	srv, err := New(client, apiURL)
	require.NoError(t, err)
	rec := &recorder{root: recoveryRoot(nil)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	effects := coordinator.NewEffects(ctx, rec, PasswordRecovery, 1)
	assert.ErrorIs(t, srv.Recover(ctx, effects, RequestPasswordRecovery("1")), coordinator.ErrSuperseded)
	assert.Empty(t, rec.actions)
}

func TestNew(t *testing.T) {
	_, err := New(nil, apiURL)
	assert.Error(t, err)
	_, err = New(&request.Func{}, "")
	assert.Error(t, err)
}

// registry wires a real store and coordinator the way the service facade does
func registry(t *testing.T, client request.Client) *store.Service {
	t.Helper()
	s := store.New()
	c, err := coordinator.New(s)
	require.NoError(t, err)
	s.SetGuard(c.IsCurrent)
	s.Observe(c.Observe)
	srv, err := New(client, apiURL)
	require.NoError(t, err)
	require.NoError(t, srv.Register(&pair{store: s, coordinator: c}))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		c.Shutdown()
		s.Shutdown()
	})
	return s
}

type pair struct {
	store       *store.Service
	coordinator *coordinator.Service
}

func (p *pair) Register(slice string, initial state.Workflow, reducer store.Reducer) error {
	return p.store.Register(slice, initial, reducer)
}

func (p *pair) TakeLatest(feature action.Feature, worker coordinator.Worker) error {
	return p.coordinator.TakeLatest(feature, worker)
}

func TestRecovery_LatestWins(t *testing.T) {
	release := make(chan struct{})
	var mux sync.Mutex
	calls := 0
	client := &request.Func{AuthRequestFn: func(ctx context.Context, body interface{}, URL string, result interface{}) error {
		mux.Lock()
		calls++
		first := calls == 1
		mux.Unlock()
		envelope := result.(*feature.Envelope)
		if first {
			<-release
			envelope.Status = feature.Code(feature.StatusValidation)
			envelope.StatusAsUserFriendlyMessage = "stale failure"
			return nil
		}
		envelope.Status = feature.Code(feature.StatusOK)
		return nil
	}}
	s := registry(t, client)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, s.Dispatch(ctx, BuildModel(map[string]interface{}{"id": "abc"}, "secret")))
	require.NoError(t, s.Dispatch(ctx, RequestPasswordRecovery("1111")))
	_, err := s.WaitFor(ctx, Slice, func(w state.Workflow) bool { return w.Model.Get(FieldSmsCode) == "1111" })
	require.NoError(t, err)
	require.NoError(t, s.Dispatch(ctx, RequestPasswordRecovery("2222")))

	current, err := s.WaitFor(ctx, Slice, func(w state.Workflow) bool { return w.ShowSuccessMessage })
	require.NoError(t, err)
	close(release)

	assert.False(t, current.IsLoading)
	assert.Equal(t, "", current.ErrorText)
	assert.Equal(t, "2222", current.Model.Get(FieldSmsCode))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "", ErrorText(s.State()))
	assert.True(t, ShowSuccessMessage(s.State()))
}
