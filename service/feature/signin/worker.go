package signin

import (
	"context"
	"errors"

	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/coordinator"
	"github.com/viant/authflow/service/feature"
	"github.com/viant/authflow/service/request"
)

// Endpoint paths relative to the API URL
const (
	PasswordRequiredPath = "/account/passwordrequired"
	SignInPath           = "/account/signin"
	// EmailParam carries the checked email
	EmailParam = "email"

	requestName = "signInRequest"
)

type passwordRequiredResponse struct {
	PasswordRequired bool
}

type signInResponse struct {
	feature.Envelope
	RedirectURL string `json:"RedirectUrl"`
}

// Service holds the sign-in workers
type Service struct {
	client request.Client
	apiURL string
}

// New creates sign-in workers calling apiURL
func New(client request.Client, apiURL string) (*Service, error) {
	if client == nil {
		return nil, errors.New("request client is required")
	}
	if apiURL == "" {
		return nil, errors.New("api URL is required")
	}
	return &Service{client: client, apiURL: apiURL}, nil
}

// Register adds the sign-in slice and watchers
func (s *Service) Register(registry feature.Registry) error {
	if err := registry.Register(Slice, state.Initial(), Reduce); err != nil {
		return err
	}
	if err := registry.TakeLatest(PasswordRequiredCheck, s.CheckPasswordRequired); err != nil {
		return err
	}
	return registry.TakeLatest(SignIn, s.SignIn)
}

// CheckPasswordRequired asks whether the typed account needs a password
func (s *Service) CheckPasswordRequired(ctx context.Context, effects *coordinator.Effects, _ *action.Action) error {
	userName := coordinator.Select[string](effects, func(root state.Root) string {
		return feature.Text(root.Slice(Slice).Model.Get(FieldUserName))
	})
	URL := feature.WithQuery(feature.Endpoint(s.apiURL, PasswordRequiredPath), EmailParam, userName)
	response := &passwordRequiredResponse{}
	if err := s.client.Request(ctx, &request.Options{URL: URL}, response); err != nil {
		return effects.Fail(err)
	}
	return effects.Succeed(response.PasswordRequired)
}

// SignIn posts the credentials and maps the status envelope to a terminal action
func (s *Service) SignIn(ctx context.Context, effects *coordinator.Effects, _ *action.Action) error {
	body := coordinator.Select[Request](effects, Credentials)
	response := &signInResponse{}
	if err := s.client.AuthRequest(ctx, &body, feature.Endpoint(s.apiURL, SignInPath), response); err != nil {
		return effects.Fail(err)
	}
	message, ok := response.Failure(requestName)
	if ok {
		return effects.Succeed(response.RedirectURL)
	}
	effects.Logger().Debug().Str("status", response.StatusText()).Msg("sign-in rejected")
	return effects.Fail(message)
}
