package recovery

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
	RecoverPath   = "/password/recover"
	ResendSMSPath = "/password/recover/resendsms"
	// ResendSMSParam carries the correlation id of the resend request
	ResendSMSParam = "model.passwordRecoverId"

	requestName = "passwordRecoveryRequest"
)

// Service holds the recovery workers
type Service struct {
	client request.Client
	apiURL string
}

// New creates recovery workers calling apiURL
func New(client request.Client, apiURL string) (*Service, error) {
	if client == nil {
		return nil, errors.New("request client is required")
	}
	if apiURL == "" {
		return nil, errors.New("api URL is required")
	}
	return &Service{client: client, apiURL: apiURL}, nil
}

// Register adds the recovery slice and watchers
func (s *Service) Register(registry feature.Registry) error {
	if err := registry.Register(Slice, state.Initial(), Reduce); err != nil {
		return err
	}
	if err := registry.TakeLatest(PasswordRecovery, s.Recover); err != nil {
		return err
	}
	return registry.TakeLatest(ResendSMS, s.ResendSMS)
}

// Recover posts the recovery model and maps the status envelope to a terminal action
func (s *Service) Recover(ctx context.Context, effects *coordinator.Effects, _ *action.Action) error {
	model := coordinator.Select[state.Model](effects, Model)
	response := &feature.Envelope{}
	if err := s.client.AuthRequest(ctx, model, feature.Endpoint(s.apiURL, RecoverPath), response); err != nil {
		return effects.Fail(err)
	}
	message, ok := response.Failure(requestName)
	if ok {
		return effects.Succeed(nil)
	}
	effects.Logger().Debug().Str("status", response.StatusText()).Msg("password recovery rejected")
	return effects.Fail(message)
}

// ResendSMS requests a new SMS for the recorded correlation id; the response content is ignored
func (s *Service) ResendSMS(ctx context.Context, effects *coordinator.Effects, _ *action.Action) error {
	id := coordinator.Select[string](effects, CorrelationID)
	URL := feature.WithQuery(feature.Endpoint(s.apiURL, ResendSMSPath), ResendSMSParam, id)
	if err := s.client.Request(ctx, &request.Options{URL: URL}, nil); err != nil {
		return effects.Fail(err)
	}
	return effects.Succeed(nil)
}
