package request

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/scy"
)

// Credentials supplies the session token attached to authenticated requests
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed session token
type StaticToken string

// Token returns the token
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// SecretCredentials loads the session token once from a scy secret resource
type SecretCredentials struct {
	URL     string
	Key     string
	service *scy.Service
	once    sync.Once
	token   string
	err     error
}

// NewSecretCredentials creates credentials backed by a (possibly encrypted) secret URL
func NewSecretCredentials(URL, key string) *SecretCredentials {
	return &SecretCredentials{URL: URL, Key: key, service: scy.New()}
}

// Token returns the revealed secret
func (s *SecretCredentials) Token(ctx context.Context) (string, error) {
	s.once.Do(func() {
		resource := scy.NewResource(nil, s.URL, s.Key)
		secret, err := s.service.Load(ctx, resource)
		if err != nil {
			s.err = fmt.Errorf("failed to load session credentials from %s: %w", s.URL, err)
			return
		}
		s.token = strings.TrimSpace(secret.String())
	})
	return s.token, s.err
}
