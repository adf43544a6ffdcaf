package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/authflow/metrics"
)

type recoverResponse struct {
	Status                      int
	StatusAsUserFriendlyMessage string
}

func TestHTTPClient_Request(t *testing.T) {
	testCases := []struct {
		name        string
		handler     http.HandlerFunc
		options     *Options
		expectErr   bool
		expectCode  int
		expectDecod bool
		expected    recoverResponse
	}{
		{
			name: "GET decodes json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "abc", r.URL.Query().Get("model.passwordRecoverId"))
				assert.Empty(t, r.Header.Get("Authorization"))
				_, _ = io.WriteString(w, `{"Status":0,"StatusAsUserFriendlyMessage":"ok"}`)
			},
			options:  &Options{URL: "/password/recover/resendsms?model.passwordRecoverId=abc"},
			expected: recoverResponse{Status: 0, StatusAsUserFriendlyMessage: "ok"},
		},
		{
			name: "empty body is success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			options: &Options{URL: "/noop"},
		},
		{
			name: "non 2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusBadGateway)
			},
			options:    &Options{URL: "/fail"},
			expectErr:  true,
			expectCode: http.StatusBadGateway,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"Status":`)
			},
			options:     &Options{URL: "/broken"},
			expectErr:   true,
			expectDecod: true,
		},
		{
			name: "body implies POST",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "yes", r.Header.Get("X-Test"))
				_, _ = io.WriteString(w, `{"Status":3}`)
			},
			options:  &Options{URL: "/post", Body: map[string]string{"a": "b"}, Header: http.Header{"X-Test": []string{"yes"}}},
			expected: recoverResponse{Status: 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()
			client, err := New()
			require.NoError(t, err)

			options := *tc.options
			options.URL = server.URL + options.URL
			var actual recoverResponse
			err = client.Request(context.Background(), &options, &actual)
			if tc.expectErr {
				require.Error(t, err)
				if tc.expectCode != 0 {
					assert.True(t, IsStatus(err, tc.expectCode))
				}
				if tc.expectDecod {
					assert.ErrorIs(t, err, ErrDecode)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestHTTPClient_AuthRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1234", body["SmsCode"])
		_, _ = io.WriteString(w, `{"Status":2,"StatusAsUserFriendlyMessage":"bad code"}`)
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New("test_request", registry)
	client, err := New(WithCredentials(StaticToken("session-token")), WithMetrics(m))
	require.NoError(t, err)

	var actual recoverResponse
	err = client.AuthRequest(context.Background(), map[string]interface{}{"SmsCode": "1234"}, server.URL+"/password/recover", &actual)
	require.NoError(t, err)
	assert.Equal(t, recoverResponse{Status: 2, StatusAsUserFriendlyMessage: "bad code"}, actual)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodPost, "200")))
}

type failingCredentials struct{}

func (failingCredentials) Token(context.Context) (string, error) {
	return "", errors.New("no session")
}

func TestHTTPClient_Errors(t *testing.T) {
	client, err := New(WithCredentials(failingCredentials{}))
	require.NoError(t, err)

	assert.ErrorIs(t, client.Request(context.Background(), &Options{}, nil), ErrURLRequired)
	assert.ErrorIs(t, client.AuthRequest(context.Background(), nil, "", nil), ErrURLRequired)
	assert.EqualError(t, client.AuthRequest(context.Background(), nil, "http://127.0.0.1:1/x", nil), "no session")

	err = client.Request(context.Background(), &Options{URL: "http://127.0.0.1:1/unreachable"}, nil)
	assert.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusOK))
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := New(WithConfig(Config{RateLimit: 100, Burst: 1}))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = client.Request(ctx, &Options{URL: server.URL}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFunc(t *testing.T) {
	f := &Func{}
	assert.Error(t, f.Request(context.Background(), &Options{URL: "x"}, nil))
	assert.Error(t, f.AuthRequest(context.Background(), nil, "x", nil))
}
