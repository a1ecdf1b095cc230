package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(url string) *Client {
	return New(Config{URL: url, APIKey: "key", Model: "google/gemini-2.5-flash"}, zap.NewNop())
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Use a lockstitch."}}]}`))
	}))
	defer srv.Close()

	answer, err := newClient(srv.URL).Complete(context.Background(), SystemPrompt, "Which stitch for denim?")
	require.NoError(t, err)
	assert.Equal(t, "Use a lockstitch.", answer)

	assert.Equal(t, "google/gemini-2.5-flash", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: SystemPrompt}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "Which stitch for denim?"}, got.Messages[1])
}

func TestComplete_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", want: apperr.ErrRateLimited},
		{name: "payment required", status: http.StatusPaymentRequired, body: "pay", want: apperr.ErrPaymentRequired},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", want: apperr.ErrGateway},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: apperr.ErrGateway},
		{name: "bad json", status: http.StatusOK, body: `not json`, want: apperr.ErrGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Complete(context.Background(), SystemPrompt, "q")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apperr.ErrGateway)

			var gerr *apperr.GatewayError
			require.ErrorAs(t, err, &gerr)
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.status, gerr.StatusCode)
			}
		})
	}
}

func TestComplete_NotConfigured(t *testing.T) {
	t.Parallel()

	c := New(Config{URL: "http://127.0.0.1:1"}, zap.NewNop())
	_, err := c.Complete(context.Background(), SystemPrompt, "q")
	assert.ErrorIs(t, err, apperr.ErrGateway)
	assert.Contains(t, err.Error(), "not configured")
}
