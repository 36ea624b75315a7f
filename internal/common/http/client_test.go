package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"swaad-chat/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "success", status: http.StatusOK},
		{name: "error status is returned not raised", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(time.Second, logger.NewTestLogger(t))
			req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/chat", nil)
			require.NoError(t, err)

			resp, err := client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestClient_Do_TransportError(t *testing.T) {
	client := NewClient(50*time.Millisecond, logger.NewTestLogger(t))
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1/unreachable", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.Error(t, err)
}
