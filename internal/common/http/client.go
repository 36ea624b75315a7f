package http

import (
	"net/http"
	"time"

	"swaad-chat/internal/common/logger"
)

// Client is the outbound HTTP client for model provider calls. It logs
// status and latency of every request without touching bodies.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient builds a client. A zero timeout leaves deadlines to the
// request context.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithFields(map[string]interface{}{"component": "http-client"}),
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)

	fields := map[string]interface{}{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"durationMs": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		c.logger.Warn("outbound request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	if resp.StatusCode >= 400 {
		c.logger.Warn("outbound request returned error status", fields)
	} else {
		c.logger.Debug("outbound request completed", fields)
	}
	return resp, nil
}
