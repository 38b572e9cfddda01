package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when the external endpoint cannot produce a
// reply: transport error, timeout, or non-success status. Callers decide
// whether to retry; the client itself makes a single attempt.
var ErrUnavailable = errors.New("response generation unavailable")

// DefaultTimeout bounds the outbound call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// generateRequest is the JSON body sent to the external endpoint.
type generateRequest struct {
	Message string `json:"message"`
}

// Client calls an external HTTP endpoint to turn user content into a
// generated reply. The response body is treated as opaque reply text.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	log        *zerolog.Logger
}

// NewClient builds a gateway client. timeout bounds each call; zero means
// DefaultTimeout.
func NewClient(timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		log:        logger,
	}
}

// Generate posts the user's content to endpoint and returns the reply text.
// The call never hangs past the configured timeout and is not retried.
func (c *Client) Generate(ctx context.Context, endpoint, content string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{Message: content})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("gateway call failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("gateway returned non-success status")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return string(reply), nil
}
