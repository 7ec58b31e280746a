package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// AnswerPath is where the answer sits in a generateContent response.
const AnswerPath = "candidates.0.content.parts.0.text"

const requestEnvelope = `{"contents":[{"parts":[{"text":""}]}]}`

// ErrStatus is returned for a non-2xx response.
var ErrStatus = errors.New("remote: unexpected status")

// HTTPClient posts generateContent requests to a fixed endpoint URL.
type HTTPClient struct {
	endpoint    string
	apiKey      string
	httpClient  *http.Client
	retryDelays []time.Duration
}

// NewHTTPClient returns a client for endpoint. The API key, when set, is sent
// in the x-goog-api-key header.
func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *HTTPClient) WithHTTPClient(hc *http.Client) *HTTPClient {
	c.httpClient = hc
	return c
}

// WithRetries makes the client retry server-side failures once per delay.
func (c *HTTPClient) WithRetries(delays ...time.Duration) *HTTPClient {
	c.retryDelays = delays
	return c
}

func (c *HTTPClient) Ask(ctx context.Context, q Query) (string, error) {
	body, err := sjson.SetBytes([]byte(requestEnvelope), "contents.0.parts.0.text", q.Prompt())
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	return withRetries(ctx, c.retryDelays, func() (string, error) {
		return c.post(ctx, body)
	})
}

func (c *HTTPClient) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	log.Debug().Str("endpoint", c.endpoint).Msg("POST generateContent")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "http error")
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read error")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Wrapf(ErrStatus, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}
	if !gjson.ValidBytes(respBytes) {
		return "", errors.New("response is not valid JSON")
	}
	return gjson.GetBytes(respBytes, AnswerPath).String(), nil
}
