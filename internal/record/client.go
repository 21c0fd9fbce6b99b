package record

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const maxErrorBody = 4 << 10

// TokenSource supplies the bearer token sent with each request.
type TokenSource interface {
	Token() string
}

// Options tunes the underlying HTTP client. The zero value performs a single
// attempt with no client-side timeout.
type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	Logger       zerolog.Logger
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client posts UploadRecords to the metadata endpoint.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
	tokens     TokenSource
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts Options) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		hc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		hc.RetryWaitMax = opts.RetryWaitMax
	}
	hc.HTTPClient.Timeout = opts.Timeout
	hc.Logger = leveledLogger{log: opts.Logger}
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

// SaveUploadDetails submits rec as a single POST request.
func (c *Client) SaveUploadDetails(ctx context.Context, rec UploadRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SaveUploadDetailsPath, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", SaveUploadDetailsPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unwrapError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func unwrapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		msg = envelope.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: msg}
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
