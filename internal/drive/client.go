package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultBaseURL is the Google Drive v2 API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/drive/v2"

const userAgent = "gdrive-mirror/0.1"

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer per
// Go convention "accept interfaces, return structs"; auth.go provides the
// real implementation.
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for the Drive API. It handles request
// construction, authentication, and error classification. There is no
// retry loop and no request timeout: the mirror is a one-shot sequential
// run and a failed call surfaces immediately to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
}

// NewClient creates a Drive API client.
// baseURL is typically DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		token:      token,
		logger:     logger,
	}
}

// Do executes an HTTP request against the Drive API. The path is appended
// to the client's base URL. The caller is responsible for closing the
// response body on success.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	return c.doURL(ctx, method, c.baseURL+path, body)
}

// doURL executes a request against an absolute URL. Download and export
// URLs are served from separate hosts, so they bypass the base URL.
func (c *Client) doURL(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("drive: creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("drive: obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive: %s %s: %w", method, url, err)
	}

	// 2xx is success.
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	// Read and close body for error responses.
	errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	resp.Body.Close()

	if readErr != nil {
		errBody = nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    parseErrorMessage(errBody),
		Err:        classifyStatus(resp.StatusCode),
	}

	c.logger.Warn("request failed",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.String("message", apiErr.Message),
	)

	return nil, apiErr
}

// maxErrorBodyBytes bounds how much of an error response is read for the
// diagnostic message.
const maxErrorBodyBytes = 64 * 1024

// parseErrorMessage extracts the human-readable message from a Drive API
// error body. Falls back to the raw body when it is not the standard shape.
func parseErrorMessage(body []byte) string {
	if len(body) == 0 {
		return "(no response body)"
	}

	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}

	return string(body)
}
