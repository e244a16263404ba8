package httpcall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arnavsurve/dropreport/pkg/retry"
	"github.com/arnavsurve/dropreport/pkg/types"
)

const (
	DefaultTimeout = 15 * time.Second
	userAgent      = "Dropreport-Http-Client/1.0"
	previewLimit   = 256
)

// Request is one fully substituted HTTP call.
type Request struct {
	Method  string
	URL     string
	Params  map[string]string
	Body    map[string]any
	Headers map[string]string
}

// Response holds the decoded body of a successful call. Value is the decoded
// JSON document, or the body as a string when it is not JSON (IsText).
type Response struct {
	StatusCode int
	Raw        []byte
	Value      any
	IsText     bool
}

// Client issues single HTTP calls. It never retries on its own; failures come
// back classified for retry.Do.
type Client struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     types.Logger
}

func NewClient(logger types.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{},
		Timeout:    timeout,
		Logger:     logger,
	}
}

// Call performs the request. Transport failures are returned as
// retry.Retryable(*TransportError); non-2xx responses and malformed requests
// are retry.Fatal.
func (c *Client) Call(ctx context.Context, r Request) (*Response, error) {
	method := strings.ToUpper(r.Method)

	target, err := withParams(r.URL, r.Params)
	if err != nil {
		return nil, retry.Fatal(fmt.Errorf("building URL for %s %s: %w", method, r.URL, err))
	}

	var reqBody io.Reader
	var reqBodyBytes []byte
	if len(r.Body) > 0 && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		reqBodyBytes, err = json.Marshal(r.Body)
		if err != nil {
			return nil, retry.Fatal(fmt.Errorf("marshaling request body to JSON: %w", err))
		}
		reqBody = bytes.NewReader(reqBodyBytes)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, target, reqBody)
	if err != nil {
		return nil, retry.Fatal(fmt.Errorf("creating HTTP request: %w", err))
	}

	hasContentType := false
	for key, value := range r.Headers {
		req.Header.Set(key, value)
		if strings.EqualFold(key, "content-type") {
			hasContentType = true
		}
	}
	if reqBody != nil && !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)

	c.Logger.Info().
		Str("method", method).
		Str("url", target).
		Msg("Making HTTP request")
	if len(reqBodyBytes) > 0 {
		c.Logger.Debug().Str("body_preview", preview(reqBodyBytes)).Msg("Request body")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Fatal(fmt.Errorf("request %s %s abandoned: %w", method, target, ctx.Err()))
		}
		return nil, retry.Retryable(&TransportError{
			Type:   transportErrorType(err),
			Method: method,
			URL:    target,
			Err:    err,
		})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Retryable(&TransportError{
			Type:   transportErrorType(err),
			Method: method,
			URL:    target,
			Err:    fmt.Errorf("reading response body: %w", err),
		})
	}

	c.Logger.Info().
		Int("status_code", resp.StatusCode).
		Msg("Received HTTP response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, retry.Fatal(&StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     method,
			URL:        target,
			Body:       preview(respBody),
		})
	}

	out := &Response{StatusCode: resp.StatusCode, Raw: respBody}
	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		out.Value = parsed
	} else {
		out.Value = string(respBody)
		out.IsText = true
	}
	return out, nil
}

func withParams(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func preview(b []byte) string {
	s := string(b)
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}
