package vacancy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the vacancy server (e.g. "http://localhost:8080").
	BaseURL string

	// Identity and Secret are the credentials used to obtain a session token.
	Identity string
	Secret   string

	// Reporter receives one CallEvent per outbound call. If nil, events are
	// discarded.
	Reporter Reporter

	// HTTPClient is an optional custom HTTP client. If nil, a default client
	// with a 30-second timeout is used.
	HTTPClient *http.Client

	// Timeout applies to individual API requests. Defaults to 30 seconds.
	// Ignored when HTTPClient is set.
	Timeout time.Duration
}

// Client is an instrumented HTTP client for the vacancy API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL  string
	client   *http.Client
	reporter Reporter
	tokenMgr *tokenManager
}

// NewClient creates a Client from the given configuration.
// Returns an error if BaseURL or Identity is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vacancy: BaseURL is required")
	}
	if cfg.Identity == "" {
		return nil, fmt.Errorf("vacancy: Identity is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = ReporterFunc(func(CallEvent) {})
	}

	return &Client{
		baseURL:  baseURL,
		client:   httpClient,
		reporter: reporter,
		tokenMgr: newTokenManager(baseURL, cfg.Identity, cfg.Secret, httpClient),
	}, nil
}

// SignIn authenticates with the configured credentials and caches the
// returned session token for subsequent calls.
func (c *Client) SignIn(ctx context.Context) (string, error) {
	var token string
	err := c.instrumentSingleCall("SignIn", func() (int64, error) {
		var n int64
		var err error
		token, n, err = c.tokenMgr.signIn(ctx)
		return n, err
	})
	if err != nil {
		return "", err
	}
	c.tokenMgr.setToken(token)
	return token, nil
}

// Create creates a new vacancy.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Vacancy, error) {
	var resp Vacancy
	if err := c.instrumentSingleCall("CreateVacancy", func() (int64, error) {
		return c.post(ctx, "/v1/vacancies", req, &resp)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get retrieves a vacancy by ID.
func (c *Client) Get(ctx context.Context, id string) (*Vacancy, error) {
	var resp Vacancy
	if err := c.instrumentSingleCall("GetVacancy", func() (int64, error) {
		return c.get(ctx, "/v1/vacancies/"+id, &resp)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update overwrites all mutable fields of a vacancy.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Vacancy, error) {
	var resp Vacancy
	if err := c.instrumentSingleCall("UpdateVacancy", func() (int64, error) {
		return c.put(ctx, "/v1/vacancies/"+id, req, &resp)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a vacancy permanently.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	var resp DeleteResponse
	if err := c.instrumentSingleCall("DeleteVacancy", func() (int64, error) {
		return c.doDelete(ctx, "/v1/vacancies/"+id, &resp)
	}); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// List retrieves one page of vacancies as a lazily consumed stream. Pages
// are 1-indexed. The returned stream must be drained or closed; exactly one
// CallEvent is emitted when it terminates, whichever way it terminates.
func (c *Client) List(ctx context.Context, page, limit int) (*ListStream, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	path := "/v1/vacancies?" + params.Encode()

	start := time.Now()

	body, err := c.startStream(ctx, path)
	if err != nil {
		// The stream never opened: still exactly one event for the call.
		c.reporter.Report(CallEvent{Name: "ListVacancies", Duration: time.Since(start), Err: err})
		return nil, err
	}

	return newListStream("ListVacancies", start, body, c.reporter), nil
}

// Health checks the server's health status. The endpoint is anonymous, so
// this works before any sign-in.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.instrumentSingleCall("Health", func() (int64, error) {
		return c.getNoAuth(ctx, "/health", &resp)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// instrumentSingleCall times fn, reports exactly one CallEvent, and returns
// fn's error as-is. The response size is recorded only on success; a failed
// call reports zero bytes with the error attached.
func (c *Client) instrumentSingleCall(name string, fn func() (int64, error)) error {
	start := time.Now()
	n, err := fn()

	event := CallEvent{
		Name:     name,
		Duration: time.Since(start),
		Err:      err,
	}
	if err == nil {
		event.Bytes = n
	}
	c.reporter.Report(event)

	return err
}

// ---------------------------------------------------------------------------
// HTTP transport
// ---------------------------------------------------------------------------

// apiEnvelope is the server's standard response wrapper.
type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// apiErrorEnvelope is the server's standard error response wrapper.
type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) (int64, error) {
	return c.send(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) put(ctx context.Context, path string, body any, dest any) (int64, error) {
	return c.send(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("vacancy: create request: %w", err)
	}
	return c.doRequest(ctx, req, dest)
}

func (c *Client) doDelete(ctx context.Context, path string, dest any) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("vacancy: create request: %w", err)
	}
	return c.doRequest(ctx, req, dest)
}

func (c *Client) send(ctx context.Context, method, path string, body any, dest any) (int64, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("vacancy: marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("vacancy: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(ctx, req, dest)
}

func (c *Client) getNoAuth(ctx context.Context, path string, dest any) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("vacancy: create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("vacancy: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func (c *Client) doRequest(ctx context.Context, req *http.Request, dest any) (int64, error) {
	token, err := c.tokenMgr.getToken(ctx)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("vacancy: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

// startStream issues an authenticated GET and hands the raw body to the
// caller. The caller owns closing it.
func (c *Client) startStream(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("vacancy: create request: %w", err)
	}

	token, err := c.tokenMgr.getToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vacancy: %s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("vacancy: read error response: %w", err)
		}
		return nil, parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	return resp.Body, nil
}

func handleResponse(resp *http.Response, dest any) (int64, error) {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("vacancy: read response body: %w", err)
	}
	size := int64(len(bodyBytes))

	if resp.StatusCode >= 400 {
		return size, parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if resp.StatusCode == http.StatusNoContent || dest == nil {
		return size, nil
	}

	// Unwrap the server's { "data": ... } envelope.
	var envelope apiEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return size, fmt.Errorf("vacancy: decode response envelope: %w", err)
	}

	if envelope.Data == nil {
		// Fallback: some endpoints may not wrap in "data".
		return size, json.Unmarshal(bodyBytes, dest)
	}

	return size, json.Unmarshal(envelope.Data, dest)
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Code = http.StatusText(statusCode)
		apiErr.Message = string(body)
	}

	return apiErr
}
