// Package backend is the typed REST client for the news-analysis backend.
//
// All failures are classified once, here, into the Kind taxonomy; callers
// branch on KindOf instead of inspecting status codes or error strings.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonesrussell/north-cloud/dashboard/internal/httpclient"
	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

// Client talks to the job-execution and auth endpoints of the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a backend client. cfg may be nil for transport defaults.
func New(baseURL string, cfg *httpclient.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: httpclient.New(cfg),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ListJobs fetches one page of job summaries. A nil filter means all
// statuses. page is zero-based.
func (c *Client) ListJobs(ctx context.Context, filter *models.Status, page, size int) (*models.JobPage, error) {
	q := url.Values{}
	if filter != nil {
		q.Set("status", string(*filter))
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out models.JobPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/jobs?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	out.Page = page
	out.PageSize = size
	return &out, nil
}

// GetJob fetches one job with its subtasks.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var out models.Job
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/jobs/"+url.PathEscape(jobID), nil, &out); err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return &out, nil
}

// CancelJob requests cancellation of a job. Fails with KindNotFound for an
// unknown job and KindConflict when the job is already terminal.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	path := "/api/v1/jobs/" + url.PathEscape(jobID) + "/cancel"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("cancel job %s: %w", jobID, err)
	}
	return nil
}

// RetryJob requests a retry of a failed job. Fails with KindConflict when
// the job is not in FAILED state.
func (c *Client) RetryJob(ctx context.Context, jobID string) error {
	path := "/api/v1/jobs/" + url.PathEscape(jobID) + "/retry"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("retry job %s: %w", jobID, err)
	}
	return nil
}

// ListProviders fetches the registered analysis providers.
func (c *Client) ListProviders(ctx context.Context) ([]models.Provider, error) {
	var out struct {
		Providers []models.Provider `json:"providers"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/providers", nil, &out); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return out.Providers, nil
}

// GetHealth fetches per-provider reachability.
func (c *Client) GetHealth(ctx context.Context) (*models.ProviderHealth, error) {
	var out models.ProviderHealth
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/providers/health", nil, &out); err != nil {
		return nil, fmt.Errorf("get provider health: %w", err)
	}
	return &out, nil
}

type availability struct {
	Available bool `json:"available"`
}

// CheckUsernameAvailable reports whether a username is free to register.
func (c *Client) CheckUsernameAvailable(ctx context.Context, name string) (bool, error) {
	q := url.Values{"username": {name}}
	var out availability
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/check-username?"+q.Encode(), nil, &out); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return out.Available, nil
}

// CheckEmailAvailable reports whether an email is free to register.
func (c *Client) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	q := url.Values{"email": {email}}
	var out availability
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/check-email?"+q.Encode(), nil, &out); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return out.Available, nil
}

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the backend-issued access token.
type RegisterResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates an account and returns the access token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", req, &out); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &out, nil
}

// Ping probes backend reachability. Used by health checks and the startup
// probe only.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("backend ping: %w", err)
	}
	return nil
}

// doJSON issues a request and decodes a JSON response into out (out may be
// nil when no body is expected). Non-2xx responses become classified errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return classifyResponse(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUnknown, Message: "malformed response body", Err: err}
	}
	return nil
}
