// Package gotrue implements the identity service against a hosted
// GoTrue-compatible auth API (the /auth/v1 surface used by Supabase).
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	apiPrefix       = "/auth/v1"
	maxResponseBody = 1 << 20
	breakerName     = "gotrue"
)

var (
	// ErrInvalidGrant is returned when the auth service rejects a refresh token.
	ErrInvalidGrant = errors.New("refresh token rejected")
	// ErrInvalidToken is returned when an access token fails verification.
	ErrInvalidToken = errors.New("access token invalid")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("auth service unavailable")
)

// APIError is a non-2xx response from the auth service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gotrue: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gotrue: %d: %s", e.Status, e.Message)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.Status }

// apiErrorBody covers both the OAuth style and the newer code/msg style error payloads.
type apiErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// tokenResponse is the body of a successful /token call.
type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         userInfo `json:"user"`
}

func (t tokenResponse) expiry(now time.Time) time.Time {
	if t.ExpiresAt > 0 {
		return time.Unix(t.ExpiresAt, 0)
	}
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

type userInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Observer receives the outcome of every call to the auth service.
type Observer func(op string, elapsed time.Duration, err error)

// Config configures a Client.
type Config struct {
	BaseURL string
	AnonKey string

	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
}

// Client is a thin REST client for the auth API. All calls share one circuit breaker.
type Client struct {
	baseURL  string
	anonKey  string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[struct{}]
	logger   *slog.Logger
	observer Observer
}

// NewClient creates a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gotrue: invalid base url %q", cfg.BaseURL)
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("gotrue: anon key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gotrue")

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	c := &Client{
		baseURL:  base + apiPrefix,
		anonKey:  cfg.AnonKey,
		http:     httpClient,
		logger:   logger,
		observer: cfg.Observer,
	}
	c.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

// Issuer is the iss claim the auth service puts on its tokens.
func (c *Client) Issuer() string { return c.baseURL }

// breakerSuccess counts client errors as healthy responses; only transport failures and 5xx trip the breaker.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError
}

// passwordGrant exchanges email and password for a token pair.
func (c *Client) passwordGrant(ctx context.Context, email, password string) (*tokenResponse, error) {
	var out tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, "password_grant", request{
		method: http.MethodPost,
		path:   "/token?grant_type=password",
		body:   body,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// refreshGrant exchanges a refresh token for a new token pair.
func (c *Client) refreshGrant(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	var out tokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.call(ctx, "refresh_grant", request{
		method: http.MethodPost,
		path:   "/token?grant_type=refresh_token",
		body:   body,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// user returns the user owning accessToken.
func (c *Client) user(ctx context.Context, accessToken string) (*userInfo, error) {
	var out userInfo
	if err := c.call(ctx, "get_user", request{
		method: http.MethodGet,
		path:   "/user",
		bearer: accessToken,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// logout revokes the session owning accessToken.
func (c *Client) logout(ctx context.Context, accessToken string) error {
	return c.call(ctx, "logout", request{
		method: http.MethodPost,
		path:   "/logout",
		bearer: accessToken,
	}, nil)
}

type request struct {
	method string
	path   string
	body   any
	bearer string
}

func (c *Client) call(ctx context.Context, op string, req request, out any) error {
	start := time.Now()
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, req, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if c.observer != nil {
		c.observer(op, time.Since(start), err)
	}
	return err
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gotrue %s %s: %w", req.method, req.path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close response body", "error", cerr)
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, payload)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var body apiErrorBody
	if json.Unmarshal(payload, &body) != nil {
		return apiErr
	}
	apiErr.Code = firstNonEmpty(body.ErrorCode, body.Error)
	if msg := firstNonEmpty(body.ErrorDescription, body.Msg, body.Message); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// isRejection reports whether err is the auth service refusing the request itself
// (bad credentials, revoked or unknown token) rather than failing to answer.
func isRejection(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest ||
		apiErr.Status == http.StatusUnauthorized ||
		apiErr.Status == http.StatusForbidden ||
		apiErr.Status == http.StatusNotFound
}
