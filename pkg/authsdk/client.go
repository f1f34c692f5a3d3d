package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the EventHive auth service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a sane default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IssueOTP requests a verification code be emailed for a pending signup.
func (c *Client) IssueOTP(ctx context.Context, req OTPIssueRequest) (*OTPIssueResponse, error) {
	var out OTPIssueResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/otp/issue", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP submits a code against the active challenge for the email. A
// successful verification consumes the challenge.
func (c *Client) VerifyOTP(ctx context.Context, req OTPVerifyRequest) (*OTPVerifyResponse, error) {
	var out OTPVerifyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/otp/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register completes the signup with the emailed code.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the principal plus the session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the principal bound to the session token.
func (c *Client) Me(ctx context.Context, token string) (*PrincipalResponse, error) {
	var out PrincipalResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/session/me", nil, &out, withBearer(token)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context, token string) error {
	var out LogoutResponse
	return c.doJSON(ctx, http.MethodPost, "/v1/session/logout", nil, &out, withBearer(token))
}

// Livez hits the liveness probe.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz hits the readiness probe.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
