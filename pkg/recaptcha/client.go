package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cashya/shoppy-backend/pkg/config"
	pkgerrors "github.com/cashya/shoppy-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

var errSecretRequired = errors.New("recaptcha secret key is required")

// Verifier is the surface the auth service consumes. The nil-check wrapper in
// NewFromConfig satisfies it with a pass-through when verification is disabled.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Client calls Google's siteverify endpoint.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secretKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithVerifyURL overrides the siteverify endpoint, mainly for tests.
func WithVerifyURL(verifyURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(verifyURL)
		if trimmed != "" {
			c.verifyURL = trimmed
		}
	}
}

// NewClient builds a siteverify client given the shared secret.
func NewClient(cfg config.RecaptchaConfig, opts ...Option) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &Client{
		secretKey:  secret,
		verifyURL:  cfg.VerifyURL,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// NewFromConfig returns a Verifier honoring the enabled flag: a real client
// when a secret is configured, otherwise a verifier that accepts everything.
func NewFromConfig(cfg config.RecaptchaConfig, opts ...Option) (Verifier, error) {
	if !cfg.Enabled() {
		return noopVerifier{}, nil
	}
	return NewClient(cfg, opts...)
}

// Verify checks the captcha token with Google and returns a coded error when
// the challenge fails.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "recaptcha client not configured")
	}
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recaptcha token is required")
	}

	form := url.Values{}
	form.Set("secret", c.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build recaptcha request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute recaptcha request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "recaptcha request failed")
	}

	var apiResp struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode recaptcha response")
	}

	if !apiResp.Success {
		return pkgerrors.New(pkgerrors.CodeValidation, "recaptcha verification failed").
			WithDetails(map[string]any{"error_codes": apiResp.ErrorCodes})
	}

	return nil
}

type noopVerifier struct{}

func (noopVerifier) Verify(context.Context, string, string) error { return nil }
