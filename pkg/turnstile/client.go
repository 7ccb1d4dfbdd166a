package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

const defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier checks a client-provided challenge token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Client calls the Cloudflare Turnstile siteverify endpoint.
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

// NewClient builds a Turnstile verifier from configuration.
func NewClient(cfg config.TurnstileConfig, opts ...Option) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, fmt.Errorf("turnstile secret key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		verifyURL:  verifyURL,
		secretKey:  secret,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Verify submits the token for validation. A failed challenge returns a
// validation error; transport problems surface as dependency errors.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "turnstile client not configured")
	}
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "challenge token is required")
	}

	form := url.Values{}
	form.Set("secret", c.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build siteverify request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute siteverify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d", resp.StatusCode), "siteverify request failed")
	}

	var apiResp struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode siteverify response")
	}

	if !apiResp.Success {
		return pkgerrors.New(pkgerrors.CodeValidation, "challenge verification failed").
			WithDetails(map[string]any{"error_codes": apiResp.ErrorCodes})
	}
	return nil
}
