package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.resend.com"
	errorBodyReadLimit   int64 = 1024
	verificationSubject        = "Confirme seu e-mail"
)

// Sender delivers transactional email.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, confirmURL string) error
}

// Client posts transactional email through the Resend HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
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

// NewClient builds a mailer from configuration.
func NewClient(cfg config.MailerConfig, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("mailer api key is required")
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, fmt.Errorf("mailer from address is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendVerificationEmail delivers the confirmation link to a new signup.
func (c *Client) SendVerificationEmail(ctx context.Context, to, confirmURL string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer client not configured")
	}
	if strings.TrimSpace(to) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if strings.TrimSpace(confirmURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation url is required")
	}

	body := fmt.Sprintf(`<p>Bem-vindo! Clique no link abaixo para confirmar seu e-mail.</p><p><a href=%q>Confirmar e-mail</a></p>`, confirmURL)
	return c.send(ctx, sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: verificationSubject,
		HTML:    body,
	})
}

func (c *Client) send(ctx context.Context, req sendRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal email request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build email request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute email request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "email request failed")
	}
	return nil
}
