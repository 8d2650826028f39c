// Package api is the single outbound HTTP point of the campus-complaint client.
package api

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

	"campuscomplaint/internal/model"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/contextkey"
	"campuscomplaint/pkg/utils/logger"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/syncx"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-Id"
	defaultTimeout  = 30 * time.Second
)

// Config holds client settings.
type Config struct {
	BaseURL   string        `yaml:"baseURL" env:"CAMPUS_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"CAMPUS_TIMEOUT"`
	UserAgent string        `yaml:"userAgent" env:"CAMPUS_USER_AGENT"`
}

// TokenSource supplies the access token attached to non-auth requests.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// SessionWriter persists and ends the session on behalf of login, refresh and logout.
type SessionWriter interface {
	TokenSource
	RefreshToken(ctx context.Context) string
	Establish(ctx context.Context, accessToken, refreshToken string) error
	End(ctx context.Context) error
}

// Client calls the backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	session    SessionWriter
	refresh    syncx.SingleFlight
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client. session may be nil for anonymous use.
func New(cfg Config, session SessionWriter, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		refresh:    syncx.NewSingleFlight(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL points the client at another backend.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return req, pkgerrors.Wrapf(err, pkgerrors.InternalServerError, "marshal request body failed")
	}
	req.body = bytes.NewReader(data)
	req.contentType = "application/json"
	return req, nil
}

// do sends one request and returns the body of a 2xx response.
// Any other outcome is normalised into a *errors.Error.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.RequestID, requestID)

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.InternalServerError, "build request failed")
	}
	contentType := r.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if !IsAuthRoute(r.path) && c.session != nil {
		if token := c.session.AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn(ctx, "request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		return nil, pkgerrors.Wrap(err, pkgerrors.TransportFailed).WithMessage(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.TransportFailed).WithMessage("read response body failed")
	}
	logger.Debug(ctx, "request done",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, rejection(resp.StatusCode, body)
	}
	return body, nil
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// rejection builds the error for a non-2xx response, preferring the server's own message.
func rejection(status int, body []byte) error {
	code := pkgerrors.ServerRejected
	if status == http.StatusUnauthorized {
		code = pkgerrors.Unauthorized
	}

	message := fmt.Sprintf("Request failed with status code %d", status)
	var payload errorPayload
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}
	return pkgerrors.New(code).WithMessage(message).WithDetail("status", status)
}

// decode unwraps the {success, message, data} envelope when present and decodes data into out.
// Bodies without an envelope are decoded as is. A nil out only checks the success flag.
func decode(body []byte, out any) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if out != nil {
			return "", pkgerrors.New(pkgerrors.InvalidResponse).WithMessage("empty response body")
		}
		return "", nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return "", pkgerrors.Wrap(err, pkgerrors.InvalidResponse)
		}
	}

	if envelope.Success == nil {
		if out == nil {
			if trimmed[0] != '{' {
				return strings.Trim(string(trimmed), `"`), nil
			}
			return "", nil
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return "", pkgerrors.Wrap(err, pkgerrors.InvalidResponse)
		}
		return "", nil
	}

	if !*envelope.Success {
		message := envelope.Message
		if message == "" {
			message = pkgerrors.ServerRejected.Message()
		}
		return "", pkgerrors.New(pkgerrors.ServerRejected).WithMessage(message)
	}
	if out == nil {
		return envelope.Message, nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return "", pkgerrors.New(pkgerrors.InvalidResponse).WithMessage("response has no data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.InvalidResponse)
	}
	return envelope.Message, nil
}

// call sends r and decodes the result into out, validating typed records.
func (c *Client) call(ctx context.Context, r request, out any) (string, error) {
	body, err := c.do(ctx, r)
	if err != nil {
		return "", err
	}
	message, err := decode(body, out)
	if err != nil {
		return "", err
	}
	if out != nil {
		if err := model.Validate(out); err != nil {
			return "", pkgerrors.Wrap(err, pkgerrors.InvalidResponse).WithMessage("unexpected response shape")
		}
	}
	return message, nil
}

// Ack is the acknowledgement returned by calls without a record.
type Ack struct {
	Message string `json:"message"`
}

func (c *Client) ack(ctx context.Context, method, path string, payload any) (*Ack, error) {
	r, err := jsonRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	message, err := c.call(ctx, r, nil)
	if err != nil {
		return nil, err
	}
	return &Ack{Message: message}, nil
}
