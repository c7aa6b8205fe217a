package authapi

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

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	headerRequestID    = "X-Request-ID"
	headerSessionToken = "X-Session-Token"
	maxBodyBytes       = 1 << 20
)

// HTTPClient implements Client over the remote REST API.
type HTTPClient struct {
	baseURL      *url.URL
	httpClient   *http.Client
	timeout      time.Duration
	tokens       oauth2.TokenSource
	sessionToken func() string

	loginPath    string
	profilePath  string
	validatePath string
	logoutPath   string
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption defines a function type to modify the HTTPClient instance.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets the underlying http.Client (primarily for testing)
func WithHTTPClient(c *http.Client) HTTPClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithTokenSource sets where Logout reads its bearer token from.
func WithTokenSource(ts oauth2.TokenSource) HTTPClientOption {
	return func(hc *HTTPClient) {
		hc.tokens = ts
	}
}

// WithSessionToken sets the provider of the X-Session-Token header value.
func WithSessionToken(f func() string) HTTPClientOption {
	return func(hc *HTTPClient) {
		hc.sessionToken = f
	}
}

// NewHTTPClient builds a client for the API described by cfg.
func NewHTTPClient(cfg config.APIConfig, options ...HTTPClientOption) (*HTTPClient, error) {
	base, err := url.Parse(cfg.GetAPIBaseURL())
	if err != nil {
		return nil, fmt.Errorf("[NewHTTPClient] invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("[NewHTTPClient] base URL %q must be absolute", cfg.GetAPIBaseURL())
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &HTTPClient{
		baseURL:      base,
		httpClient:   http.DefaultClient,
		timeout:      cfg.GetRequestTimeout(),
		sessionToken: func() string { return "" },
		loginPath:    cfg.GetLoginPath(),
		profilePath:  cfg.GetProfilePath(),
		validatePath: cfg.GetValidatePath(),
		logoutPath:   cfg.GetLogoutPath(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, credentials Credentials) (*LoginResponse, error) {
	body, err := c.do(ctx, http.MethodPost, c.loginPath, credentials, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "[Login]")
	}
	return parseLogin(body), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	var ts oauth2.TokenSource
	if c.tokens != nil {
		if _, err := c.tokens.Token(); err == nil {
			ts = c.tokens
		}
	}
	if _, err := c.do(ctx, http.MethodPost, c.logoutPath, nil, ts); err != nil {
		return errors.Wrapf(err, "[Logout]")
	}
	return nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*ProfileResponse, error) {
	body, err := c.do(ctx, http.MethodGet, c.profilePath, nil, oauth2.StaticTokenSource(bearer(token)))
	if err != nil {
		return nil, errors.Wrapf(err, "[Profile]")
	}
	return parseProfile(body), nil
}

func (c *HTTPClient) Validate(ctx context.Context, token string) (*ProfileResponse, error) {
	body, err := c.do(ctx, http.MethodGet, c.validatePath, nil, oauth2.StaticTokenSource(bearer(token)))
	if err != nil {
		return nil, errors.Wrapf(err, "[Validate]")
	}
	return parseProfile(body), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, ts oauth2.TokenSource) (map[string]any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if st := c.sessionToken(); st != "" {
		req.Header.Set(headerSessionToken, st)
	}

	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)
	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("url", endpoint.String()).Str("request_id", requestID).Msg("Auth API request failed")
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	log.Debug().Str("method", method).Str("url", endpoint.String()).Int("status", resp.StatusCode).Str("request_id", requestID).Msg("Auth API response")

	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return nil, errors.Wrapf(errors.ErrInvalidResponse, "decode %s %s", method, path)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := errorMessage(body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
