package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	pkgerrs "github.com/jamesprial/go-twitter-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

// Callback receives the terminal outcome of an asynchronous execution,
// exactly once, with either (response, nil) or (nil, error).
type Callback func(*types.Response, error)

// Exec describes a single request execution: what to send, how to
// credential it, and how strictly to treat the HTTP status.
type Exec struct {
	// Method is the HTTP method.
	Method string
	// Path is resolved against the client's BaseURL; an absolute URL is
	// used as-is.
	Path string
	// Query is appended to the URL and included in the OAuth1 signed set.
	Query url.Values
	// Form, when non-nil, is sent as an application/x-www-form-urlencoded
	// body and included in the OAuth1 signed set.
	Form url.Values
	// Header holds extra request headers, applied before authentication.
	Header http.Header
	// Auth states which credential mode this request requires.
	Auth types.AuthMode
	// Lenient returns non-2xx responses as ordinary Responses for caller
	// inspection instead of classifying them as HTTPError.
	Lenient bool
	// OAuthParams are extra oauth_* parameters merged into the signed set,
	// used during the handshake (oauth_callback, oauth_verifier).
	OAuthParams map[string]string
	// HandshakeToken, when set with Auth == AuthOAuth1, signs the request
	// with this token pair instead of the client's current credential. An
	// empty Token signs the request-token step. The credential
	// configuration check is skipped, since the handshake runs before any
	// access token exists.
	HandshakeToken *types.RequestToken
}

// Client is the request execution engine every API call flows through. It
// builds the outgoing request, applies the current credential, sends it, and
// classifies the outcome identically for the blocking, callback, and future
// delivery styles.
type Client struct {
	client    *http.Client
	signer    *Signer
	BaseURL   *url.URL
	UserAgent string
	logger    *slog.Logger

	// credential is a single-writer many-reader slot; Execute reads it once
	// at authentication time, so swapping it never affects in-flight
	// requests.
	credential atomic.Pointer[types.Credential]
}

// NewClient returns a new execution engine. If a nil httpClient is provided,
// http.DefaultClient is used.
func NewClient(httpClient *http.Client, signer *Signer, baseURL, userAgent string, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	c := &Client{
		client:    httpClient,
		signer:    signer,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		logger:    logger,
	}
	anon := types.AnonymousCredential()
	c.credential.Store(&anon)

	return c, nil
}

// SetCredential atomically replaces the client's current credential.
func (c *Client) SetCredential(cred types.Credential) {
	c.credential.Store(&cred)
}

// Credential returns the client's current credential.
func (c *Client) Credential() types.Credential {
	return *c.credential.Load()
}

// Execute runs the full pipeline on the caller's goroutine and returns the
// outcome synchronously.
func (c *Client) Execute(ctx context.Context, e *Exec) (*types.Response, error) {
	return c.execute(ctx, e)
}

// ExecuteAsync runs the pipeline on a fresh goroutine and delivers the
// outcome to cb exactly once. The callback never runs inline with the
// registering call, even when the outcome is immediate (such as an
// AuthConfigError), so callers get a uniform non-blocking contract.
func (c *Client) ExecuteAsync(ctx context.Context, e *Exec, cb Callback) {
	go func() {
		cb(c.execute(ctx, e))
	}()
}

// ExecuteFuture runs the pipeline on a fresh goroutine and returns a pending
// Future that settles with the outcome exactly once.
func (c *Client) ExecuteFuture(ctx context.Context, e *Exec) *types.Future {
	f, resolve := types.NewFuture()
	go func() {
		resolve(c.execute(ctx, e))
	}()
	return f
}

// ExecuteJSON executes the request and decodes the response body into v.
// A body that does not decode on a successful status is reported as
// MalformedResponseError, never as a fabricated success.
func (c *Client) ExecuteJSON(ctx context.Context, e *Exec, v any) error {
	resp, err := c.execute(ctx, e)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, v)
}

// DecodeJSON unmarshals a Response body into v, classifying failures as
// MalformedResponseError.
func DecodeJSON(resp *types.Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &pkgerrs.MalformedResponseError{Body: string(resp.Body), Err: err}
	}
	return nil
}

// execute is the shared pipeline: build, authenticate, send, classify. Only
// the delivery of its return value differs between the three styles.
func (c *Client) execute(ctx context.Context, e *Exec) (*types.Response, error) {
	req, err := c.buildRequest(ctx, e)
	if err != nil {
		return nil, err
	}

	if err := c.authenticate(req, e); err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.ConnectionError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.ConnectionError{URL: req.URL.String(), Err: err}
	}

	if c.logger != nil {
		c.logger.Debug("twitter API response",
			"method", e.Method,
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"bytes", len(body),
		)
	}

	out := &types.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}

	if !out.IsSuccess() && !e.Lenient {
		return nil, &pkgerrs.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// A 2xx status can still carry a service-level error payload.
	if out.IsSuccess() {
		if apiErr := serviceError(out); apiErr != nil {
			return nil, apiErr
		}
	}

	return out, nil
}

// buildRequest assembles the outgoing http.Request from an Exec. The request
// is mutable until handed to the transport; authentication may still add an
// Authorization header.
func (c *Client) buildRequest(ctx context.Context, e *Exec) (*http.Request, error) {
	u, err := c.BaseURL.Parse(e.Path)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "Path", Message: err.Error()}
	}
	if len(e.Query) > 0 {
		u.RawQuery = e.Query.Encode()
	}

	var body io.Reader
	if e.Form != nil {
		body = strings.NewReader(e.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, e.Method, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "Method", Message: err.Error()}
	}

	for k, vs := range e.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if e.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return req, nil
}

// authenticate applies the credential demanded by the Exec, or fails with
// AuthConfigError if the current credential cannot satisfy it. Nothing is
// sent over the wire on failure.
func (c *Client) authenticate(req *http.Request, e *Exec) error {
	switch e.Auth {
	case types.AuthNone:
		return nil

	case types.AuthOAuth1:
		token, tokenSecret, err := c.oauth1Token(e)
		if err != nil {
			return err
		}
		header := c.signer.Authorization(e.Method, req.URL, e.Form, token, tokenSecret, e.OAuthParams)
		req.Header.Set("Authorization", header)
		return nil

	case types.AuthOAuth2:
		cred := c.Credential()
		if cred.Mode() != types.AuthOAuth2 {
			return &pkgerrs.AuthConfigError{
				Required:   types.AuthOAuth2.String(),
				Configured: cred.Mode().String(),
			}
		}
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken())
		return nil

	default:
		return &pkgerrs.AuthConfigError{Message: "unknown authentication requirement"}
	}
}

// oauth1Token picks the token pair to sign with: the handshake override when
// present, the configured OAuth1 credential otherwise.
func (c *Client) oauth1Token(e *Exec) (token, tokenSecret string, err error) {
	if e.HandshakeToken != nil {
		return e.HandshakeToken.Token, e.HandshakeToken.TokenSecret, nil
	}

	cred := c.Credential()
	if cred.Mode() != types.AuthOAuth1 {
		return "", "", &pkgerrs.AuthConfigError{
			Required:   types.AuthOAuth1.String(),
			Configured: cred.Mode().String(),
		}
	}
	return cred.Token(), cred.TokenSecret(), nil
}

// serviceError inspects a successful response for Twitter's error envelope
// and classifies it as an APIError when present.
func serviceError(resp *types.Response) error {
	trimmed := strings.TrimSpace(string(resp.Body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil || len(envelope.Errors) == 0 {
		return nil
	}

	first := envelope.Errors[0]
	return &pkgerrs.APIError{
		Code:       first.Code,
		Message:    first.Message,
		StatusCode: resp.StatusCode,
	}
}
