package gtaw

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jamesprial/go-twitter-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-twitter-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

const (
	// DefaultBaseURL is the default Twitter REST API base URL
	DefaultBaseURL = "https://api.twitter.com/1.1/"
	// DefaultAuthURL is the base URL for the OAuth handshake endpoints
	DefaultAuthURL = "https://api.twitter.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-twitter-api-wrapper/0.01"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// Config holds the configuration for the Twitter client.
//
// APIKey and APISecret (the consumer key pair from the Twitter developer
// portal) are required for every authentication mode: they sign OAuth1
// requests and authenticate the OAuth2 client-credentials exchange. User or
// app tokens are not part of the configuration; they are acquired through
// the RequestOAuth/VerifyOAuth or RequestOAuth2 flows (or captured from an
// earlier run) and installed with SetCredential.
type Config struct {
	// APIKey and APISecret are the application's consumer key pair.
	APIKey    string
	APISecret string

	// UserAgent string to identify your application to Twitter.
	UserAgent string

	// BaseURL for the Twitter REST API.
	// Defaults to DefaultBaseURL if not specified.
	BaseURL string

	// AuthURL for the OAuth handshake endpoints.
	// Defaults to DefaultAuthURL if not specified.
	AuthURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	// Customize this to set custom timeouts, proxies, or other HTTP behavior.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger
}

// RequestSpec describes one API call for the generic Do/DoAsync/DoFuture
// surface. Endpoint helpers are thin wrappers that build a RequestSpec (or
// its internal equivalent) and decode the result.
type RequestSpec struct {
	// Method is the HTTP method.
	Method string
	// Path is resolved against the configured BaseURL; an absolute URL is
	// used as-is.
	Path string
	// Query parameters to append to the URL.
	Query url.Values
	// Form, when non-nil, is sent as an application/x-www-form-urlencoded body.
	Form url.Values
	// Header holds extra request headers.
	Header http.Header
	// Auth states which credential mode this request requires.
	Auth types.AuthMode
	// Lenient returns non-2xx responses as ordinary Responses for caller
	// inspection instead of classifying them as errors.
	Lenient bool
}

// Callback receives the terminal outcome of an asynchronous call, exactly
// once, with either (response, nil) or (nil, error).
type Callback func(*types.Response, error)

// Client is the main Twitter API client. It owns the current credential,
// the OAuth handshake state, and the execution engine that every request
// flows through.
type Client struct {
	client    *internal.Client
	config    *Config
	validator *internal.Validator

	// requestSecrets caches request-token secrets between RequestOAuth and
	// VerifyOAuth, keyed by token, so the verify call may omit the secret.
	// Bounded FIFO so abandoned handshakes cannot grow it without limit.
	mu             sync.Mutex
	requestSecrets map[string]string
	secretOrder    []string
}

// requestSecretCacheSize bounds the handshake secret cache. A handful of
// concurrent handshakes per client is already unusual; 32 is generous.
const requestSecretCacheSize = 32

// NewClient creates a new Twitter client with the provided configuration.
// It validates the configuration, sets defaults for optional fields, and
// builds the execution engine. No network traffic happens here; the client
// starts with the anonymous credential until a flow method or SetCredential
// installs one.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.APIKey == "" || config.APISecret == "" {
		return nil, &pkgerrs.ConfigError{Message: "APIKey and APISecret are required"}
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = DefaultAuthURL
	}
	if !strings.HasSuffix(config.AuthURL, "/") {
		config.AuthURL += "/"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	validator := internal.NewValidator()
	if err := validator.ValidateUserAgent(config.UserAgent); err != nil {
		return nil, err
	}

	signer := internal.NewSigner(config.APIKey, config.APISecret)
	client, err := internal.NewClient(config.HTTPClient, signer, config.BaseURL, config.UserAgent, config.Logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:         client,
		config:         config,
		validator:      validator,
		requestSecrets: make(map[string]string),
	}, nil
}

// SetCredential atomically replaces the client's current credential.
// In-flight requests that already captured the prior credential at signing
// time are unaffected.
func (c *Client) SetCredential(cred types.Credential) {
	c.client.SetCredential(cred)
}

// Credential returns the client's current credential.
func (c *Client) Credential() types.Credential {
	return c.client.Credential()
}

// Do executes a request and blocks until the outcome is available.
func (c *Client) Do(ctx context.Context, spec *RequestSpec) (*types.Response, error) {
	return c.client.Execute(ctx, spec.exec())
}

// DoAsync executes a request without blocking and delivers the outcome to cb
// exactly once. The callback never runs inline with this call.
func (c *Client) DoAsync(ctx context.Context, spec *RequestSpec, cb Callback) {
	c.client.ExecuteAsync(ctx, spec.exec(), internal.Callback(cb))
}

// DoFuture executes a request without blocking and returns a pending Future
// that settles with the outcome exactly once.
func (c *Client) DoFuture(ctx context.Context, spec *RequestSpec) *types.Future {
	return c.client.ExecuteFuture(ctx, spec.exec())
}

func (s *RequestSpec) exec() *internal.Exec {
	return &internal.Exec{
		Method:  s.Method,
		Path:    s.Path,
		Query:   s.Query,
		Form:    s.Form,
		Header:  s.Header,
		Auth:    s.Auth,
		Lenient: s.Lenient,
	}
}
