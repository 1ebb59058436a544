// Package errors defines the error taxonomy used throughout the Twitter API wrapper.
//
// Every failure surfaced by the client is one of the structured types below,
// carrying the original status code and response body where one exists. Callers
// can match on the concrete type with errors.As regardless of which execution
// style (blocking, callback, future) delivered the error.
package errors

import (
	"fmt"
)

// ConnectionError indicates the request never produced an HTTP response:
// DNS resolution, TCP connect, or TLS handshake failed, or the connection
// dropped before any status line arrived.
type ConnectionError struct {
	// URL is the URL that was being contacted
	URL string
	// Err contains the underlying transport error
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("connection error contacting %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// HTTPError indicates the server answered with a non-2xx status while the
// caller did not request lenient handling. The original status and raw body
// are preserved for inspection.
type HTTPError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int
	// Body contains the raw response body
	Body string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP error: status %d, body: %q", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP error: status %d", e.StatusCode)
}

// APIError represents a service-level error payload returned by the Twitter
// API, such as {"errors":[{"code":34,"message":"Sorry, that page does not exist"}]}.
type APIError struct {
	// Code is the Twitter error code (e.g. 34 for "page does not exist")
	Code int
	// Message is the error message from Twitter
	Message string
	// StatusCode is the HTTP status the payload arrived with, if known
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("twitter API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("twitter API error (code %d): %s", e.Code, e.Message)
}

// MalformedResponseError indicates a response body that could not be decoded
// into the expected shape even though the HTTP exchange itself succeeded.
type MalformedResponseError struct {
	// Body contains the raw response body that failed to decode
	Body string
	// Err contains the underlying decode error
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v (body: %q)", e.Err, truncate(e.Body, 256))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// AuthConfigError indicates a local credential misconfiguration: the endpoint
// demands an authentication mode the client is not currently configured for.
// It is raised before anything is sent over the wire.
type AuthConfigError struct {
	// Required is the authentication mode the request demanded
	Required string
	// Configured is the mode the client currently holds
	Configured string
	// Message contains additional detail
	Message string
}

func (e *AuthConfigError) Error() string {
	if e.Required != "" {
		return fmt.Sprintf("auth config error: request requires %s but client has %s credentials", e.Required, e.Configured)
	}
	return fmt.Sprintf("auth config error: %s", e.Message)
}

// MissingSecretError is raised only during the OAuth1 handshake: VerifyOAuth
// was called without a request-token secret and no prior RequestOAuth call
// cached one for that token.
type MissingSecretError struct {
	// Token is the request token whose secret is unknown
	Token string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("no request token secret supplied or cached for token %q; call RequestOAuth first or pass the secret explicitly", e.Token)
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
