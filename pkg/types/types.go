// Package types defines the public data structures shared across the Twitter
// API wrapper: credentials, handshake tokens, raw responses, and the small set
// of response objects the bundled endpoint helpers decode into.
package types

import (
	"net/http"
)

// AuthMode identifies an authentication requirement or capability.
type AuthMode int

const (
	// AuthNone means the request carries no credentials.
	AuthNone AuthMode = iota
	// AuthOAuth1 means user-context OAuth 1.0a request signing.
	AuthOAuth1
	// AuthOAuth2 means an app-only OAuth2 bearer token.
	AuthOAuth2
)

// String returns a human-readable name for the mode.
func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthOAuth1:
		return "oauth1"
	case AuthOAuth2:
		return "oauth2"
	default:
		return "unknown"
	}
}

// Credential is the client's current authentication strategy: anonymous,
// OAuth1 user context, or OAuth2 app context. A Credential is immutable once
// constructed; switching modes means building a new Credential and handing it
// to Client.SetCredential, which swaps it in atomically. In-flight requests
// keep whatever credential they captured at signing time.
type Credential struct {
	mode        AuthMode
	token       string
	tokenSecret string
	accessToken string
}

// AnonymousCredential returns the no-authentication credential. It can only
// satisfy endpoints that declare no authentication requirement.
func AnonymousCredential() Credential {
	return Credential{mode: AuthNone}
}

// NewOAuth1Credential returns a user-context credential from an OAuth1 access
// token pair. The token secret may be empty only in the pending state between
// request-token acquisition and verifier exchange, where requests are signed
// with an empty secret.
func NewOAuth1Credential(token, tokenSecret string) Credential {
	return Credential{mode: AuthOAuth1, token: token, tokenSecret: tokenSecret}
}

// NewOAuth2Credential returns an app-only credential wrapping a bearer token.
func NewOAuth2Credential(accessToken string) Credential {
	return Credential{mode: AuthOAuth2, accessToken: accessToken}
}

// Mode reports which variant this credential is.
func (c Credential) Mode() AuthMode { return c.mode }

// Token returns the OAuth1 token, or "" for other modes.
func (c Credential) Token() string { return c.token }

// TokenSecret returns the OAuth1 token secret, or "" for other modes.
func (c Credential) TokenSecret() string { return c.tokenSecret }

// AccessToken returns the OAuth2 bearer token, or "" for other modes.
func (c Credential) AccessToken() string { return c.accessToken }

// RequestToken is the short-lived output of the OAuth1 request-token step.
// It exists only to be exchanged, together with the user's verifier, for an
// AccessToken.
type RequestToken struct {
	Token       string
	TokenSecret string
}

// AccessToken is the terminal output of the three-legged OAuth1 handshake.
// ScreenName and UserID are populated when the provider includes them in the
// access-token response, as Twitter does.
type AccessToken struct {
	Token       string
	TokenSecret string
	ScreenName  string
	UserID      string
}

// AppToken is the output of the OAuth2 client-credentials exchange.
type AppToken struct {
	AccessToken string
}

// Response is a raw HTTP outcome: status, headers, and the fully-read body.
// It is immutable once returned. In lenient mode non-2xx responses are
// delivered this way instead of as an HTTPError.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorEnvelope is the shape Twitter uses for service-level error payloads.
type ErrorEnvelope struct {
	Errors []ErrorDetail `json:"errors"`
}

// ErrorDetail is a single entry in an ErrorEnvelope.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Tweet is a minimal mapping of a status object, covering the fields the
// bundled endpoint helpers expose.
type Tweet struct {
	ID            int64  `json:"id"`
	IDStr         string `json:"id_str"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	User          *User  `json:"user,omitempty"`
	RetweetCount  int    `json:"retweet_count"`
	FavoriteCount int    `json:"favorite_count"`
	Lang          string `json:"lang,omitempty"`
}

// User is a minimal mapping of a user object.
type User struct {
	ID             int64  `json:"id"`
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	StatusesCount  int    `json:"statuses_count"`
	Verified       bool   `json:"verified"`
}

// SearchResponse is the envelope returned by the search endpoint.
type SearchResponse struct {
	Statuses []*Tweet `json:"statuses"`
}

// TimelineRequest carries paging controls for timeline and search helpers.
type TimelineRequest struct {
	// Count caps the number of statuses returned. Zero means the API default.
	Count int
	// SinceID returns only statuses newer than this ID.
	SinceID string
	// MaxID returns only statuses with an ID at or below this one.
	MaxID string
}
