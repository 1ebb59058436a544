package gtaw

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"github.com/jamesprial/go-twitter-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-twitter-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

const (
	requestTokenPath = "oauth/request_token"
	authorizePath    = "oauth/authorize"
	accessTokenPath  = "oauth/access_token"
	oauth2TokenPath  = "oauth2/token"

	// outOfBand is the oauth_callback value signalling PIN-based
	// authorization when no callback URL is supplied.
	outOfBand = "oob"
)

// RequestOAuth performs the first leg of the three-legged OAuth1 handshake:
// an OAuth1-signed POST (with an empty token) to the request-token endpoint.
//
// callbackURL is where the provider redirects the user after they grant
// access. Pass "" for the out-of-band PIN flow, where the user reads a
// verifier off the authorization page instead.
//
// The returned token secret is also cached keyed by token, so the follow-up
// VerifyOAuth call may omit it. The cache is bounded; callers running many
// concurrent handshakes should keep the RequestToken and pass the secret
// explicitly.
func (c *Client) RequestOAuth(ctx context.Context, callbackURL string) (*types.RequestToken, error) {
	if callbackURL == "" {
		callbackURL = outOfBand
	}

	exec := &internal.Exec{
		Method:         http.MethodPost,
		Path:           c.config.AuthURL + requestTokenPath,
		Auth:           types.AuthOAuth1,
		HandshakeToken: &types.RequestToken{},
		OAuthParams:    map[string]string{"oauth_callback": callbackURL},
	}

	resp, err := c.client.Execute(ctx, exec)
	if err != nil {
		return nil, err
	}

	values, err := parseTokenBody(resp)
	if err != nil {
		return nil, err
	}

	token := &types.RequestToken{
		Token:       values.Get("oauth_token"),
		TokenSecret: values.Get("oauth_token_secret"),
	}
	c.cacheRequestSecret(token.Token, token.TokenSecret)

	return token, nil
}

// AuthorizeURL returns the URL the user must visit to authorize the
// application for the given request token.
func (c *Client) AuthorizeURL(token *types.RequestToken) string {
	return c.config.AuthURL + authorizePath + "?oauth_token=" + url.QueryEscape(token.Token)
}

// VerifyOAuth performs the final leg of the handshake: it exchanges the
// user-supplied verifier (the PIN in the out-of-band flow, the callback's
// oauth_verifier parameter otherwise) for a long-lived access token.
//
// The request-token secret may be omitted, in which case the secret cached
// by the prior RequestOAuth call for that token is used; if neither is
// available the call fails with MissingSecretError before anything is sent.
// A stale or unknown request token is the provider's call to reject, and
// surfaces as the classified remote error.
//
// The returned AccessToken is the terminal handshake output; install it with
// SetCredential(types.NewOAuth1Credential(at.Token, at.TokenSecret)).
func (c *Client) VerifyOAuth(ctx context.Context, verifier, token string, tokenSecret ...string) (*types.AccessToken, error) {
	secret := ""
	if len(tokenSecret) > 0 {
		secret = tokenSecret[0]
	} else {
		cached, ok := c.lookupRequestSecret(token)
		if !ok {
			return nil, &pkgerrs.MissingSecretError{Token: token}
		}
		secret = cached
	}

	exec := &internal.Exec{
		Method:         http.MethodPost,
		Path:           c.config.AuthURL + accessTokenPath,
		Auth:           types.AuthOAuth1,
		HandshakeToken: &types.RequestToken{Token: token, TokenSecret: secret},
		OAuthParams:    map[string]string{"oauth_verifier": verifier},
	}

	resp, err := c.client.Execute(ctx, exec)
	if err != nil {
		return nil, err
	}

	values, err := parseTokenBody(resp)
	if err != nil {
		return nil, err
	}

	c.dropRequestSecret(token)

	return &types.AccessToken{
		Token:       values.Get("oauth_token"),
		TokenSecret: values.Get("oauth_token_secret"),
		ScreenName:  values.Get("screen_name"),
		UserID:      values.Get("user_id"),
	}, nil
}

// RequestOAuth2 performs the app-only client-credentials exchange and returns
// a bearer token representing the application itself. The exchange is
// stateless and idempotent; each call independently obtains a fresh token.
//
// Install the result with SetCredential(types.NewOAuth2Credential(app.AccessToken)).
func (c *Client) RequestOAuth2(ctx context.Context) (*types.AppToken, error) {
	header := http.Header{}
	header.Set("Authorization", "Basic "+bearerTokenCredentials(c.config.APIKey, c.config.APISecret))

	exec := &internal.Exec{
		Method: http.MethodPost,
		Path:   c.config.AuthURL + oauth2TokenPath,
		Form:   url.Values{"grant_type": {"client_credentials"}},
		Header: header,
		Auth:   types.AuthNone,
	}

	var tokenResp struct {
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"`
	}
	if err := c.client.ExecuteJSON(ctx, exec, &tokenResp); err != nil {
		return nil, err
	}
	if tokenResp.AccessToken == "" {
		return nil, &pkgerrs.MalformedResponseError{Err: errMissingAccessToken}
	}

	return &types.AppToken{AccessToken: tokenResp.AccessToken}, nil
}

// bearerTokenCredentials encodes the consumer key pair per the app-only
// scheme: each half URL-encoded, joined with ':', then base64 as a whole.
func bearerTokenCredentials(apiKey, apiSecret string) string {
	pair := url.QueryEscape(apiKey) + ":" + url.QueryEscape(apiSecret)
	return base64.StdEncoding.EncodeToString([]byte(pair))
}

// parseTokenBody parses the form-encoded body of a handshake response and
// requires the oauth_token field to be present.
func parseTokenBody(resp *types.Response) (url.Values, error) {
	values, err := url.ParseQuery(string(resp.Body))
	if err != nil {
		return nil, &pkgerrs.MalformedResponseError{Body: string(resp.Body), Err: err}
	}
	if values.Get("oauth_token") == "" {
		return nil, &pkgerrs.MalformedResponseError{
			Body: string(resp.Body),
			Err:  errMissingOAuthToken,
		}
	}
	return values, nil
}

var errMissingOAuthToken = errors.New("oauth_token missing from handshake response")

var errMissingAccessToken = errors.New("access_token missing from token response")

// cacheRequestSecret remembers a request-token secret so the verify step may
// omit it, evicting the oldest entry once the bound is reached.
func (c *Client) cacheRequestSecret(token, secret string) {
	if token == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.requestSecrets[token]; !exists {
		if len(c.secretOrder) >= requestSecretCacheSize {
			oldest := c.secretOrder[0]
			c.secretOrder = c.secretOrder[1:]
			delete(c.requestSecrets, oldest)
		}
		c.secretOrder = append(c.secretOrder, token)
	}
	c.requestSecrets[token] = secret
}

func (c *Client) lookupRequestSecret(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	secret, ok := c.requestSecrets[token]
	return secret, ok
}

func (c *Client) dropRequestSecret(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.requestSecrets[token]; !ok {
		return
	}
	delete(c.requestSecrets, token)
	for i, t := range c.secretOrder {
		if t == token {
			c.secretOrder = append(c.secretOrder[:i], c.secretOrder[i+1:]...)
			break
		}
	}
}
