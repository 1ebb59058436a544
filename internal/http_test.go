package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/go-twitter-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	signer := NewSigner("test-key", "test-secret")
	c, err := NewClient(nil, signer, baseURL, "test-agent/1.0", nil)
	require.NoError(t, err)
	return c
}

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":20,"text":"just setting up my twttr"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "statuses/show.json"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "just setting up my twttr")
	assert.Equal(t, "test-agent/1.0", gotUserAgent)
}

func TestExecuteConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	c := newTestClient(t, server.URL)
	_, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "x"})

	var connErr *pkgerrs.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.NotEmpty(t, connErr.URL)
	assert.Error(t, connErr.Err)
}

func TestExecuteHTTPErrorStrictAndLenient(t *testing.T) {
	t.Parallel()

	const errorBody = `{"errors":[{"code":34,"message":"Sorry, that page does not exist"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(errorBody))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	// Strict mode classifies the status, preserving it and the body.
	_, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "tweet/42"})
	var httpErr *pkgerrs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, errorBody, httpErr.Body)

	// Lenient mode hands back the raw response for caller-side inspection.
	resp, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "tweet/42", Lenient: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errorBody, string(resp.Body))
}

func TestExecuteAuthConfigErrorSendsNothing(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	testCases := []struct {
		name string
		cred types.Credential
		auth types.AuthMode
	}{
		{"oauth1 required, anonymous configured", types.AnonymousCredential(), types.AuthOAuth1},
		{"oauth1 required, oauth2 configured", types.NewOAuth2Credential("bearer"), types.AuthOAuth1},
		{"oauth2 required, anonymous configured", types.AnonymousCredential(), types.AuthOAuth2},
		{"oauth2 required, oauth1 configured", types.NewOAuth1Credential("tok", "sec"), types.AuthOAuth2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c.SetCredential(tc.cred)
			_, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "x", Auth: tc.auth})

			var authErr *pkgerrs.AuthConfigError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tc.auth.String(), authErr.Required)
			assert.Equal(t, tc.cred.Mode().String(), authErr.Configured)
		})
	}

	assert.Zero(t, hits, "misconfigured requests must never reach the wire")
}

func TestExecuteAttachesBearerHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.SetCredential(types.NewOAuth2Credential("bearer-xyz"))

	_, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "x", Auth: types.AuthOAuth2})
	require.NoError(t, err)
	assert.Equal(t, "Bearer bearer-xyz", gotAuth)
}

func TestExecuteSignsOAuth1Requests(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.SetCredential(types.NewOAuth1Credential("user-token", "user-secret"))

	_, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "x", Auth: types.AuthOAuth1})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotAuth, "OAuth "), "got %q", gotAuth)
	assert.Contains(t, gotAuth, `oauth_token="user-token"`)
	assert.Contains(t, gotAuth, `oauth_signature=`)
}

func TestExecuteClassifiesServiceErrorOn2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.Execute(context.Background(), &Exec{Method: http.MethodGet, Path: "x"})

	var apiErr *pkgerrs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 88, apiErr.Code)
	assert.Equal(t, "Rate limit exceeded", apiErr.Message)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestExecuteJSONMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	var out struct{ ID int64 }
	err := c.ExecuteJSON(context.Background(), &Exec{Method: http.MethodGet, Path: "x"}, &out)

	var malformedErr *pkgerrs.MalformedResponseError
	require.ErrorAs(t, err, &malformedErr)
	assert.Contains(t, malformedErr.Body, "not json")
}

// All three delivery styles must produce semantically identical outcomes for
// identical inputs.
func TestStyleInvariance(t *testing.T) {
	t.Parallel()

	const body = `{"id":42,"text":"same everywhere"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ctx := context.Background()
	exec := func() *Exec { return &Exec{Method: http.MethodGet, Path: "x"} }

	blocking, blockingErr := c.Execute(ctx, exec())

	cbCh := make(chan struct{})
	var cbResp *types.Response
	var cbErr error
	c.ExecuteAsync(ctx, exec(), func(resp *types.Response, err error) {
		cbResp, cbErr = resp, err
		close(cbCh)
	})
	<-cbCh

	futResp, futErr := c.ExecuteFuture(ctx, exec()).Wait(ctx)

	require.NoError(t, blockingErr)
	require.NoError(t, cbErr)
	require.NoError(t, futErr)
	assert.Equal(t, blocking.StatusCode, cbResp.StatusCode)
	assert.Equal(t, blocking.StatusCode, futResp.StatusCode)
	assert.Equal(t, string(blocking.Body), string(cbResp.Body))
	assert.Equal(t, string(blocking.Body), string(futResp.Body))
}

func TestStyleInvarianceForErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`nope`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ctx := context.Background()
	exec := func() *Exec { return &Exec{Method: http.MethodGet, Path: "x"} }

	_, blockingErr := c.Execute(ctx, exec())

	cbCh := make(chan error, 1)
	c.ExecuteAsync(ctx, exec(), func(_ *types.Response, err error) { cbCh <- err })
	cbErr := <-cbCh

	_, futErr := c.ExecuteFuture(ctx, exec()).Wait(ctx)

	for _, err := range []error{blockingErr, cbErr, futErr} {
		var httpErr *pkgerrs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
		assert.Equal(t, "nope", httpErr.Body)
	}
}

// The callback must never run inline with the registering call, even when
// the outcome is known before any I/O happens. If it did, this test would
// deadlock: the callback blocks on a channel that is only closed after
// ExecuteAsync returns.
func TestCallbackNeverRunsInline(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "http://127.0.0.1:0")

	gate := make(chan struct{})
	done := make(chan error, 1)

	// AuthConfigError is detected before any I/O, the fastest possible path.
	c.ExecuteAsync(context.Background(), &Exec{Method: http.MethodGet, Path: "x", Auth: types.AuthOAuth1}, func(_ *types.Response, err error) {
		<-gate
		done <- err
	})
	close(gate)

	select {
	case err := <-done:
		var authErr *pkgerrs.AuthConfigError
		require.ErrorAs(t, err, &authErr)
	case <-time.After(5 * time.Second):
		t.Fatal("callback never delivered")
	}
}

func TestFutureSettlesExactlyOnce(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ctx := context.Background()

	f := c.ExecuteFuture(ctx, &Exec{Method: http.MethodGet, Path: "x"})
	first, firstErr := f.Wait(ctx)
	second, secondErr := f.Wait(ctx)

	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Same(t, first, second, "repeated waits must observe the same settled outcome")

	select {
	case <-f.Done():
	default:
		t.Fatal("Done channel should be closed after settlement")
	}
}

// Swapping the credential while a request is in flight must not disturb the
// authentication the request captured at signing time.
func TestCredentialSwapLeavesInFlightRequestIntact(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var headers []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Get("Authorization"))
		mu.Unlock()

		select {
		case <-started:
		default:
			close(started)
			<-release
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.SetCredential(types.NewOAuth2Credential("before-swap"))

	ctx := context.Background()
	f := c.ExecuteFuture(ctx, &Exec{Method: http.MethodGet, Path: "x", Auth: types.AuthOAuth2})

	<-started
	c.SetCredential(types.NewOAuth2Credential("after-swap"))
	close(release)

	_, err := f.Wait(ctx)
	require.NoError(t, err)

	// A second request picks up the new credential.
	_, err = c.Execute(ctx, &Exec{Method: http.MethodGet, Path: "x", Auth: types.AuthOAuth2})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, headers, 2)
	assert.Equal(t, "Bearer before-swap", headers[0])
	assert.Equal(t, "Bearer after-swap", headers[1])
}

func TestConcurrentExecutesAreIndependent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.SetCredential(types.NewOAuth1Credential("tok", "sec"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%8 == 0 {
				c.SetCredential(types.NewOAuth1Credential("tok", "sec"))
				return
			}
			if _, err := c.Execute(ctx, &Exec{Method: http.MethodGet, Path: "x", Auth: types.AuthOAuth1}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewClientNormalizesBaseURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "https://api.twitter.com/1.1")
	assert.Equal(t, "https://api.twitter.com/1.1/", c.BaseURL.String())

	_, err := NewClient(nil, NewSigner("k", "s"), "://bad", "agent", nil)
	var cfgErr *pkgerrs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
