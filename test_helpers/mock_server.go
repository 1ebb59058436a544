// Package test_helpers provides a configurable mock Twitter API server for
// tests. It serves canned responses per path, records every request it sees,
// and ships presets for the OAuth handshake and a few REST endpoints.
package test_helpers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines a canned response for one path.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// RequestEntry records one request the mock server received.
type RequestEntry struct {
	Method    string
	Path      string
	Headers   http.Header
	Body      string
	Timestamp time.Time
}

// MockServer serves configurable responses and logs incoming requests.
type MockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	responses   map[string]*MockResponse
	defaultResp *MockResponse
	requestLog  []RequestEntry
	callCount   map[string]int
}

// NewMockServer creates a mock server with a generic JSON default response.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]*MockResponse),
		callCount: make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusOK,
			Body:   `{"message": "mock response"}`,
		},
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures the response for a specific path.
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// SetDefaultResponse configures the response for paths with no specific entry.
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.defaultResp = response
}

// CallCount returns how many requests hit a path.
func (ms *MockServer) CallCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.callCount[path]
}

// LastRequest returns the most recent request made to a path, or nil.
func (ms *MockServer) LastRequest(path string) *RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		if ms.requestLog[i].Path == path {
			entry := ms.requestLog[i]
			return &entry
		}
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := ""
	if r.Body != nil {
		if b, err := io.ReadAll(r.Body); err == nil {
			body = string(b)
		}
	}

	ms.mu.Lock()
	ms.callCount[r.URL.Path]++
	ms.requestLog = append(ms.requestLog, RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Headers:   r.Header.Clone(),
		Body:      body,
		Timestamp: time.Now(),
	})
	response, exists := ms.responses[r.URL.Path]
	if !exists {
		response = ms.defaultResp
	}
	ms.mu.Unlock()

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.Status)
	w.Write([]byte(response.Body))
}

// TwitterMockServer is a MockServer pre-configured with Twitter-shaped
// responses for the OAuth handshake and a couple of REST endpoints.
type TwitterMockServer struct {
	*MockServer
}

// NewTwitterMockServer creates a mock server with default Twitter responses:
// a request-token/access-token handshake (rt1/rs1 -> at1/as1), an app-only
// bearer token, and a status lookup.
func NewTwitterMockServer() *TwitterMockServer {
	tms := &TwitterMockServer{MockServer: NewMockServer()}
	tms.setupDefaultResponses()
	return tms
}

func (tms *TwitterMockServer) setupDefaultResponses() {
	tms.SetResponse("/oauth/request_token", &MockResponse{
		Status:  http.StatusOK,
		Body:    "oauth_token=rt1&oauth_token_secret=rs1&oauth_callback_confirmed=true",
		Headers: map[string]string{"Content-Type": "text/html; charset=utf-8"},
	})

	tms.SetResponse("/oauth/access_token", &MockResponse{
		Status:  http.StatusOK,
		Body:    "oauth_token=at1&oauth_token_secret=as1&user_id=11&screen_name=testuser",
		Headers: map[string]string{"Content-Type": "text/html; charset=utf-8"},
	})

	tms.SetResponse("/oauth2/token", &MockResponse{
		Status:  http.StatusOK,
		Body:    `{"token_type":"bearer","access_token":"bearer-xyz"}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})

	tms.SetResponse("/1.1/statuses/show.json", &MockResponse{
		Status:  http.StatusOK,
		Body:    `{"id":20,"id_str":"20","text":"just setting up my twttr","user":{"id":12,"id_str":"12","screen_name":"jack","name":"jack"}}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})

	tms.SetResponse("/1.1/account/verify_credentials.json", &MockResponse{
		Status:  http.StatusOK,
		Body:    `{"id":11,"id_str":"11","screen_name":"testuser","name":"Test User"}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// SetupNotFound configures a path to answer with Twitter's code-34 error.
func (tms *TwitterMockServer) SetupNotFound(path string) {
	tms.SetResponse(path, &MockResponse{
		Status:  http.StatusNotFound,
		Body:    `{"errors":[{"code":34,"message":"Sorry, that page does not exist"}]}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}
