// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/desertthunder/lmx/internal/models"
)

// MockClient is a test double for services.MigrationClient.
//
// Status returns the configured status/error; Act records each control and returns ActErr.
type MockClient struct {
	mu        sync.Mutex
	status    models.MigrationStatus
	statusErr error
	ActErr    error
	actions   []models.Control
	polls     int
}

// NewMockClient returns a client whose Status reports status.
func NewMockClient(status models.MigrationStatus) *MockClient {
	return &MockClient{status: status}
}

// SetStatus changes what subsequent Status calls return.
func (m *MockClient) SetStatus(status models.MigrationStatus, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.statusErr = err
}

func (m *MockClient) Status(ctx context.Context) (models.MigrationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls++
	return m.status, m.statusErr
}

func (m *MockClient) Act(ctx context.Context, c models.Control) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, c)
	return m.ActErr
}

// Actions returns the controls dispatched so far.
func (m *MockClient) Actions() []models.Control {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Control(nil), m.actions...)
}

// Polls returns how many times Status was called.
func (m *MockClient) Polls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

// StatusServer is an httptest backend serving the migration endpoints.
type StatusServer struct {
	*httptest.Server

	mu    sync.Mutex
	body  string
	hits  map[string]int
	posts map[string]int
}

// NewStatusServer starts a backend whose status endpoint returns body verbatim.
// The server is closed when the test ends.
func NewStatusServer(t *testing.T, body string) *StatusServer {
	t.Helper()

	s := &StatusServer{body: body, hits: map[string]int{}, posts: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		if r.Method == http.MethodPost {
			s.posts[r.URL.Path]++
		}
		body := s.body
		s.mu.Unlock()

		if r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"ok"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)

	return s
}

// SetBody changes the status body.
func (s *StatusServer) SetBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

// Hits returns how many requests reached path.
func (s *StatusServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Posts returns how many POST requests reached path.
func (s *StatusServer) Posts(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[path]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
