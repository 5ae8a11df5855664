package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/shared"
	tu "github.com/desertthunder/lmx/internal/testing"
)

// seenRequest is what the backend observed for one call.
type seenRequest struct {
	method      string
	path        string
	contentType string
	length      int64
	body        string
}

// recordingBackend answers every request with status and body and keeps what it saw.
func recordingBackend(t *testing.T, status int, body string) (*httptest.Server, func() []seenRequest) {
	t.Helper()

	var mu sync.Mutex
	var seen []seenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, seenRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			length:      r.ContentLength,
			body:        string(raw),
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func() []seenRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]seenRequest(nil), seen...)
	}
}

// unreadableClient returns a 200 whose body fails on read.
func unreadableClient() *http.Client {
	return &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       &tu.FCloser{},
	}, nil)}
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		tc := []struct {
			name string
			in   string
			want string
		}{
			{"Empty Uses Local Backend", "", "http://127.0.0.1:8080"},
			{"Trailing Slash Is Trimmed", "http://livemigrate.internal:8080/", "http://livemigrate.internal:8080"},
			{"Proxy Prefix Is Kept", "http://gateway/proxy/", "http://gateway/proxy"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := NewAPIService(tt.in, nil).BaseURL(); got != tt.want {
					t.Errorf("expected base URL %q, got %q", tt.want, got)
				}
			})
		}

		t.Run("Nil Client Uses Default", func(t *testing.T) {
			if NewAPIService("", nil).httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get Status", func(t *testing.T) {
		backend, seen := recordingBackend(t, http.StatusOK, `{"state":"PAUSED","progress":0.45}`)
		api := NewAPIService(backend.URL+"/", nil)

		resp, err := api.Get(context.Background(), StatusPath)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reqs := seen()
		if len(reqs) != 1 || reqs[0].method != http.MethodGet || reqs[0].path != StatusPath {
			t.Fatalf("expected one GET %s, got %+v", StatusPath, reqs)
		}
		if !resp.IsJSON {
			t.Fatal("expected JSON response")
		}
		data, ok := resp.JSONData.(map[string]any)
		if !ok || data["state"] != "PAUSED" || data["progress"] != 0.45 {
			t.Errorf("unexpected decoded body: %#v", resp.JSONData)
		}
	})

	t.Run("Get Behind Proxy Prefix", func(t *testing.T) {
		backend, seen := recordingBackend(t, http.StatusOK, `{}`)
		api := NewAPIService(backend.URL+"/proxy/", nil)

		if _, err := api.Get(context.Background(), StatusPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if reqs := seen(); len(reqs) != 1 || reqs[0].path != "/proxy"+StatusPath {
			t.Errorf("expected request to /proxy%s, got %+v", StatusPath, reqs)
		}
	})

	t.Run("Gateway Page Is Kept Raw", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>502 Bad Gateway</html>"))
		}))
		defer server.Close()

		resp, err := NewAPIService(server.URL, nil).Get(context.Background(), StatusPath)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", resp.StatusCode)
		}
		if resp.IsJSON || resp.JSONData != nil {
			t.Errorf("expected non-JSON response, got %#v", resp.JSONData)
		}
		if resp.Headers.Get("Content-Type") != "text/html" {
			t.Errorf("expected headers to be preserved, got %v", resp.Headers)
		}
		if string(resp.Body) != "<html>502 Bad Gateway</html>" {
			t.Errorf("expected raw body, got %q", resp.Body)
		}
	})

	t.Run("Control Posts Carry No Body", func(t *testing.T) {
		for _, path := range []string{StartPath, PausePath, ResumePath} {
			t.Run(path, func(t *testing.T) {
				backend, seen := recordingBackend(t, http.StatusOK, `{"message":"ok"}`)

				resp, err := NewAPIService(backend.URL, nil).Post(context.Background(), path, nil)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if resp.StatusCode != http.StatusOK {
					t.Errorf("expected 200, got %d", resp.StatusCode)
				}

				reqs := seen()
				if len(reqs) != 1 {
					t.Fatalf("expected one request, got %d", len(reqs))
				}
				req := reqs[0]
				if req.method != http.MethodPost || req.path != path {
					t.Errorf("expected POST %s, got %s %s", path, req.method, req.path)
				}
				if req.contentType != "" {
					t.Errorf("expected no Content-Type, got %q", req.contentType)
				}
				if req.length != 0 || req.body != "" {
					t.Errorf("expected empty body, got %d bytes %q", req.length, req.body)
				}
			})
		}
	})

	t.Run("Rejected Control Returns The Error Body", func(t *testing.T) {
		backend, _ := recordingBackend(t, http.StatusBadRequest, `{"error":"Migration already in progress"}`)

		resp, err := NewAPIService(backend.URL, nil).Post(context.Background(), StartPath, nil)
		if err != nil {
			t.Fatalf("expected a 400 to be returned as a response, got %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
		data, _ := resp.JSONData.(map[string]any)
		if data["error"] != "Migration already in progress" {
			t.Errorf("expected error body, got %#v", resp.JSONData)
		}
	})

	t.Run("Post With Payload Is JSON", func(t *testing.T) {
		backend, seen := recordingBackend(t, http.StatusOK, `{"message":"ok"}`)
		payload := `{"dryRun":true}`

		if _, err := NewAPIService(backend.URL, nil).Post(context.Background(), StartPath, []byte(payload)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := seen()[0]
		if req.contentType != "application/json" {
			t.Errorf("expected application/json, got %q", req.contentType)
		}
		if req.body != payload {
			t.Errorf("expected body %q, got %q", payload, req.body)
		}
	})

	t.Run("Unreadable Body", func(t *testing.T) {
		api := NewAPIService("http://livemigrate.test", unreadableClient())

		if _, err := api.Get(context.Background(), StatusPath); err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read failure on GET, got %v", err)
		}
		if _, err := api.Post(context.Background(), PausePath, nil); err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read failure on POST, got %v", err)
		}
	})

	t.Run("Malformed Base URL", func(t *testing.T) {
		_, err := NewAPIService("http://bad host", nil).Get(context.Background(), StatusPath)
		if err == nil || !strings.Contains(err.Error(), "failed to create request") {
			t.Errorf("expected request creation failure, got %v", err)
		}
	})
}

func TestMigrationServiceFailures(t *testing.T) {
	t.Run("Unreadable Status Body", func(t *testing.T) {
		svc := NewMigrationService("http://livemigrate.test", unreadableClient())

		status, err := svc.Status(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if status != (models.MigrationStatus{}) {
			t.Errorf("expected zero status, got %+v", status)
		}
	})

	t.Run("Unreadable Control Response", func(t *testing.T) {
		svc := NewMigrationService("http://livemigrate.test", unreadableClient())

		for _, c := range []models.Control{models.ControlStart, models.ControlPause, models.ControlResume} {
			if err := svc.Act(context.Background(), c); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest for %s, got %v", c, err)
			}
		}
	})

	t.Run("Connection Refused", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp 127.0.0.1:8080: connection refused"))}
		svc := NewMigrationService("", client)

		_, err := svc.Status(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected ErrAPIRequest carrying the cause, got %v", err)
		}
		if err := svc.Resume(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		backend := tu.NewStatusServer(t, `{"state":"MIGRATING","progress":0.1}`)
		svc := NewMigrationService(backend.URL, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := svc.Status(ctx); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest from Status, got %v", err)
		}
		if err := svc.Pause(ctx); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest from Pause, got %v", err)
		}
		if backend.Hits(StatusPath) != 0 || backend.Posts(PausePath) != 0 {
			t.Error("expected no request to reach the backend")
		}
	})
}
