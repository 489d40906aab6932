package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// h2cServer serves handler over cleartext HTTP/2. Requests that arrive as
// HTTP/1.x are refused with 505.
func h2cServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	strict := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor != 2 {
			http.Error(w, "HTTP/2 required", http.StatusHTTPVersionNotSupported)
			return
		}
		handler(w, r)
	})
	server := httptest.NewServer(h2c.NewHandler(strict, &http2.Server{}))
	t.Cleanup(server.Close)
	return server
}

// TestClient_ConnectionReuse verifies that the HTTP client reuses connections
// between ticks.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient()

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5

	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		resp := client.Fetch(ctx, server.URL, 5*time.Second)
		if resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}

	expectedMinReuse := numRequests - 2 // allow some tolerance
	if reusedCount < expectedMinReuse {
		t.Errorf("expected at least %d reused connections, got %d out of %d requests",
			expectedMinReuse, reusedCount, numRequests)
	}
}

func TestClient_Fetch(t *testing.T) {
	var gotMethod string
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"machineEnabled": true}`))
	}))
	defer server.Close()

	resp := NewClient().Fetch(context.Background(), server.URL, time.Second)
	if resp.Error != nil {
		t.Fatalf("Fetch() error = %v", resp.Error)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
	if string(resp.Body) != `{"machineEnabled": true}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	// only the transport's default headers are sent
	if got := gotHeaders.Get("Accept"); got != "" {
		t.Errorf("Accept = %q, want no Accept header", got)
	}
	if resp.ProtoMajor != 1 {
		t.Errorf("ProtoMajor = %d, want 1 for plain http", resp.ProtoMajor)
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	resp := NewClient().Fetch(context.Background(), server.URL, 50*time.Millisecond)
	if !errors.Is(resp.Error, ErrTransport) {
		t.Errorf("Error = %v, want ErrTransport", resp.Error)
	}
	if resp.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", resp.StatusCode)
	}
}

func TestClient_FetchInvalidURL(t *testing.T) {
	resp := NewClient().Fetch(context.Background(), "://bad", time.Second)
	if !errors.Is(resp.Error, ErrTransport) {
		t.Errorf("Error = %v, want ErrTransport", resp.Error)
	}
	if !strings.Contains(resp.Error.Error(), "failed to create request") {
		t.Errorf("Error = %v, want to mention request creation", resp.Error)
	}
}

func TestClient_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBodySize+100)))
	}))
	defer server.Close()

	resp := NewClient().Fetch(context.Background(), server.URL, 5*time.Second)
	if resp.Error != nil {
		t.Fatalf("Fetch() error = %v", resp.Error)
	}
	if len(resp.Body) != maxResponseBodySize {
		t.Errorf("len(Body) = %d, want %d", len(resp.Body), maxResponseBodySize)
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient()

	client.Close()
	client.Close()
	client.Close()
}

// TestClient_Close_NilClient verifies that Close() handles nil receiver safely.
func TestClient_Close_NilClient(t *testing.T) {
	var client *Client

	client.Close()
}

func TestH2CClient_SpeaksHTTP2(t *testing.T) {
	server := h2cServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"machineEnabled":true}`))
	})

	client := NewH2CClient()
	defer client.Close()

	resp := client.Fetch(context.Background(), server.URL, time.Second)
	if resp.Error != nil {
		t.Fatalf("Fetch() error = %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.ProtoMajor != 2 {
		t.Errorf("ProtoMajor = %d, want 2", resp.ProtoMajor)
	}
	if string(resp.Body) != `{"machineEnabled":true}` {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestH2CClient_ReusesConnection(t *testing.T) {
	server := h2cServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	client := NewH2CClient()
	defer client.Close()

	var reused int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reused++
			}
		},
	}

	for i := 0; i < 3; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		if resp := client.Fetch(ctx, server.URL, time.Second); resp.Error != nil {
			t.Fatalf("request %d failed: %v", i, resp.Error)
		}
	}
	if reused < 2 {
		t.Errorf("reused connections = %d, want at least 2", reused)
	}
}

func TestClient_PlainClientRefusedByH2COnlyServer(t *testing.T) {
	server := h2cServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp := NewClient().Fetch(context.Background(), server.URL, time.Second)
	if resp.Error != nil {
		t.Fatalf("Fetch() error = %v", resp.Error)
	}
	if resp.StatusCode != http.StatusHTTPVersionNotSupported {
		t.Errorf("StatusCode = %d, want 505 for an HTTP/1.1 request", resp.StatusCode)
	}
}

func TestPoller_H2CConfig(t *testing.T) {
	server := h2cServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"machineEnabled":true,"beamBroken":false,"lastKeyPressed":"5"}`))
	})

	p := New(Config{URL: server.URL, H2C: true}, nil)
	defer p.Stop()

	snap, err := p.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce() error = %v", err)
	}
	if !snap.MachineEnabled || snap.LastKey != "5" {
		t.Errorf("snapshot = %+v, want enabled with last key 5", snap)
	}
}
