package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", ua)
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := New(Config{UserAgent: "test-agent"})
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("Fetch() body = %q", body)
	}
}

func TestFetcher_NetworkErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{"not found", http.StatusNotFound, http.StatusNotFound},
		{"server error", http.StatusInternalServerError, http.StatusInternalServerError},
		{"forbidden", http.StatusForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := New(Config{}).Fetch(context.Background(), server.URL)
			var netErr *NetworkError
			if !errors.As(err, &netErr) {
				t.Fatalf("Fetch() error = %v, want *NetworkError", err)
			}
			if netErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", netErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestFetcher_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(Config{Timeout: time.Second}).Fetch(context.Background(), url)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() error = %v, want *NetworkError", err)
	}
	if netErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", netErr.StatusCode)
	}
}

func TestFetcher_DecodesCompressedBodies(t *testing.T) {
	const page = "<div class=\"card\">compressed</div>"

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(page))
	gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(page))
	bw.Close()

	tests := []struct {
		name     string
		encoding string
		payload  []byte
	}{
		{"gzip", "gzip", gz.Bytes()},
		{"brotli", "br", br.Bytes()},
		{"identity", "", []byte(page)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				w.Write(tt.payload)
			}))
			defer server.Close()

			body, err := New(Config{}).Fetch(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if string(body) != page {
				t.Errorf("body = %q, want %q", body, page)
			}
		})
	}
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestBodyReader_Close(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte("page"))
	gw.Close()

	tests := []struct {
		encoding string
		payload  []byte
	}{
		{"gzip", gz.Bytes()},
		{"br", nil},
		{"", []byte("page")},
	}

	for _, tt := range tests {
		body := &trackedBody{Reader: bytes.NewReader(tt.payload)}
		resp := &http.Response{Header: http.Header{}, Body: body}
		if tt.encoding != "" {
			resp.Header.Set("Content-Encoding", tt.encoding)
		}

		reader, err := bodyReader(resp)
		if err != nil {
			t.Fatalf("bodyReader(%q) error: %v", tt.encoding, err)
		}
		if tt.encoding == "gzip" {
			if _, ok := reader.(*gzip.Reader); !ok {
				t.Errorf("gzip reader = %T, want *gzip.Reader", reader)
			}
		}
		if err := reader.Close(); err != nil {
			t.Errorf("Close(%q) error: %v", tt.encoding, err)
		}
		if body.closed {
			t.Errorf("closing the %q reader closed the response body", tt.encoding)
		}
	}
}

func TestFetcher_EnforcesDelayBetweenRequests(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
	}))
	defer server.Close()

	delay := 150 * time.Millisecond
	f := New(Config{Delay: delay})
	if !f.LastRequest().IsZero() {
		t.Fatal("LastRequest() should be zero before any fetch")
	}

	var released []time.Time
	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		released = append(released, f.LastRequest())
	}

	if gap := released[1].Sub(released[0]); gap < delay-10*time.Millisecond {
		t.Errorf("LastRequest() advanced by %v, want at least %v", gap, delay)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(times) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(times))
	}
	if gap := times[1].Sub(times[0]); gap < delay-10*time.Millisecond {
		t.Errorf("requests %v apart, want at least %v", gap, delay)
	}
}

func TestFetcher_PacingHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	f := New(Config{Delay: time.Hour})
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("first Fetch() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, server.URL)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() error = %v, want *NetworkError", err)
	}
}

func TestNetworkError_Message(t *testing.T) {
	withStatus := &NetworkError{URL: "https://example.test", StatusCode: 503}
	if got := withStatus.Error(); got != "fetching https://example.test: HTTP 503" {
		t.Errorf("Error() = %q", got)
	}

	inner := errors.New("connection refused")
	transport := &NetworkError{URL: "https://example.test", Err: inner}
	if !errors.Is(transport, inner) {
		t.Error("NetworkError should unwrap to the transport error")
	}
}
