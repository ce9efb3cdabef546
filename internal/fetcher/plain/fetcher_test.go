package plainfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

func TestFetchReturnsBodyAndStatus(t *testing.T) {
	t.Parallel()

	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>menu</html>"))
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second})
	resp, err := f.Fetch(context.Background(), menu.FetchRequest{
		URL:     srv.URL,
		Headers: http.Header{"User-Agent": {"probe-agent"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html>menu</html>" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if resp.Rendered {
		t.Fatal("plain responses must not be marked rendered")
	}
	if gotAgent != "probe-agent" {
		t.Fatalf("expected header passthrough, got agent %q", gotAgent)
	}
}

func TestFetchCapsBodySize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 1024)))
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second, MaxBodyBytes: 64})
	resp, err := f.Fetch(context.Background(), menu.FetchRequest{URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Body) != 64 {
		t.Fatalf("expected capped body of 64 bytes, got %d", len(resp.Body))
	}
}

func TestFetchPropagatesContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{Timeout: 2 * time.Second})
	if _, err := f.Fetch(ctx, menu.FetchRequest{URL: srv.URL}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestFetchRejectsMalformedURL(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	if _, err := f.Fetch(context.Background(), menu.FetchRequest{URL: "://nope"}); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
