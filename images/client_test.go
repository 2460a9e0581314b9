package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		apiKey:     "img-key",
	}
}

func TestGenerateImageBuildsPromptURL(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	url, err := c.GenerateImage(context.Background(), "a red fox in the snow")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/image/") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotPath, "a%20red%20fox") {
		t.Fatalf("prompt not escaped into the path: %q", gotPath)
	}
	for _, param := range []string{"model=flux", "width=1024", "height=1024", "nologo=true"} {
		if !strings.Contains(gotQuery, param) {
			t.Fatalf("query missing %q: %q", param, gotQuery)
		}
	}
	// The fetched URL doubles as the image location.
	if !strings.HasPrefix(url, srv.URL+"/image/") {
		t.Fatalf("returned url %q should point at the generation endpoint", url)
	}
}

func TestGenerateImageServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.GenerateImage(context.Background(), "anything")
	if !pipeline.IsRetryable(err) {
		t.Fatalf("5xx must be transient, got %v", err)
	}
}

func TestGenerateImageRejectionIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "prompt rejected", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.GenerateImage(context.Background(), "blocked prompt")
	if err == nil {
		t.Fatal("expected error from 400")
	}
	if pipeline.IsRetryable(err) {
		t.Fatalf("4xx must not be retryable, got %v", err)
	}
}
