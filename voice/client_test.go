package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

func testFonada(baseURL string) *FonadaClient {
	return &FonadaClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		apiKey:     "test-key",
		maxChars:   MaxChunkChars,
	}
}

func TestSynthesizeChunksLongNarration(t *testing.T) {
	var requests []synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts/generate-audio-large" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, req)
		fmt.Fprintf(w, "audio-%d|", len(requests))
	}))
	defer srv.Close()

	c := testFonada(srv.URL)

	// ~900 chars of sentences: must arrive as multiple requests, each under
	// the provider limit, and concatenate in order.
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	audio, err := c.Synthesize(context.Background(), text, "voice-7", "en")
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}

	if len(requests) < 3 {
		t.Fatalf("expected at least 3 chunk requests, got %d", len(requests))
	}
	for i, req := range requests {
		if len(req.Input) > MaxChunkChars {
			t.Fatalf("request %d exceeds chunk limit: %d chars", i, len(req.Input))
		}
		if req.Voice != "voice-7" || req.Language != "en" {
			t.Fatalf("request %d lost voice config: %+v", i, req)
		}
	}

	want := ""
	for i := range requests {
		want += fmt.Sprintf("audio-%d|", i+1)
	}
	if string(audio) != want {
		t.Fatalf("audio not concatenated in request order: %q", audio)
	}
}

func TestSynthesizeShortTextSingleRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	c := testFonada(srv.URL)
	if _, err := c.Synthesize(context.Background(), "Short narration.", "v", "en"); err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 request, got %d", calls)
	}
}

func TestSynthesizeServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testFonada(srv.URL)
	_, err := c.Synthesize(context.Background(), "Some narration.", "v", "en")
	if err == nil {
		t.Fatal("expected error from 503")
	}
	if !pipeline.IsRetryable(err) {
		t.Fatalf("5xx must classify as transient, got %v", err)
	}
}

func TestSynthesizeClientErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown voice", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testFonada(srv.URL)
	_, err := c.Synthesize(context.Background(), "Some narration.", "bad-voice", "en")
	if err == nil {
		t.Fatal("expected error from 400")
	}
	if pipeline.IsRetryable(err) {
		t.Fatalf("4xx must not classify as transient, got %v", err)
	}
}

func TestNewFonadaClientRequiresAPIKey(t *testing.T) {
	t.Setenv("TTS_API_KEY", "")
	if _, err := NewFonadaClient(); err == nil {
		t.Fatal("expected error without TTS_API_KEY")
	}
}
