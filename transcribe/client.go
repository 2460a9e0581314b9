// Package transcribe wraps the speech-to-text provider used to produce
// word-level caption timestamps.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/processing"
)

// Client implements pipeline.Transcriber against a Deepgram-shaped
// pre-recorded transcription API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient reads DEEPGRAM_API_URL and DEEPGRAM_API_KEY from the environment.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("DEEPGRAM_API_URL")
	if baseURL == "" {
		baseURL = "https://api.deepgram.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// transcriptionResponse is the subset of the provider response we consume:
// results -> channels -> alternatives -> words.
type transcriptionResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Words []struct {
					Word  string  `json:"word"`
					Start float64 `json:"start"`
					End   float64 `json:"end"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe fetches word timestamps for remote audio and renders them as an
// SRT document grouped into caption cues.
func (c *Client) Transcribe(ctx context.Context, audioURL string) ([]processing.Word, string, error) {
	body, err := json.Marshal(map[string]string{"url": audioURL})
	if err != nil {
		return nil, "", err
	}

	url := c.baseURL + "/v1/listen?smart_format=true&punctuate=true&utterances=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", pipeline.NewTransientError(fmt.Errorf("transcription request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("transcription API error: %d - %s", resp.StatusCode, msg)
		if resp.StatusCode >= 500 {
			return nil, "", pipeline.NewTransientError(err)
		}
		return nil, "", err
	}

	var decoded transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, "", pipeline.NewParseError(fmt.Errorf("invalid transcription response: %w", err))
	}

	words := extractWords(decoded)
	if len(words) == 0 {
		return nil, "", pipeline.NewParseError(fmt.Errorf("no words found in transcription result"))
	}

	srt := RenderSRT(processing.GroupWords(words, processing.DefaultCaptionGroupSize))
	return words, srt, nil
}

func extractWords(resp transcriptionResponse) []processing.Word {
	if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		return nil
	}
	raw := resp.Results.Channels[0].Alternatives[0].Words
	words := make([]processing.Word, 0, len(raw))
	for _, w := range raw {
		words = append(words, processing.Word{Text: w.Word, Start: w.Start, End: w.End})
	}
	return words
}

// RenderSRT formats caption cues as a standard SubRip document.
func RenderSRT(cues []processing.CaptionCue) string {
	var b bytes.Buffer
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

func srtTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
