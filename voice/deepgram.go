package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/processing"
)

// DeepgramClient talks to the Deepgram speak API. The voice ID doubles as the
// speak model name, which also fixes the language.
type DeepgramClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxChars   int
}

// NewDeepgramClient reads DEEPGRAM_API_KEY (shared with transcription) and
// DEEPGRAM_TTS_URL from the environment.
func NewDeepgramClient() (*DeepgramClient, error) {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("DEEPGRAM_TTS_URL")
	if baseURL == "" {
		baseURL = "https://api.deepgram.com"
	}
	return &DeepgramClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxChars:   MaxChunkChars,
	}, nil
}

type speakRequest struct {
	Text string `json:"text"`
}

func (c *DeepgramClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	chunks := processing.ChunkText(text, c.maxChars)
	log.Debug().Int("chunks", len(chunks)).Str("model", voiceID).Msg("synthesizing narration")

	var audio bytes.Buffer
	for i, chunk := range chunks {
		part, err := c.speakChunk(ctx, chunk, voiceID)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(part)
	}
	return audio.Bytes(), nil
}

func (c *DeepgramClient) speakChunk(ctx context.Context, chunk, voiceID string) ([]byte, error) {
	body, err := json.Marshal(speakRequest{Text: chunk})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/v1/speak?model=" + url.QueryEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pipeline.NewTransientError(fmt.Errorf("speak request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("speak API error: %d %s - %s", resp.StatusCode, resp.Status, msg)
		if resp.StatusCode >= 500 {
			return nil, pipeline.NewTransientError(err)
		}
		return nil, err
	}

	return io.ReadAll(resp.Body)
}
