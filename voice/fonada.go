package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/processing"
)

// FonadaClient talks to the Fonada TTS API. Long narration is chunked,
// synthesized chunk by chunk and concatenated in order.
type FonadaClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxChars   int
}

// NewFonadaClient reads TTS_API_URL and TTS_API_KEY from the environment.
func NewFonadaClient() (*FonadaClient, error) {
	apiKey := os.Getenv("TTS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("TTS_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("TTS_API_URL")
	if baseURL == "" {
		baseURL = "https://api.fonada.ai"
	}
	return &FonadaClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxChars:   MaxChunkChars,
	}, nil
}

type synthesizeRequest struct {
	Input    string `json:"input"`
	Voice    string `json:"voice"`
	Language string `json:"language"`
}

func (c *FonadaClient) Synthesize(ctx context.Context, text, voiceID, language string) ([]byte, error) {
	chunks := processing.ChunkText(text, c.maxChars)
	log.Debug().Int("chunks", len(chunks)).Msg("synthesizing narration")

	var audio bytes.Buffer
	for i, chunk := range chunks {
		part, err := c.synthesizeChunk(ctx, chunk, voiceID, language)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(part)
	}
	return audio.Bytes(), nil
}

func (c *FonadaClient) synthesizeChunk(ctx context.Context, chunk, voiceID, language string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Input: chunk, Voice: voiceID, Language: language})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/generate-audio-large", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pipeline.NewTransientError(fmt.Errorf("TTS request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("TTS API error: %d %s - %s", resp.StatusCode, resp.Status, msg)
		if resp.StatusCode >= 500 {
			return nil, pipeline.NewTransientError(err)
		}
		return nil, err
	}

	return io.ReadAll(resp.Body)
}
