// Package render talks to the remote video composition service. Submitting a
// job returns an opaque handle; progress is polled by the pipeline until the
// job finishes or fails.
package render

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
)

// Client implements pipeline.RenderService against a Remotion-Lambda-shaped
// render API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient reads RENDER_API_URL and RENDER_API_KEY from the environment.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("RENDER_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("RENDER_API_URL environment variable not set")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     os.Getenv("RENDER_API_KEY"),
	}, nil
}

type submitResponse struct {
	RenderID   string `json:"renderId"`
	BucketName string `json:"bucketName"`
}

type progressResponse struct {
	OverallProgress float64 `json:"overallProgress"`
	Done            bool    `json:"done"`
	FatalError      string  `json:"fatalError,omitempty"`
	OutputFile      string  `json:"outputFile,omitempty"`
}

// Submit sends the composition to the renderer and returns the job handle.
func (c *Client) Submit(ctx context.Context, comp pipeline.Composition) (pipeline.RenderJob, error) {
	if len(comp.Images) == 0 {
		return pipeline.RenderJob{}, pipeline.NewValidationError("composition has no images")
	}

	var decoded submitResponse
	if err := c.post(ctx, "/renders", comp, &decoded); err != nil {
		return pipeline.RenderJob{}, err
	}
	if decoded.RenderID == "" || decoded.BucketName == "" {
		return pipeline.RenderJob{}, pipeline.NewParseError(fmt.Errorf("render service returned incomplete job handle"))
	}
	return pipeline.RenderJob{RenderID: decoded.RenderID, BucketName: decoded.BucketName}, nil
}

// Progress returns one status snapshot for a submitted job.
func (c *Client) Progress(ctx context.Context, job pipeline.RenderJob) (pipeline.RenderProgress, error) {
	reqBody := map[string]string{"renderId": job.RenderID, "bucketName": job.BucketName}

	var decoded progressResponse
	if err := c.post(ctx, "/progress", reqBody, &decoded); err != nil {
		return pipeline.RenderProgress{}, err
	}
	return pipeline.RenderProgress{
		Overall:    decoded.OverallProgress,
		Done:       decoded.Done,
		FatalError: decoded.FatalError,
		OutputFile: decoded.OutputFile,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pipeline.NewTransientError(fmt.Errorf("render service request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		rerr := fmt.Errorf("render service error: %d - %s", resp.StatusCode, msg)
		if resp.StatusCode >= 500 {
			return pipeline.NewTransientError(rerr)
		}
		return rerr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pipeline.NewParseError(fmt.Errorf("invalid render service response: %w", err))
	}
	return nil
}
