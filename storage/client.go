// Package storage uploads pipeline artifacts to a Supabase-style object store
// bucket with upsert semantics, so re-running a step overwrites the same
// object instead of duplicating it.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

// Client implements pipeline.ObjectStore.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bucket     string
	apiKey     string
}

// NewClient reads STORAGE_API_URL, STORAGE_BUCKET and STORAGE_API_KEY from
// the environment.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("STORAGE_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("STORAGE_API_URL environment variable not set")
	}
	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		bucket = "videos"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		bucket:     bucket,
		apiKey:     os.Getenv("STORAGE_API_KEY"),
	}, nil
}

// Upload writes data to the deterministic path and returns its public URL.
// The upsert header makes re-invocation overwrite rather than fail, which the
// pipeline relies on for idempotent steps.
func (c *Client) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pipeline.NewTransientError(fmt.Errorf("storage upload failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		uerr := fmt.Errorf("storage API error: %d - %s", resp.StatusCode, msg)
		if resp.StatusCode >= 500 {
			return "", pipeline.NewTransientError(uerr)
		}
		return "", uerr
	}
	io.Copy(io.Discard, resp.Body)

	return c.PublicURL(path), nil
}

// PublicURL derives the world-readable URL for an object path.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}
