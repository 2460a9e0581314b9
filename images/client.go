// Package images generates one image per scene visual prompt.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

// Client implements pipeline.ImageGenerator against a Pollinations-style
// prompt-in-URL image API. The generation URL itself is the durable image
// location, so a fetch both renders and validates it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient reads IMAGE_API_URL and IMAGE_API_KEY from the environment.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("IMAGE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("IMAGE_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("IMAGE_API_URL")
	if baseURL == "" {
		baseURL = "https://gen.pollinations.ai"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

// GenerateImage renders one image for the prompt and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	imageURL := fmt.Sprintf(
		"%s/image/%s?model=flux&width=1024&height=1024&nologo=true&enhance=true",
		c.baseURL, url.PathEscape(prompt),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pipeline.NewTransientError(fmt.Errorf("image request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("image API error: %d %s - %s", resp.StatusCode, resp.Status, msg)
		if resp.StatusCode >= 500 {
			return "", pipeline.NewTransientError(err)
		}
		return "", err
	}
	// Drain so the connection can be reused; the URL is what we keep.
	io.Copy(io.Discard, resp.Body)

	log.Debug().Str("url", imageURL).Msg("image generated")
	return imageURL, nil
}
