// Package notify sends the "your video is ready" email when a run completes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

var videoReadyTemplate = template.Must(template.New("video_ready").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 20px; border-radius: 8px;">
    <h2 style="text-align: center;">Your Video is Ready! 🎬</h2>
    <p style="text-align: center;">Great news! Your video for "<strong>{{.SeriesName}}</strong>" has been successfully generated.</p>
    <a href="{{.VideoURL}}">
      <img src="{{.ThumbnailURL}}" alt="Video Thumbnail" style="width: 100%; border-radius: 8px; margin: 20px 0;" />
    </a>
    <div style="text-align: center;">
      <a href="{{.VideoURL}}" style="display: inline-block; background-color: #4f46e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold;">Watch &amp; Download Video</a>
    </div>
    <p style="margin-top: 20px; text-align: center; font-size: 12px; color: #71717a;">Powered by AI Video Generator</p>
  </div>
</body>
</html>`))

// EmailNotifier implements pipeline.Notifier against a Resend-style HTTP
// email API.
type EmailNotifier struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
}

// NewEmailNotifier reads EMAIL_API_URL, EMAIL_API_KEY and EMAIL_FROM from the
// environment.
func NewEmailNotifier() (*EmailNotifier, error) {
	apiKey := os.Getenv("EMAIL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("EMAIL_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("EMAIL_API_URL")
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "notifications@shortvids.app"
	}
	return &EmailNotifier{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendVideoReady emails the series owner a link to the finished video.
func (n *EmailNotifier) SendVideoReady(ctx context.Context, recipient, seriesName, videoURL, thumbnailURL string) error {
	var html bytes.Buffer
	err := videoReadyTemplate.Execute(&html, map[string]string{
		"SeriesName":   seriesName,
		"VideoURL":     videoURL,
		"ThumbnailURL": thumbnailURL,
	})
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendRequest{
		From:    n.from,
		To:      []string{recipient},
		Subject: fmt.Sprintf("Your %q video is ready", seriesName),
		HTML:    html.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return pipeline.NewTransientError(fmt.Errorf("email request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := fmt.Errorf("email API error: %d - %s", resp.StatusCode, msg)
		if resp.StatusCode >= 500 {
			return pipeline.NewTransientError(serr)
		}
		return serr
	}

	log.Info().Str("recipient", recipient).Msg("video ready notification sent")
	return nil
}
