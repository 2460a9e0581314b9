// Package publish uploads completed videos to the owner's linked social
// accounts. Only YouTube is supported today.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"gorm.io/gorm"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
)

const maxTitleLen = 100

// YouTubePublisher uploads a rendered video to the owning user's YouTube
// channel using their stored OAuth tokens, refreshing them when expired.
type YouTubePublisher struct {
	DB          *gorm.DB
	httpClient  *http.Client
	oauthConfig *oauth2.Config
}

// NewYouTubePublisher reads GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET from
// the environment.
func NewYouTubePublisher(db *gorm.DB) *YouTubePublisher {
	return &YouTubePublisher{
		DB:         db,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		oauthConfig: &oauth2.Config{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			Endpoint:     google.Endpoint,
		},
	}
}

// Publish uploads the video and returns the public watch URL.
func (p *YouTubePublisher) Publish(ctx context.Context, userID uint, video models.Video, privacyStatus string) (string, error) {
	if video.VideoURL == "" || video.Status != models.VideoStatusCompleted {
		return "", fmt.Errorf("video %d is not ready for publishing", video.ID)
	}
	if privacyStatus == "" {
		privacyStatus = "private"
	}

	token, err := p.validToken(ctx, userID)
	if err != nil {
		return "", err
	}

	svc, err := youtube.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, video.VideoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download rendered video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download rendered video: status %d", resp.StatusCode)
	}

	title := video.Title
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	upload := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: video.Script,
			Tags:        []string{"AI Generated", "Shorts"},
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, upload)
	call.Media(resp.Body)

	uploaded, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	log.Info().Uint("video_id", video.ID).Str("url", watchURL).Msg("published to youtube")
	return watchURL, nil
}

// validToken returns a live access token for the user's YouTube connection,
// refreshing and persisting it when expired.
func (p *YouTubePublisher) validToken(ctx context.Context, userID uint) (*oauth2.Token, error) {
	var conn models.SocialConnection
	err := p.DB.Where("user_id = ? AND platform = ?", userID, "youtube").First(&conn).Error
	if err != nil {
		return nil, fmt.Errorf("no YouTube connection found for user %d: %w", userID, err)
	}

	if !conn.NeedsRefresh() {
		return &oauth2.Token{AccessToken: conn.AccessToken}, nil
	}

	if conn.RefreshToken == "" {
		return nil, fmt.Errorf("token expired and no refresh token available, re-connect account")
	}

	log.Info().Uint("user_id", userID).Msg("refreshing youtube token")
	source := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: conn.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh youtube token: %w", err)
	}

	updates := map[string]interface{}{
		"access_token": token.AccessToken,
		"expires_at":   token.Expiry,
	}
	// Refresh tokens usually stay stable, but Google may rotate them.
	if token.RefreshToken != "" {
		updates["refresh_token"] = token.RefreshToken
	}
	if err := p.DB.Model(&conn).Updates(updates).Error; err != nil {
		return nil, err
	}
	return token, nil
}
