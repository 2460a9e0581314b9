package models

import (
	"strings"
	"time"
)

// Series lifecycle statuses.
const (
	SeriesStatusPending   = "pending"
	SeriesStatusActive    = "active"
	SeriesStatusPaused    = "paused"
	SeriesStatusCompleted = "completed"
)

// TTS providers a series can be configured with.
const (
	VoiceProviderDeepgram = "deepgram"
	VoiceProviderFonada   = "fonadalab"
)

// Series is a recurring content configuration owned by a user. The wizard
// creates it; the scheduler and pipeline only ever read it.
type Series struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	// Content brief
	NicheType      string `gorm:"not null" json:"niche_type"`
	Niche          string `gorm:"not null" json:"niche"`
	VideoStyle     string `json:"video_style"`
	CaptionStyle   string `json:"caption_style"`
	TargetDuration string `gorm:"default:'30-40 seconds'" json:"target_duration"`
	Language       string `gorm:"default:'en'" json:"language"`

	// Voice configuration. Provider is "deepgram" or "fonadalab".
	VoiceProvider string `json:"voice_provider"`
	VoiceID       string `json:"voice_id"`

	// Scheduling. PublishTime is a local "HH:MM" time of day.
	PublishTime string `json:"publish_time"`
	Platforms   string `json:"platforms"` // comma-separated, e.g. "youtube,tiktok"

	Status    string    `gorm:"default:'pending';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Video count (computed field, not persisted)
	VideoCount int `gorm:"-" json:"video_count"`
}

func (Series) TableName() string {
	return "series"
}

// PlatformList splits the stored platform string into individual platforms.
func (s *Series) PlatformList() []string {
	if strings.TrimSpace(s.Platforms) == "" {
		return nil
	}
	parts := strings.Split(s.Platforms, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
