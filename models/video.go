package models

import "time"

// Video statuses.
const (
	VideoStatusRendering = "rendering"
	VideoStatusCompleted = "completed"
	VideoStatusFailed    = "failed"
)

// Video is the durable asset record produced by a run. It ties the script,
// audio, captions, images and render job together; one row per run.
type Video struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	SeriesID uint `gorm:"not null;index" json:"series_id"`
	RunID    uint `gorm:"not null;uniqueIndex" json:"run_id"`

	Title  string `gorm:"size:255" json:"title"`
	Script string `gorm:"type:text" json:"script,omitempty"`

	AudioURL    string `json:"audio_url,omitempty"`
	CaptionsURL string `json:"captions_url,omitempty"`

	// Remote render job handle. At most one job is active per video.
	RenderID     string `json:"render_id,omitempty"`
	RenderBucket string `json:"render_bucket,omitempty"`

	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	Status       string `gorm:"default:'rendering';index" json:"status"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Scenes []VideoScene `gorm:"foreignKey:VideoID" json:"scenes,omitempty"`
}

func (Video) TableName() string {
	return "seriesvideos"
}
