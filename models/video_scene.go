package models

import "time"

// VideoScene is one visual unit of a video: an image prompt plus the sentence
// narrated over it. Scenes are ordered by SceneNumber.
type VideoScene struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	VideoID uint `gorm:"not null;index" json:"video_id"`

	SceneNumber       int    `gorm:"not null" json:"scene_number"`
	VisualPrompt      string `gorm:"type:text;not null" json:"visual_prompt"`
	VoiceoverSentence string `gorm:"type:text" json:"voiceover_sentence"`
	ImageURL          string `json:"image_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (VideoScene) TableName() string {
	return "video_scenes"
}
