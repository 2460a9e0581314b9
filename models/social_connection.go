package models

import "time"

// SocialConnection stores a user's OAuth tokens for a publishing platform
// (currently only "youtube"). Tokens are refreshed in place when expired.
type SocialConnection struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index:idx_user_platform,unique" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Platform     string    `gorm:"not null;index:idx_user_platform,unique" json:"platform"`
	AccessToken  string    `gorm:"not null" json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SocialConnection) TableName() string {
	return "social_connections"
}

// NeedsRefresh reports whether the access token is expired or about to expire.
// A five minute buffer avoids handing out a token that dies mid-upload.
func (sc *SocialConnection) NeedsRefresh() bool {
	return time.Now().Add(5 * time.Minute).After(sc.ExpiresAt)
}
