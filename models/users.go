package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Google OAuth fields
	GoogleID      string `gorm:"uniqueIndex;not null" json:"google_id"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`

	// Profile from Google
	FullName string `json:"full_name"`
	Picture  string `json:"picture"`
	Locale   string `json:"locale"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Stripe/Subscription fields
	StripeCustomerID   *string    `gorm:"uniqueIndex" json:"stripe_customer_id,omitempty"`
	SubscriptionPlan   string     `gorm:"default:free" json:"subscription_plan"`
	SubscriptionStatus string     `gorm:"default:free" json:"subscription_status"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`

	// Timestamps
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// IsSubscribed reports whether the user has an active paid subscription.
func (u *User) IsSubscribed() bool {
	if u.SubscriptionStatus != "active" && u.SubscriptionStatus != "trial" {
		return false
	}
	if u.SubscriptionEndsAt != nil && u.SubscriptionEndsAt.Before(time.Now()) {
		return false
	}
	return true
}

// GoogleUserInfo mirrors the userinfo payload returned by Google OAuth.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// CreateUserFromGoogle creates a new user from Google OAuth data
func CreateUserFromGoogle(info GoogleUserInfo) *User {
	now := time.Now()
	return &User{
		GoogleID:      info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		FullName:      info.Name,
		Picture:       info.Picture,
		Locale:        info.Locale,
		LastLoginAt:   &now,
	}
}
