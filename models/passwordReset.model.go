package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordReset holds the digest of an issued reset token
type PasswordReset struct {
	gorm.Model
	LearnerID uint       `gorm:"not null;index" json:"learnerId"`
	TokenHash string     `gorm:"size:64;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt"`
}
