package models

import (
	"time"

	"gorm.io/gorm"
)

// Learner is a registered user of the platform together with the
// progress, subscription and referral facts derived state is computed from.
type Learner struct {
	gorm.Model
	Name     string  `gorm:"default:''" json:"name"`
	Phone    *string `gorm:"uniqueIndex;size:20" json:"phone"`
	Email    *string `gorm:"uniqueIndex;size:100" json:"email"`
	Password string  `gorm:"not null" json:"-"` // bcrypt hash
	Role     string  `gorm:"default:'USER'" json:"role"`

	// Referral
	ReferralCode         string  `gorm:"uniqueIndex;size:20;not null" json:"referralCode"`
	ReferredBy           *string `gorm:"size:20;index" json:"referredBy"`
	ReferralCount        int     `gorm:"default:0" json:"referralCount"`
	ReferralBonusAwarded bool    `gorm:"default:false" json:"referralBonusAwarded"`
	Wallet               int64   `gorm:"default:0;not null" json:"wallet"`

	// Progress pointer; completed lessons and passed quizzes live in their own tables
	CurrentLevel Level `gorm:"type:varchar(20);default:'beginner'" json:"currentLevel"`

	// Subscription
	SubscriptionType      Plan               `gorm:"type:varchar(20);default:'free'" json:"subscriptionType"`
	SubscriptionStatus    SubscriptionStatus `gorm:"type:varchar(20);default:'none'" json:"subscriptionStatus"`
	SubscriptionStartDate *time.Time         `json:"subscriptionStartDate"`
	SubscriptionEndDate   *time.Time         `json:"subscriptionEndDate"`
	LastPaymentID         string             `gorm:"size:100" json:"-"`
	ExpiryReminderSentAt  *time.Time         `json:"-"`

	SessionToken string `gorm:"size:64" json:"-"`
	IsDeleted    bool   `gorm:"default:false" json:"-"`
}

// Identifier returns the phone number, falling back to the email address
func (l *Learner) Identifier() string {
	if l.Phone != nil && *l.Phone != "" {
		return *l.Phone
	}
	if l.Email != nil {
		return *l.Email
	}
	return ""
}
