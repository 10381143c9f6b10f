package models

import (
	"time"

	"gorm.io/gorm"
)

// RedemptionStatus enum values, in the only order they may be entered
type RedemptionStatus string

const (
	RedemptionPending    RedemptionStatus = "pending"
	RedemptionProcessing RedemptionStatus = "processing"
	RedemptionProcessed  RedemptionStatus = "processed"
)

// Rank orders the statuses; -1 for unknown values
func (s RedemptionStatus) Rank() int {
	switch s {
	case RedemptionPending:
		return 0
	case RedemptionProcessing:
		return 1
	case RedemptionProcessed:
		return 2
	}
	return -1
}

// Redemption is a learner's request to cash out wallet balance
type Redemption struct {
	gorm.Model
	LearnerID    uint             `gorm:"not null;index" json:"learnerId"`
	LearnerName  string           `json:"learnerName"`
	LearnerPhone string           `json:"learnerPhone"`
	Amount       int64            `gorm:"not null" json:"amount"`
	Status       RedemptionStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	RequestedAt  time.Time        `gorm:"not null" json:"requestedAt"`
	ProcessedAt  *time.Time       `json:"processedAt"`
	Notes        string           `gorm:"type:text" json:"notes"`
}
