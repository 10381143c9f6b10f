package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType defines the type of wallet transaction
type TransactionType string

const (
	TransactionTypeReferralBonus TransactionType = "REFERRAL_BONUS"
	TransactionTypeRedemption    TransactionType = "REDEMPTION"
)

// WalletTransaction is the append-only ledger behind Learner.Wallet
type WalletTransaction struct {
	gorm.Model
	LearnerID       uint            `gorm:"not null;index" json:"learnerId"`
	TransactionType TransactionType `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          int64           `gorm:"not null" json:"amount"`
	BalanceBefore   int64           `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    int64           `gorm:"not null" json:"balanceAfter"`
	Description     string          `gorm:"type:text" json:"description"`

	// IdempotencyKey makes each credit or debit happen at most once,
	// e.g. "referral:<referred learner id>" or "redemption:<redemption id>".
	IdempotencyKey string `gorm:"size:100;uniqueIndex" json:"-"`

	// Reference details
	ReferenceType string `gorm:"type:varchar(50)" json:"referenceType"` // learner, redemption
	ReferenceID   uint   `gorm:"default:0" json:"referenceId"`

	TransactionDate time.Time `gorm:"not null" json:"transactionDate"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
