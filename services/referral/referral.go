// Package referral credits referrers for the first paid subscription of the
// learners they brought in, and issues referral codes.
package referral

import (
	"fmt"
	"log"
	"time"

	"maitree/apperr"
	"maitree/models"
	"maitree/repository"

	"gorm.io/gorm"
)

// Ledger pays referral bonuses
type Ledger struct {
	bonuses map[models.Plan]int64
}

func NewLedger(monthlyBonus, lifetimeBonus int64) *Ledger {
	return &Ledger{bonuses: map[models.Plan]int64{
		models.PlanMonthly:  monthlyBonus,
		models.PlanLifetime: lifetimeBonus,
	}}
}

// BonusFor returns the bonus paid for a purchase of plan; 0 for free
func (l *Ledger) BonusFor(plan models.Plan) int64 {
	return l.bonuses[plan]
}

// Credit is the outcome of a payout
type Credit struct {
	ReferrerID uint  `json:"referrerId"`
	Amount     int64 `json:"amount"`
}

// Award pays the referrer of referred for a purchase of plan. It must run
// inside tx together with the activation. The bonus flag, the wallet credit
// and the ledger row commit or fail together, and the conditional flag
// update makes a second payout for the same referred learner impossible.
// A nil Credit means nothing was paid.
func (l *Ledger) Award(tx *gorm.DB, referred *models.Learner, plan models.Plan) (*Credit, error) {
	if referred.ReferredBy == nil || *referred.ReferredBy == "" || referred.ReferralBonusAwarded {
		return nil, nil
	}
	bonus := l.BonusFor(plan)
	if bonus <= 0 {
		return nil, nil
	}

	referrer, err := repository.FindLearnerByReferralCode(tx, *referred.ReferredBy)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			// Leave the flag false; registration rejects unknown codes so this
			// only happens when the referrer account was removed.
			log.Printf("[REFERRAL] Referrer %s of learner %d not found, no bonus paid", *referred.ReferredBy, referred.ID)
			return nil, nil
		}
		return nil, err
	}
	if referrer.ID == referred.ID {
		return nil, nil
	}

	res := tx.Model(&models.Learner{}).
		Where("id = ? AND referral_bonus_awarded = ?", referred.ID, false).
		Update("referral_bonus_awarded", true)
	if res.Error != nil {
		return nil, apperr.Transient(res.Error, "Failed to mark referral bonus")
	}
	if res.RowsAffected != 1 {
		referred.ReferralBonusAwarded = true
		return nil, nil
	}

	locked, err := repository.LockLearner(tx, referrer.ID)
	if err != nil {
		return nil, err
	}
	balanceAfter := locked.Wallet + bonus

	if err := tx.Model(&models.Learner{}).Where("id = ?", locked.ID).Updates(map[string]interface{}{
		"wallet":         gorm.Expr("wallet + ?", bonus),
		"referral_count": gorm.Expr("referral_count + ?", 1),
	}).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to credit referrer")
	}

	entry := models.WalletTransaction{
		LearnerID:       locked.ID,
		TransactionType: models.TransactionTypeReferralBonus,
		Amount:          bonus,
		BalanceBefore:   locked.Wallet,
		BalanceAfter:    balanceAfter,
		Description:     fmt.Sprintf("Referral bonus for %s plan purchase by %s", plan, referred.Name),
		IdempotencyKey:  fmt.Sprintf("referral:%d", referred.ID),
		ReferenceType:   "learner",
		ReferenceID:     referred.ID,
		TransactionDate: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to record referral bonus")
	}

	referred.ReferralBonusAwarded = true
	log.Printf("[REFERRAL] Credited %d to learner %d for referring learner %d", bonus, locked.ID, referred.ID)
	return &Credit{ReferrerID: locked.ID, Amount: bonus}, nil
}
