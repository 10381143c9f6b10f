// Package wallet handles the referral wallet: the transaction ledger and
// cash-out requests that administrators settle out of band.
package wallet

import (
	"errors"
	"fmt"
	"log"
	"time"

	"maitree/apperr"
	"maitree/models"
	"maitree/repository"
	"maitree/utils"

	"gorm.io/gorm"
)

// Service manages redemptions and the wallet ledger
type Service struct {
	db            *gorm.DB
	locks         *utils.KeyedMutex
	minRedemption int64
	now           func() time.Time
}

func NewService(db *gorm.DB, locks *utils.KeyedMutex, minRedemption int64) *Service {
	return &Service{db: db, locks: locks, minRedemption: minRedemption, now: time.Now}
}

var outstandingStatuses = []models.RedemptionStatus{models.RedemptionPending, models.RedemptionProcessing}

func outstandingAmount(tx *gorm.DB, learnerID uint) (int64, error) {
	var sum int64
	err := tx.Model(&models.Redemption{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("learner_id = ? AND status IN ?", learnerID, outstandingStatuses).
		Scan(&sum).Error
	if err != nil {
		return 0, apperr.Transient(err, "Failed to load outstanding redemptions")
	}
	return sum, nil
}

// RequestRedemption asks to cash out amount. Pending and processing
// requests are reserved against the balance until an admin settles them.
func (s *Service) RequestRedemption(learnerID uint, amount int64) (*models.Redemption, error) {
	if amount <= 0 {
		return nil, apperr.Validation("Amount must be greater than 0")
	}

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	var redemption *models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		learner, err := repository.LockLearner(tx, learnerID)
		if err != nil {
			return err
		}
		reserved, err := outstandingAmount(tx, learnerID)
		if err != nil {
			return err
		}
		if amount > learner.Wallet-reserved {
			return apperr.InvalidState("Insufficient wallet balance")
		}
		if amount < s.minRedemption {
			return apperr.InvalidState(fmt.Sprintf("Minimum redemption amount is %d", s.minRedemption))
		}

		redemption = &models.Redemption{
			LearnerID:    learnerID,
			LearnerName:  learner.Name,
			LearnerPhone: learner.Identifier(),
			Amount:       amount,
			Status:       models.RedemptionPending,
			RequestedAt:  s.now(),
		}
		if err := tx.Create(redemption).Error; err != nil {
			return apperr.Transient(err, "Failed to create redemption request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[WALLET] Learner %d requested redemption %d of %d", learnerID, redemption.ID, amount)
	return redemption, nil
}

// ListRedemptions returns the learner's requests, newest first
func (s *Service) ListRedemptions(learnerID uint) ([]models.Redemption, error) {
	var out []models.Redemption
	if err := s.db.Where("learner_id = ?", learnerID).Order("requested_at desc, id desc").Find(&out).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load redemptions")
	}
	return out, nil
}

// Summary is the learner-facing wallet view
type Summary struct {
	Balance       int64                      `json:"balance"`
	Reserved      int64                      `json:"reserved"`
	Available     int64                      `json:"available"`
	ReferralCode  string                     `json:"referralCode"`
	ReferralCount int                        `json:"referralCount"`
	Transactions  []models.WalletTransaction `json:"transactions"`
	Pagination    Pagination                 `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// GetWallet returns the balance and a page of the ledger
func (s *Service) GetWallet(learnerID uint, page, limit int) (*Summary, error) {
	page, limit = normalizePage(page, limit)

	learner, err := repository.FindLearnerByID(s.db, learnerID)
	if err != nil {
		return nil, err
	}
	reserved, err := outstandingAmount(s.db, learnerID)
	if err != nil {
		return nil, err
	}

	query := s.db.Model(&models.WalletTransaction{}).Where("learner_id = ?", learnerID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to count wallet transactions")
	}
	var txns []models.WalletTransaction
	if err := query.Order("transaction_date desc, id desc").Offset((page - 1) * limit).Limit(limit).Find(&txns).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load wallet transactions")
	}

	return &Summary{
		Balance:       learner.Wallet,
		Reserved:      reserved,
		Available:     learner.Wallet - reserved,
		ReferralCode:  learner.ReferralCode,
		ReferralCount: learner.ReferralCount,
		Transactions:  txns,
		Pagination:    newPagination(page, limit, total),
	}, nil
}

// ListAllRedemptions is the admin view, optionally filtered by status
func (s *Service) ListAllRedemptions(status models.RedemptionStatus) ([]models.Redemption, error) {
	query := s.db.Order("requested_at desc, id desc")
	if status != "" {
		if status.Rank() < 0 {
			return nil, apperr.Validation("Invalid redemption status")
		}
		query = query.Where("status = ?", status)
	}
	var out []models.Redemption
	if err := query.Find(&out).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load redemptions")
	}
	return out, nil
}

// UpdateRedemptionStatus moves a redemption forward. Entering processed
// debits the learner's wallet in the same transaction.
func (s *Service) UpdateRedemptionStatus(redemptionID uint, status models.RedemptionStatus, notes string) (*models.Redemption, error) {
	if status.Rank() < 0 {
		return nil, apperr.Validation("Invalid redemption status")
	}

	var current models.Redemption
	if err := s.db.First(&current, redemptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Redemption not found")
		}
		return nil, apperr.Transient(err, "Failed to load redemption")
	}

	unlock := s.locks.Lock(current.LearnerID)
	defer unlock()

	var out models.Redemption
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, redemptionID).Error; err != nil {
			return apperr.Transient(err, "Failed to load redemption")
		}
		if status.Rank() <= out.Status.Rank() {
			return apperr.InvalidState(fmt.Sprintf("Cannot move redemption from %s to %s", out.Status, status))
		}

		fields := map[string]interface{}{"status": status}
		if notes != "" {
			fields["notes"] = notes
		}

		if status == models.RedemptionProcessed {
			processedAt := s.now()
			fields["processed_at"] = processedAt
			if err := s.debit(tx, &out); err != nil {
				return err
			}
			out.ProcessedAt = &processedAt
		}

		res := tx.Model(&models.Redemption{}).
			Where("id = ? AND status = ?", out.ID, out.Status).
			Updates(fields)
		if res.Error != nil {
			return apperr.Transient(res.Error, "Failed to update redemption")
		}
		if res.RowsAffected != 1 {
			return apperr.InvalidState("Redemption was updated concurrently")
		}
		out.Status = status
		if notes != "" {
			out.Notes = notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[WALLET] Redemption %d moved to %s", out.ID, status)
	return &out, nil
}

func (s *Service) debit(tx *gorm.DB, redemption *models.Redemption) error {
	learner, err := repository.LockLearner(tx, redemption.LearnerID)
	if err != nil {
		return err
	}

	res := tx.Model(&models.Learner{}).
		Where("id = ? AND wallet >= ?", learner.ID, redemption.Amount).
		Update("wallet", gorm.Expr("wallet - ?", redemption.Amount))
	if res.Error != nil {
		return apperr.Transient(res.Error, "Failed to debit wallet")
	}
	if res.RowsAffected != 1 {
		return apperr.InvalidState("Insufficient wallet balance")
	}

	entry := models.WalletTransaction{
		LearnerID:       learner.ID,
		TransactionType: models.TransactionTypeRedemption,
		Amount:          -redemption.Amount,
		BalanceBefore:   learner.Wallet,
		BalanceAfter:    learner.Wallet - redemption.Amount,
		Description:     fmt.Sprintf("Redemption #%d processed", redemption.ID),
		IdempotencyKey:  fmt.Sprintf("redemption:%d", redemption.ID),
		ReferenceType:   "redemption",
		ReferenceID:     redemption.ID,
		TransactionDate: s.now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return apperr.Transient(err, "Failed to record redemption debit")
	}
	return nil
}
