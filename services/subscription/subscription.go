// Package subscription owns the plan lifecycle of a learner: activation
// after a verified payment, lazy expiry and access checks.
package subscription

import (
	"context"
	"log"
	"strings"
	"time"

	"maitree/apperr"
	"maitree/models"
	"maitree/repository"
	"maitree/services/payment"
	"maitree/services/referral"
	"maitree/utils"

	"gorm.io/gorm"
)

const (
	// FreeLessonLimit is how many beginner lessons the free plan opens
	FreeLessonLimit = 3
	monthlyPeriod   = 30 * 24 * time.Hour
)

// LifetimeEndDate is the far-future end date carried by lifetime plans
var LifetimeEndDate = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// RequiresSubscription is the free-tier rule: a free learner may open only
// the first FreeLessonLimit lessons of the beginner level.
func RequiresSubscription(plan models.Plan, level models.Level, lessonNumber int) bool {
	if plan.Paid() {
		return false
	}
	return level != models.LevelBeginner || lessonNumber > FreeLessonLimit
}

// Manager activates and inspects subscriptions
type Manager struct {
	db       *gorm.DB
	verifier payment.Verifier
	ledger   *referral.Ledger
	locks    *utils.KeyedMutex
	timeout  time.Duration
	prices   map[models.Plan]int64
	now      func() time.Time
}

func NewManager(db *gorm.DB, verifier payment.Verifier, ledger *referral.Ledger, locks *utils.KeyedMutex, verifyTimeout time.Duration) *Manager {
	if verifyTimeout <= 0 {
		verifyTimeout = 5 * time.Second
	}
	return &Manager{
		db:       db,
		verifier: verifier,
		ledger:   ledger,
		locks:    locks,
		timeout:  verifyTimeout,
		now:      time.Now,
	}
}

// SetPrices makes activation require a settled amount of at least the plan
// price, when the verifier can report amounts.
func (m *Manager) SetPrices(prices map[models.Plan]int64) { m.prices = prices }

// SetClock replaces the time source
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Now returns the manager's current time
func (m *Manager) Now() time.Time { return m.now() }

// Activation is the result of a successful activation
type Activation struct {
	Type          models.Plan               `json:"type"`
	Status        models.SubscriptionStatus `json:"status"`
	StartDate     time.Time                 `json:"startDate"`
	EndDate       *time.Time                `json:"endDate"`
	ReferralBonus *referral.Credit          `json:"referralBonus,omitempty"`
}

func (m *Manager) verify(ctx context.Context, plan models.Plan, paymentID string) (bool, error) {
	if price := m.prices[plan]; price > 0 {
		if av, ok := m.verifier.(payment.AmountVerifier); ok {
			return av.VerifyAmount(ctx, paymentID, price)
		}
	}
	return m.verifier.Verify(ctx, paymentID)
}

// Activate switches the learner to plan once paymentID is verified as
// settled. A payment id already applied to this learner is rejected.
func (m *Manager) Activate(ctx context.Context, learnerID uint, plan models.Plan, paymentID string) (*Activation, error) {
	if !plan.Paid() {
		return nil, apperr.Validation("Subscription type must be monthly or lifetime")
	}
	// The gateway ignores surrounding whitespace, so the replay guard must too
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, apperr.Validation("Payment ID is required")
	}

	unlock := m.locks.Lock(learnerID)
	defer unlock()

	learner, err := repository.FindLearnerByID(m.db, learnerID)
	if err != nil {
		return nil, err
	}
	if learner.LastPaymentID == paymentID {
		return nil, apperr.InvalidState("Payment already processed")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, m.timeout)
	settled, err := m.verify(verifyCtx, plan, paymentID)
	cancel()
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			return nil, err
		}
		utils.ReportError(err, map[string]interface{}{"learnerId": learnerID, "paymentId": paymentID})
		return nil, apperr.VerificationFailed("Payment verification failed", err)
	}
	if !settled {
		return nil, apperr.VerificationFailed("Payment has not been completed", nil)
	}

	start := m.now()
	end := LifetimeEndDate
	if plan == models.PlanMonthly {
		end = start.Add(monthlyPeriod)
	}
	out := &Activation{Type: plan, Status: models.SubscriptionActive, StartDate: start, EndDate: &end}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		locked, err := repository.LockLearner(tx, learnerID)
		if err != nil {
			return err
		}
		if locked.LastPaymentID == paymentID {
			return apperr.InvalidState("Payment already processed")
		}

		if err := repository.UpdateLearner(tx, learnerID, map[string]interface{}{
			"subscription_type":       plan,
			"subscription_status":     models.SubscriptionActive,
			"subscription_start_date": start,
			"subscription_end_date":   end,
			"last_payment_id":         paymentID,
			"expiry_reminder_sent_at": nil,
		}); err != nil {
			return err
		}

		credit, err := m.ledger.Award(tx, locked, plan)
		if err != nil {
			return err
		}
		out.ReferralBonus = credit
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SUBSCRIPTION] Learner %d activated %s plan with payment %s", learnerID, plan, paymentID)
	return out, nil
}

// ApplyExpiry downgrades a monthly plan whose end date has passed and
// persists the change. It returns the learner as it should be read now.
func (m *Manager) ApplyExpiry(learner *models.Learner) (*models.Learner, error) {
	if !m.isExpired(learner) {
		return learner, nil
	}

	// last_payment_id pins the period that was read, so a renewal that
	// committed in the meantime is left untouched.
	res := m.db.Model(&models.Learner{}).
		Where("id = ? AND subscription_type = ? AND last_payment_id = ?", learner.ID, models.PlanMonthly, learner.LastPaymentID).
		Updates(map[string]interface{}{
			"subscription_status": models.SubscriptionExpired,
			"subscription_type":   models.PlanFree,
		})
	if res.Error != nil {
		return nil, apperr.Transient(res.Error, "Failed to expire subscription")
	}
	if res.RowsAffected == 0 {
		return repository.FindLearnerByID(m.db, learner.ID)
	}
	log.Printf("[SUBSCRIPTION] Monthly plan of learner %d expired", learner.ID)

	learner.SubscriptionStatus = models.SubscriptionExpired
	learner.SubscriptionType = models.PlanFree
	return learner, nil
}

func (m *Manager) isExpired(learner *models.Learner) bool {
	return learner.SubscriptionType == models.PlanMonthly &&
		learner.SubscriptionEndDate != nil &&
		m.now().After(*learner.SubscriptionEndDate)
}

// LoadLearner reads a learner with expiry already applied
func (m *Manager) LoadLearner(learnerID uint) (*models.Learner, error) {
	learner, err := repository.FindLearnerByID(m.db, learnerID)
	if err != nil {
		return nil, err
	}
	return m.ApplyExpiry(learner)
}

// Status describes the learner's current plan
type Status struct {
	Type          models.Plan               `json:"type"`
	Status        models.SubscriptionStatus `json:"status"`
	StartDate     *time.Time                `json:"startDate"`
	EndDate       *time.Time                `json:"endDate"`
	DaysRemaining *int                      `json:"daysRemaining"`
}

func (m *Manager) Status(learnerID uint) (*Status, error) {
	learner, err := m.LoadLearner(learnerID)
	if err != nil {
		return nil, err
	}
	return &Status{
		Type:          learner.SubscriptionType,
		Status:        learner.SubscriptionStatus,
		StartDate:     learner.SubscriptionStartDate,
		EndDate:       learner.SubscriptionEndDate,
		DaysRemaining: DaysRemaining(learner, m.now()),
	}, nil
}

// DaysRemaining is the whole number of days left on a monthly plan,
// never negative. It is nil for other plans.
func DaysRemaining(learner *models.Learner, now time.Time) *int {
	if learner.SubscriptionType != models.PlanMonthly || learner.SubscriptionEndDate == nil {
		return nil
	}
	days := 0
	if left := learner.SubscriptionEndDate.Sub(now); left > 0 {
		days = int(left / (24 * time.Hour))
	}
	return &days
}

// Access answers whether a lesson may be opened
type Access struct {
	HasAccess bool        `json:"hasAccess"`
	PlanType  models.Plan `json:"planType"`
}

func (m *Manager) CheckAccess(learnerID uint, level models.Level, lessonNumber int) (*Access, error) {
	if !level.Valid() {
		return nil, apperr.Validation("Invalid level")
	}
	learner, err := m.LoadLearner(learnerID)
	if err != nil {
		return nil, err
	}
	return &Access{
		HasAccess: !RequiresSubscription(learner.SubscriptionType, level, lessonNumber),
		PlanType:  learner.SubscriptionType,
	}, nil
}
