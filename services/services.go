// Package services assembles the domain services over one database handle
// and one per-learner lock table.
package services

import (
	"maitree/config"
	"maitree/models"
	"maitree/services/account"
	"maitree/services/payment"
	"maitree/services/progression"
	"maitree/services/referral"
	"maitree/services/subscription"
	"maitree/services/wallet"
	"maitree/utils"

	"gorm.io/gorm"
)

// Services is the set of domain services the HTTP layer calls into
type Services struct {
	Accounts      *account.Service
	Progression   *progression.Engine
	Subscriptions *subscription.Manager
	Wallet        *wallet.Service
	Payments      *payment.Client
	Prices        map[models.Plan]int64
}

func New(db *gorm.DB, cfg *config.Config, mailer account.Notifier) *Services {
	locks := utils.NewKeyedMutex()

	payments := payment.NewClient(payment.Options{
		BaseURL:       cfg.InstamojoApiURL,
		ApiKey:        cfg.InstamojoApiKey,
		AuthToken:     cfg.InstamojoAuthToken,
		SettledStatus: cfg.PaymentSettledStatus,
		RedirectURL:   cfg.InstamojoRedirectURL,
		Timeout:       cfg.PaymentVerifyTimeout,
	})
	ledger := referral.NewLedger(cfg.MonthlyReferralBonus, cfg.LifetimeReferralBonus)
	prices := map[models.Plan]int64{
		models.PlanMonthly:  cfg.MonthlyPrice,
		models.PlanLifetime: cfg.LifetimePrice,
	}
	subs := subscription.NewManager(db, payments, ledger, locks, cfg.PaymentVerifyTimeout)
	subs.SetPrices(prices)

	return &Services{
		Accounts: account.NewService(db, mailer, account.Options{
			SaltRound:       cfg.SaltRound,
			ResetURL:        cfg.ResetPasswordURL,
			ExposeResetLink: cfg.IsDevelopment(),
		}),
		Progression:   progression.NewEngine(db, subs, locks),
		Subscriptions: subs,
		Wallet:        wallet.NewService(db, locks, cfg.MinRedemptionAmount),
		Payments:      payments,
		Prices:        prices,
	}
}
