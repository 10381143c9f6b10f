package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"maitree/models"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderWindow is how far ahead of the end date a monthly learner is reminded
const ReminderWindow = 2 * 24 * time.Hour

// resetRetention keeps spent reset tokens around for a day before purging
const resetRetention = 24 * time.Hour

type ExpiryNotifier interface {
	SendSubscriptionExpiryReminder(name, email string, endDate time.Time) error
}

// ReminderScheduler emails learners whose monthly plan is about to run out
// and purges stale password reset tokens. It never changes subscription
// state; expiry stays lazy and happens on the next read.
type ReminderScheduler struct {
	db       *gorm.DB
	notifier ExpiryNotifier
	spec     string
	cron     *cron.Cron
	now      func() time.Time
}

func NewReminderScheduler(db *gorm.DB, notifier ExpiryNotifier, spec string) *ReminderScheduler {
	return &ReminderScheduler{db: db, notifier: notifier, spec: spec, now: time.Now}
}

// SetClock replaces the time source used by RunOnce
func (s *ReminderScheduler) SetClock(fn func() time.Time) { s.now = fn }

// Start registers the job on its cron schedule and starts the runner
func (s *ReminderScheduler) Start() error {
	log.Println("[REMINDER-SCHEDULER] Initializing reminder scheduler...")

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()

	log.Printf("[REMINDER-SCHEDULER] Reminder scheduler started with schedule %q", s.spec)
	return nil
}

// Stop halts the runner and returns a context that is done once a running job finishes
func (s *ReminderScheduler) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

func (s *ReminderScheduler) RunOnce() {
	log.Println("[REMINDER-SCHEDULER] Running reminder job...")

	sent, err := s.SendExpiryReminders()
	if err != nil {
		ReportError(err, map[string]interface{}{"job": "expiry_reminders"})
	}
	log.Printf("[REMINDER-SCHEDULER] Sent %d expiry reminders", sent)

	purged, err := s.PurgeExpiredResets()
	if err != nil {
		ReportError(err, map[string]interface{}{"job": "purge_resets"})
	}
	if purged > 0 {
		log.Printf("[REMINDER-SCHEDULER] Purged %d password reset tokens", purged)
	}
}

// SendExpiryReminders mails every active monthly learner whose end date lies
// between now and the end of the day two days out. Each learner is claimed
// before sending so a reminder goes out at most once per subscription period.
// A claim that cannot be released after a failed send is returned as an error
// once every candidate has been tried.
func (s *ReminderScheduler) SendExpiryReminders() (int, error) {
	current := s.now()
	windowEnd := now.With(current.Add(ReminderWindow)).EndOfDay()

	var candidates []models.Learner
	if err := s.db.
		Where("subscription_type = ? AND subscription_status = ?", models.PlanMonthly, models.SubscriptionActive).
		Where("expiry_reminder_sent_at IS NULL AND subscription_end_date IS NOT NULL AND is_deleted = ?", false).
		Find(&candidates).Error; err != nil {
		return 0, err
	}

	sent := 0
	var releaseErr error
	for _, learner := range candidates {
		end := *learner.SubscriptionEndDate
		if end.Before(current) || end.After(windowEnd) {
			continue
		}
		if learner.Email == nil || *learner.Email == "" {
			continue
		}

		claim := s.db.Model(&models.Learner{}).
			Where("id = ? AND expiry_reminder_sent_at IS NULL", learner.ID).
			Update("expiry_reminder_sent_at", current)
		if claim.Error != nil {
			return sent, claim.Error
		}
		if claim.RowsAffected == 0 {
			continue
		}

		if err := s.notifier.SendSubscriptionExpiryReminder(learner.Name, *learner.Email, end); err != nil {
			log.Printf("[REMINDER-SCHEDULER] Failed to remind learner %d: %v", learner.ID, err)
			// release the claim so the next run retries
			release := s.db.Model(&models.Learner{}).Where("id = ?", learner.ID).Update("expiry_reminder_sent_at", nil)
			if release.Error != nil {
				log.Printf("[REMINDER-SCHEDULER] Could not release reminder claim for learner %d: %v", learner.ID, release.Error)
				if releaseErr == nil {
					releaseErr = fmt.Errorf("release reminder claim for learner %d: %w", learner.ID, release.Error)
				}
			}
			continue
		}
		sent++
	}
	return sent, releaseErr
}

// PurgeExpiredResets deletes reset tokens that expired over a day ago
func (s *ReminderScheduler) PurgeExpiredResets() (int64, error) {
	cutoff := s.now().Add(-resetRetention)

	res := s.db.Unscoped().Where("expires_at < ?", cutoff).Delete(&models.PasswordReset{})
	return res.RowsAffected, res.Error
}
