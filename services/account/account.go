// Package account covers registration, login sessions and passwords.
package account

import (
	"log"
	"strings"
	"time"

	"maitree/apperr"
	"maitree/models"
	"maitree/repository"
	"maitree/services/referral"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

// Notifier delivers password reset links
type Notifier interface {
	SendPasswordResetEmail(name, email, link string, validFor time.Duration) error
}

type Options struct {
	SaltRound int
	// ResetURL is the frontend page reset links point to
	ResetURL string
	// ExposeResetLink returns the link to the caller, for local development
	ExposeResetLink bool
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	opts     Options
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier, opts Options) *Service {
	if opts.SaltRound < bcrypt.MinCost {
		opts.SaltRound = bcrypt.DefaultCost
	}
	return &Service{db: db, notifier: notifier, opts: opts, now: time.Now}
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.SaltRound)
	if err != nil {
		return "", apperr.Transient(err, "Failed to hash password")
	}
	return string(hashed), nil
}

func checkPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

type RegisterInput struct {
	Name         string
	Phone        string
	Email        string
	Password     string
	ReferralCode string
}

// Register creates a learner with its own referral code. A supplied
// referral code must belong to an existing learner.
func (s *Service) Register(in RegisterInput) (*models.Learner, error) {
	phone := strings.TrimSpace(in.Phone)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if phone == "" && email == "" {
		return nil, apperr.Validation("Phone or email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("Password must be at least 8 characters long")
	}

	var learner *models.Learner
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUnused(tx, phone, email); err != nil {
			return err
		}

		var referredBy *string
		if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
			if _, err := repository.FindLearnerByReferralCode(tx, code); err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return apperr.Validation("Invalid referral code")
				}
				return err
			}
			referredBy = &code
		}

		identifier := phone
		if identifier == "" {
			identifier = email
		}
		code, err := referral.NewUniqueCode(tx, identifier)
		if err != nil {
			return err
		}
		hashed, err := s.hash(in.Password)
		if err != nil {
			return err
		}

		learner = &models.Learner{
			Name:               strings.TrimSpace(in.Name),
			Password:           hashed,
			Role:               models.RoleLearner,
			ReferralCode:       code,
			ReferredBy:         referredBy,
			CurrentLevel:       models.LevelBeginner,
			SubscriptionType:   models.PlanFree,
			SubscriptionStatus: models.SubscriptionNone,
		}
		if phone != "" {
			learner.Phone = &phone
		}
		if email != "" {
			learner.Email = &email
		}
		if err := tx.Create(learner).Error; err != nil {
			return apperr.Transient(err, "Failed to create account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[ACCOUNT] Registered learner %d (%s)", learner.ID, learner.Identifier())
	return learner, nil
}

func ensureUnused(tx *gorm.DB, phone, email string) error {
	query := tx.Model(&models.Learner{})
	switch {
	case phone != "" && email != "":
		query = query.Where("phone = ? OR email = ?", phone, email)
	case phone != "":
		query = query.Where("phone = ?", phone)
	default:
		query = query.Where("email = ?", email)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperr.Transient(err, "Failed to check existing accounts")
	}
	if count > 0 {
		return apperr.InvalidState("User already exists. Please login.")
	}
	return nil
}

// Login checks the credentials and starts a new session, which replaces
// any session issued before.
func (s *Service) Login(identifier, password string) (*models.Learner, string, error) {
	learner, err := repository.FindLearnerByIdentifier(s.db, identifier)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, "", apperr.Unauthorized("Invalid credentials")
		}
		return nil, "", err
	}
	if !checkPassword(learner.Password, password) {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}

	sessionID := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := repository.UpdateLearner(s.db, learner.ID, map[string]interface{}{"session_token": sessionID}); err != nil {
		return nil, "", err
	}
	learner.SessionToken = sessionID
	return learner, sessionID, nil
}

// ValidateSession reports whether sessionID is the learner's latest session
func (s *Service) ValidateSession(learnerID uint, sessionID string) (*models.Learner, error) {
	learner, err := repository.FindLearnerByID(s.db, learnerID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" || learner.SessionToken != sessionID {
		return nil, apperr.Unauthorized("Session expired. Please login again.")
	}
	return learner, nil
}

func (s *Service) ChangePassword(learnerID uint, current, next string) error {
	learner, err := repository.FindLearnerByID(s.db, learnerID)
	if err != nil {
		return err
	}
	if !checkPassword(learner.Password, current) {
		return apperr.Validation("Current password is incorrect")
	}
	if current == next {
		return apperr.Validation("New password must be different from current password")
	}
	if len(next) < MinPasswordLength {
		return apperr.Validation("New password must be at least 8 characters long")
	}
	hashed, err := s.hash(next)
	if err != nil {
		return err
	}
	return repository.UpdateLearner(s.db, learnerID, map[string]interface{}{"password": hashed})
}

// EnsureAdmin creates an admin account or promotes an existing one and
// resets its password
func (s *Service) EnsureAdmin(name, identifier, password string) (*models.Learner, error) {
	existing, err := repository.FindLearnerByIdentifier(s.db, identifier)
	switch {
	case err == nil:
		hashed, err := s.hash(password)
		if err != nil {
			return nil, err
		}
		if err := repository.UpdateLearner(s.db, existing.ID, map[string]interface{}{
			"role":     models.RoleAdmin,
			"password": hashed,
		}); err != nil {
			return nil, err
		}
		existing.Role = models.RoleAdmin
		return existing, nil
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	in := RegisterInput{Name: name, Password: password}
	if strings.Contains(identifier, "@") {
		in.Email = identifier
	} else {
		in.Phone = identifier
	}
	learner, err := s.Register(in)
	if err != nil {
		return nil, err
	}
	if err := repository.UpdateLearner(s.db, learner.ID, map[string]interface{}{"role": models.RoleAdmin}); err != nil {
		return nil, err
	}
	learner.Role = models.RoleAdmin
	return learner, nil
}
