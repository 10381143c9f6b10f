package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"maitree/apperr"
	"maitree/models"
	"maitree/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetTokenTTL is how long a password reset link stays valid
const ResetTokenTTL = 30 * time.Minute

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ResetIssued describes an issued reset link. Link is only filled in when
// the service is configured to expose it.
type ResetIssued struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Link      string    `json:"resetLink,omitempty"`
}

// ForgotPassword issues a reset token and mails the link. Only the token
// digest is stored.
func (s *Service) ForgotPassword(identifier string) (*ResetIssued, error) {
	learner, err := repository.FindLearnerByIdentifier(s.db, identifier)
	if err != nil {
		return nil, err
	}
	if learner.Email == nil || *learner.Email == "" {
		if !s.opts.ExposeResetLink {
			return nil, apperr.InvalidState("No email address on file for this account")
		}
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	expiresAt := s.now().Add(ResetTokenTTL)
	reset := models.PasswordReset{LearnerID: learner.ID, TokenHash: digest(token), ExpiresAt: expiresAt}
	if err := s.db.Create(&reset).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to store reset token")
	}

	link := fmt.Sprintf("%s?token=%s&phone=%s", s.opts.ResetURL, token, url.QueryEscape(learner.Identifier()))
	if learner.Email != nil && *learner.Email != "" && s.notifier != nil {
		if err := s.notifier.SendPasswordResetEmail(learner.Name, *learner.Email, link, ResetTokenTTL); err != nil {
			return nil, apperr.Transient(err, "Failed to send reset email")
		}
	}
	log.Printf("[ACCOUNT] Password reset issued for learner %d", learner.ID)

	out := &ResetIssued{ExpiresAt: expiresAt}
	if s.opts.ExposeResetLink {
		out.Link = link
	}
	return out, nil
}

func (s *Service) findReset(tx *gorm.DB, token string) (*models.PasswordReset, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.Validation("Reset token is required")
	}
	var reset models.PasswordReset
	err := tx.Where("token_hash = ?", digest(token)).First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("Invalid reset token")
		}
		return nil, apperr.Transient(err, "Failed to load reset token")
	}
	if reset.UsedAt != nil {
		return nil, apperr.Validation("Reset token has already been used")
	}
	if s.now().After(reset.ExpiresAt) {
		return nil, apperr.Validation("Reset token has expired")
	}
	return &reset, nil
}

// VerifyResetToken checks a token without consuming it
func (s *Service) VerifyResetToken(token string) (*models.Learner, error) {
	reset, err := s.findReset(s.db, token)
	if err != nil {
		return nil, err
	}
	return repository.FindLearnerByID(s.db, reset.LearnerID)
}

// ResetPassword consumes the token and sets the new password. Open
// sessions are ended.
func (s *Service) ResetPassword(token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation("Password must be at least 8 characters long")
	}
	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		reset, err := s.findReset(tx, token)
		if err != nil {
			return err
		}
		res := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND used_at IS NULL", reset.ID).
			Update("used_at", s.now())
		if res.Error != nil {
			return apperr.Transient(res.Error, "Failed to consume reset token")
		}
		if res.RowsAffected != 1 {
			return apperr.Validation("Reset token has already been used")
		}
		if _, err := repository.FindLearnerByID(tx, reset.LearnerID); err != nil {
			return err
		}
		return repository.UpdateLearner(tx, reset.LearnerID, map[string]interface{}{
			"password":      hashed,
			"session_token": "",
		})
	})
}
