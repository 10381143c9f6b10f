// Package repository is the data access layer over gorm. Every function
// takes the *gorm.DB to run on so callers can pass a transaction.
package repository

import (
	"errors"
	"strings"

	"maitree/apperr"
	"maitree/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindLearnerByID loads a learner that has not been deleted
func FindLearnerByID(db *gorm.DB, id uint) (*models.Learner, error) {
	var learner models.Learner
	err := db.Where("id = ? AND is_deleted = ?", id, false).First(&learner).Error
	return learnerResult(&learner, err)
}

// LockLearner loads a learner with a row lock for the rest of the transaction
func LockLearner(tx *gorm.DB, id uint) (*models.Learner, error) {
	var learner models.Learner
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&learner).Error
	return learnerResult(&learner, err)
}

// FindLearnerByIdentifier matches a phone number or an email address
func FindLearnerByIdentifier(db *gorm.DB, identifier string) (*models.Learner, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperr.Validation("Phone or email is required")
	}
	var learner models.Learner
	err := db.Where("(phone = ? OR email = ?) AND is_deleted = ?", identifier, strings.ToLower(identifier), false).
		First(&learner).Error
	return learnerResult(&learner, err)
}

// FindLearnerByReferralCode looks a referrer up by code
func FindLearnerByReferralCode(db *gorm.DB, code string) (*models.Learner, error) {
	var learner models.Learner
	err := db.Where("referral_code = ? AND is_deleted = ?", code, false).First(&learner).Error
	return learnerResult(&learner, err)
}

// ReferralCodeExists reports whether any learner, deleted or not, holds code
func ReferralCodeExists(db *gorm.DB, code string) (bool, error) {
	var count int64
	if err := db.Model(&models.Learner{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
		return false, apperr.Transient(err, "Failed to check referral code")
	}
	return count > 0, nil
}

// UpdateLearner writes only the given columns
func UpdateLearner(db *gorm.DB, id uint, fields map[string]interface{}) error {
	if err := db.Model(&models.Learner{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return apperr.Transient(err, "Failed to update learner")
	}
	return nil
}

func learnerResult(learner *models.Learner, err error) (*models.Learner, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Learner not found")
		}
		return nil, apperr.Transient(err, "Failed to load learner")
	}
	return learner, nil
}
