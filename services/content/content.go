// Package content loads lesson and quiz records in bulk for the admin scripts.
package content

import (
	"encoding/json"
	"fmt"
	"os"

	"maitree/apperr"
	"maitree/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bundle is the on-disk import format
type Bundle struct {
	Lessons []models.Lesson `json:"lessons"`
	Quizzes []models.Quiz   `json:"quizzes"`
}

type ImportStats struct {
	Lessons int
	Quizzes int
}

// LoadBundle reads a Bundle from a JSON file
func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &b, nil
}

// Validate checks every record before anything is written
func (b *Bundle) Validate() error {
	for i, l := range b.Lessons {
		if !l.Level.Valid() {
			return apperr.Validation(fmt.Sprintf("lesson %d: unknown level %q", i, l.Level))
		}
		if l.LessonNumber <= 0 {
			return apperr.Validation(fmt.Sprintf("lesson %d: lessonNumber must be positive", i))
		}
		if l.Title == "" {
			return apperr.Validation(fmt.Sprintf("lesson %d: title is required", i))
		}
	}
	for i, q := range b.Quizzes {
		if !q.Level.Valid() {
			return apperr.Validation(fmt.Sprintf("quiz %d: unknown level %q", i, q.Level))
		}
		if q.QuizNumber <= 0 {
			return apperr.Validation(fmt.Sprintf("quiz %d: quizNumber must be positive", i))
		}
		if len(q.Questions) == 0 {
			return apperr.Validation(fmt.Sprintf("quiz %d: no questions", i))
		}
		for j, question := range q.Questions {
			if !contains(question.Options, question.CorrectAnswer) {
				return apperr.Validation(fmt.Sprintf("quiz %d question %d: correct answer is not among the options", i, j))
			}
		}
	}
	return nil
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

// Import upserts lessons by (level, lessonNumber) and quizzes by
// (level, quizNumber) in one transaction.
func Import(db *gorm.DB, b *Bundle) (*ImportStats, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range b.Lessons {
			lesson := b.Lessons[i]
			lesson.ID = 0
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "level"}, {Name: "lesson_number"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at"}),
			}).Create(&lesson).Error; err != nil {
				return err
			}
			stats.Lessons++
		}
		for i := range b.Quizzes {
			quiz := b.Quizzes[i]
			quiz.ID = 0
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "level"}, {Name: "quiz_number"}},
				DoUpdates: clause.AssignmentColumns([]string{"after_lesson", "questions", "updated_at"}),
			}).Create(&quiz).Error; err != nil {
				return err
			}
			stats.Quizzes++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// BackfillAfterLesson writes the legacy default gate position onto quizzes
// that were stored without one.
func BackfillAfterLesson(db *gorm.DB) (int64, error) {
	res := db.Model(&models.Quiz{}).
		Where("after_lesson IS NULL OR after_lesson = 0").
		Update("after_lesson", gorm.Expr("quiz_number * ?", models.LegacyQuizSpacing))
	return res.RowsAffected, res.Error
}
