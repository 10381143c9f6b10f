package repository

import (
	"maitree/apperr"
	"maitree/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletedLessonIDs returns the set of lessons the learner completed
func CompletedLessonIDs(db *gorm.DB, learnerID uint) (map[uint]bool, error) {
	var ids []uint
	if err := db.Model(&models.LessonCompletion{}).Where("learner_id = ?", learnerID).Pluck("lesson_id", &ids).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load completed lessons")
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CompletedLessons returns the completion rows with their lessons, oldest first
func CompletedLessons(db *gorm.DB, learnerID uint) ([]models.LessonCompletion, error) {
	var completions []models.LessonCompletion
	if err := db.Preload("Lesson").Where("learner_id = ?", learnerID).Order("created_at asc").Find(&completions).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load completed lessons")
	}
	return completions, nil
}

// PassedQuizNumbers returns the set of quiz numbers the learner passed
func PassedQuizNumbers(db *gorm.DB, learnerID uint) (map[int]bool, error) {
	var numbers []int
	if err := db.Model(&models.QuizPass{}).Where("learner_id = ?", learnerID).Pluck("quiz_number", &numbers).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load passed quizzes")
	}
	set := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		set[n] = true
	}
	return set, nil
}

// AddLessonCompletion inserts the completion unless it exists.
// It reports whether a new row was written.
func AddLessonCompletion(tx *gorm.DB, learnerID, lessonID uint) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LessonCompletion{LearnerID: learnerID, LessonID: lessonID})
	if res.Error != nil {
		return false, apperr.Transient(res.Error, "Failed to record lesson completion")
	}
	return res.RowsAffected == 1, nil
}

// AddQuizPass inserts the pass unless the quiz number was already passed.
// It reports whether a new row was written.
func AddQuizPass(tx *gorm.DB, pass *models.QuizPass) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(pass)
	if res.Error != nil {
		return false, apperr.Transient(res.Error, "Failed to record quiz pass")
	}
	return res.RowsAffected == 1, nil
}

// CountCompletedInLevel counts the learner's completions among the lessons of level
func CountCompletedInLevel(db *gorm.DB, learnerID uint, level models.Level) (int64, error) {
	var count int64
	err := db.Model(&models.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.learner_id = ? AND lessons.level = ? AND lessons.deleted_at IS NULL", learnerID, level).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Transient(err, "Failed to count completed lessons")
	}
	return count, nil
}

// CountLessonsInLevel counts the lessons of level
func CountLessonsInLevel(db *gorm.DB, level models.Level) (int64, error) {
	var count int64
	if err := db.Model(&models.Lesson{}).Where("level = ?", level).Count(&count).Error; err != nil {
		return 0, apperr.Transient(err, "Failed to count lessons")
	}
	return count, nil
}
