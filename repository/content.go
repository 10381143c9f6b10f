package repository

import (
	"errors"

	"maitree/apperr"
	"maitree/models"

	"gorm.io/gorm"
)

// LessonsByLevel returns the lessons of a level ordered by lesson number
func LessonsByLevel(db *gorm.DB, level models.Level) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := db.Where("level = ?", level).Order("lesson_number asc").Find(&lessons).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load lessons")
	}
	return lessons, nil
}

// LessonsByAllLevels groups every lesson by level
func LessonsByAllLevels(db *gorm.DB) (map[models.Level][]models.Lesson, error) {
	var lessons []models.Lesson
	if err := db.Order("level asc, lesson_number asc").Find(&lessons).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load lessons")
	}
	byLevel := make(map[models.Level][]models.Lesson, len(models.Levels))
	for _, lesson := range lessons {
		byLevel[lesson.Level] = append(byLevel[lesson.Level], lesson)
	}
	return byLevel, nil
}

// FindLesson loads a lesson by id
func FindLesson(db *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := db.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Lesson not found")
		}
		return nil, apperr.Transient(err, "Failed to load lesson")
	}
	return &lesson, nil
}

// QuizzesByLevel returns the quizzes of a level ordered by quiz number
func QuizzesByLevel(db *gorm.DB, level models.Level) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := db.Where("level = ?", level).Order("quiz_number asc").Find(&quizzes).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load quizzes")
	}
	return quizzes, nil
}

// FindQuiz loads a quiz by level and number
func FindQuiz(db *gorm.DB, level models.Level, quizNumber int) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := db.Where("level = ? AND quiz_number = ?", level, quizNumber).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Quiz not found")
		}
		return nil, apperr.Transient(err, "Failed to load quiz")
	}
	return &quiz, nil
}
