package models

import "gorm.io/gorm"

// LessonCompletion records that a learner completed a lesson. Rows are never removed.
type LessonCompletion struct {
	gorm.Model
	LearnerID uint `gorm:"not null;uniqueIndex:idx_completion_learner_lesson" json:"learnerId"`
	LessonID  uint `gorm:"not null;uniqueIndex:idx_completion_learner_lesson" json:"lessonId"`

	Lesson Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

// QuizPass records that a learner passed a quiz number. Rows are never removed.
type QuizPass struct {
	gorm.Model
	LearnerID  uint    `gorm:"not null;uniqueIndex:idx_pass_learner_quiz" json:"learnerId"`
	QuizNumber int     `gorm:"not null;uniqueIndex:idx_pass_learner_quiz" json:"quizNumber"`
	Level      Level   `gorm:"type:varchar(20)" json:"level"`
	Percentage float64 `json:"percentage"`
}
