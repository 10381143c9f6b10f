package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LegacyQuizSpacing is the lesson interval assumed for quizzes stored
// without an explicit AfterLesson: quiz N gates the lesson after N*5.
const LegacyQuizSpacing = 5

// QuizQuestion is a single multiple choice question
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Quiz gates progression within a level after lesson AfterLesson
type Quiz struct {
	gorm.Model
	Level       Level                             `gorm:"type:varchar(20);not null;uniqueIndex:idx_quiz_level_number" json:"level"`
	QuizNumber  int                               `gorm:"not null;uniqueIndex:idx_quiz_level_number" json:"quizNumber"`
	AfterLesson int                               `gorm:"default:0" json:"afterLesson"` // 0 means unset
	Questions   datatypes.JSONSlice[QuizQuestion] `json:"questions"`
}

// GateLesson returns the lesson number after which this quiz must be passed,
// applying the legacy default for records without AfterLesson.
func (q *Quiz) GateLesson() int {
	if q.AfterLesson > 0 {
		return q.AfterLesson
	}
	return q.QuizNumber * LegacyQuizSpacing
}

// PublicQuestion is a question as shown to learners
type PublicQuestion struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// PublicQuiz is the learner-facing view of a quiz, without correct answers
type PublicQuiz struct {
	ID          uint             `json:"id"`
	Level       Level            `json:"level"`
	QuizNumber  int              `json:"quizNumber"`
	AfterLesson int              `json:"afterLesson"`
	Questions   []PublicQuestion `json:"questions"`
}

// Public strips the correct answers
func (q *Quiz) Public() PublicQuiz {
	out := PublicQuiz{
		ID:          q.ID,
		Level:       q.Level,
		QuizNumber:  q.QuizNumber,
		AfterLesson: q.GateLesson(),
		Questions:   make([]PublicQuestion, len(q.Questions)),
	}
	for i, question := range q.Questions {
		out.Questions[i] = PublicQuestion{
			Index:    i,
			Question: question.Question,
			Options:  question.Options,
		}
	}
	return out
}
