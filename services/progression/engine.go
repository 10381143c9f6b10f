// Package progression derives lesson and level unlock state from a
// learner's completion history and records completions and quiz passes.
package progression

import (
	"log"

	"maitree/apperr"
	"maitree/models"
	"maitree/repository"
	"maitree/services/subscription"
	"maitree/utils"

	"gorm.io/gorm"
)

// Engine reads and mutates learner progress
type Engine struct {
	db    *gorm.DB
	subs  *subscription.Manager
	locks *utils.KeyedMutex
}

func NewEngine(db *gorm.DB, subs *subscription.Manager, locks *utils.KeyedMutex) *Engine {
	return &Engine{db: db, subs: subs, locks: locks}
}

func (e *Engine) snapshot(learner *models.Learner) (Snapshot, error) {
	completed, err := repository.CompletedLessonIDs(e.db, learner.ID)
	if err != nil {
		return Snapshot{}, err
	}
	passed, err := repository.PassedQuizNumbers(e.db, learner.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Plan: learner.SubscriptionType, CompletedLessons: completed, QuizzesPassed: passed}, nil
}

// GetLevelStatus returns unlocked, completed and total for every level
func (e *Engine) GetLevelStatus(learnerID uint) (map[models.Level]LevelState, error) {
	learner, err := repository.FindLearnerByID(e.db, learnerID)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(learner)
	if err != nil {
		return nil, err
	}
	lessons, err := repository.LessonsByAllLevels(e.db)
	if err != nil {
		return nil, err
	}
	return ComputeLevelStatus(snap, lessons), nil
}

// GetLessonsWithStatus lists the lessons of level with their gates. The
// subscription expiry check runs first so the plan gate sees the real plan.
func (e *Engine) GetLessonsWithStatus(learnerID uint, level models.Level) ([]LessonWithStatus, error) {
	if !level.Valid() {
		return nil, apperr.Validation("Invalid level")
	}
	learner, err := e.subs.LoadLearner(learnerID)
	if err != nil {
		return nil, err
	}
	snap, err := e.snapshot(learner)
	if err != nil {
		return nil, err
	}
	lessons, err := repository.LessonsByLevel(e.db, level)
	if err != nil {
		return nil, err
	}
	quizzes, err := repository.QuizzesByLevel(e.db, level)
	if err != nil {
		return nil, err
	}
	return ComputeLessonUnlockStatus(snap, level, lessons, quizzes), nil
}

// Completion is the outcome of CompleteLesson
type Completion struct {
	AlreadyCompleted bool         `json:"alreadyCompleted"`
	CurrentLevel     models.Level `json:"currentLevel"`
	LevelAdvanced    bool         `json:"levelAdvanced"`
}

// CompleteLesson marks lessonID completed. Completing the last open lesson
// of a level moves the learner's current level forward, never backward.
func (e *Engine) CompleteLesson(learnerID, lessonID uint) (*Completion, error) {
	unlock := e.locks.Lock(learnerID)
	defer unlock()

	out := &Completion{}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		learner, err := repository.LockLearner(tx, learnerID)
		if err != nil {
			return err
		}
		lesson, err := repository.FindLesson(tx, lessonID)
		if err != nil {
			return err
		}
		out.CurrentLevel = learner.CurrentLevel

		added, err := repository.AddLessonCompletion(tx, learnerID, lessonID)
		if err != nil {
			return err
		}
		if !added {
			out.AlreadyCompleted = true
			return nil
		}

		done, err := repository.CountCompletedInLevel(tx, learnerID, lesson.Level)
		if err != nil {
			return err
		}
		total, err := repository.CountLessonsInLevel(tx, lesson.Level)
		if err != nil {
			return err
		}
		if total == 0 || done < total {
			return nil
		}

		next, ok := lesson.Level.Next()
		if !ok || next.Rank() <= learner.CurrentLevel.Rank() {
			return nil
		}
		if err := repository.UpdateLearner(tx, learnerID, map[string]interface{}{"current_level": next}); err != nil {
			return err
		}
		out.CurrentLevel = next
		out.LevelAdvanced = true
		log.Printf("[PROGRESS] Learner %d advanced to %s", learnerID, next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetQuiz returns a quiz without its correct answers
func (e *Engine) GetQuiz(level models.Level, quizNumber int) (*models.PublicQuiz, error) {
	if !level.Valid() {
		return nil, apperr.Validation("Invalid level")
	}
	quiz, err := repository.FindQuiz(e.db, level, quizNumber)
	if err != nil {
		return nil, err
	}
	public := quiz.Public()
	return &public, nil
}

// SubmitQuiz scores answers and records a pass. Failing changes nothing and
// passing again does not add a second record.
func (e *Engine) SubmitQuiz(learnerID uint, level models.Level, quizNumber int, answers []string) (*QuizResult, error) {
	if !level.Valid() {
		return nil, apperr.Validation("Invalid level")
	}
	if _, err := repository.FindLearnerByID(e.db, learnerID); err != nil {
		return nil, err
	}
	quiz, err := repository.FindQuiz(e.db, level, quizNumber)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, apperr.InvalidState("Quiz has no questions")
	}

	res := ScoreQuiz(quiz.Questions, answers)
	if !res.Passed {
		return &res, nil
	}

	unlock := e.locks.Lock(learnerID)
	defer unlock()

	added, err := repository.AddQuizPass(e.db, &models.QuizPass{
		LearnerID:  learnerID,
		QuizNumber: quizNumber,
		Level:      level,
		Percentage: res.Percentage,
	})
	if err != nil {
		return nil, err
	}
	if added {
		log.Printf("[PROGRESS] Learner %d passed %s quiz %d with %.2f%%", learnerID, level, quizNumber, res.Percentage)
	}
	return &res, nil
}

// Progress is the learner's profile together with their history
type Progress struct {
	Learner          *models.Learner `json:"user"`
	CompletedLessons []models.Lesson `json:"completedLessons"`
	QuizzesPassed    []int           `json:"quizzesPassed"`
	CurrentLevel     models.Level    `json:"currentLevel"`
}

func (e *Engine) GetProgress(learnerID uint) (*Progress, error) {
	learner, err := e.subs.LoadLearner(learnerID)
	if err != nil {
		return nil, err
	}
	completions, err := repository.CompletedLessons(e.db, learnerID)
	if err != nil {
		return nil, err
	}
	var passes []models.QuizPass
	if err := e.db.Where("learner_id = ?", learnerID).Order("quiz_number asc").Find(&passes).Error; err != nil {
		return nil, apperr.Transient(err, "Failed to load passed quizzes")
	}

	out := &Progress{
		Learner:          learner,
		CompletedLessons: make([]models.Lesson, 0, len(completions)),
		QuizzesPassed:    make([]int, 0, len(passes)),
		CurrentLevel:     learner.CurrentLevel,
	}
	for _, c := range completions {
		out.CompletedLessons = append(out.CompletedLessons, c.Lesson)
	}
	for _, p := range passes {
		out.QuizzesPassed = append(out.QuizzesPassed, p.QuizNumber)
	}
	return out, nil
}
