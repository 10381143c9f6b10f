package progression

import (
	"math"

	"maitree/models"
	"maitree/services/subscription"
)

// PassPercentage is the minimum score, in percent, that passes a quiz
const PassPercentage = 60

// Snapshot is the read-only state unlock rules are computed from
type Snapshot struct {
	Plan             models.Plan
	CompletedLessons map[uint]bool
	QuizzesPassed    map[int]bool
}

// LevelState is the derived state of one level
type LevelState struct {
	Unlocked  bool `json:"unlocked"`
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
}

// ComputeLevelStatus derives the unlock state of every level. Beginner is
// always open; each later level needs the previous level to be both
// unlocked and fully completed.
func ComputeLevelStatus(snap Snapshot, lessonsByLevel map[models.Level][]models.Lesson) map[models.Level]LevelState {
	out := make(map[models.Level]LevelState, len(models.Levels))
	previousOpenAndDone := true
	for i, level := range models.Levels {
		lessons := lessonsByLevel[level]
		completed := 0
		for _, lesson := range lessons {
			if snap.CompletedLessons[lesson.ID] {
				completed++
			}
		}

		unlocked := i == 0 || previousOpenAndDone
		out[level] = LevelState{Unlocked: unlocked, Completed: completed, Total: len(lessons)}

		levelDone := len(lessons) > 0 && completed == len(lessons)
		previousOpenAndDone = unlocked && levelDone
	}
	return out
}

// LessonWithStatus is a lesson together with its derived gates
type LessonWithStatus struct {
	models.Lesson
	IsCompleted          bool `json:"isCompleted"`
	IsUnlocked           bool `json:"isUnlocked"`
	RequiresQuiz         bool `json:"requiresQuiz"`
	RequiresSubscription bool `json:"requiresSubscription"`
	QuizNumber           *int `json:"quizNumber"`
}

// ComputeLessonUnlockStatus applies the sequential, quiz and subscription
// gates to lessons, which must be ordered by lesson number. A lesson is
// unlocked only when all three gates pass.
func ComputeLessonUnlockStatus(snap Snapshot, level models.Level, lessons []models.Lesson, quizzes []models.Quiz) []LessonWithStatus {
	gateAfter := make(map[int]int, len(quizzes))
	for i := range quizzes {
		if quizzes[i].Level != level {
			continue
		}
		after := quizzes[i].GateLesson()
		if _, seen := gateAfter[after]; !seen {
			gateAfter[after] = quizzes[i].QuizNumber
		}
	}

	out := make([]LessonWithStatus, len(lessons))
	for i, lesson := range lessons {
		previousDone := i == 0 || snap.CompletedLessons[lessons[i-1].ID]

		var quizNumber *int
		requiresQuiz := false
		if n, ok := gateAfter[lesson.LessonNumber-1]; ok {
			quizNumber = &n
			requiresQuiz = !snap.QuizzesPassed[n]
		}

		requiresSub := subscription.RequiresSubscription(snap.Plan, level, lesson.LessonNumber)

		out[i] = LessonWithStatus{
			Lesson:               lesson,
			IsCompleted:          snap.CompletedLessons[lesson.ID],
			IsUnlocked:           previousDone && !requiresQuiz && !requiresSub,
			RequiresQuiz:         requiresQuiz,
			RequiresSubscription: requiresSub,
			QuizNumber:           quizNumber,
		}
	}
	return out
}

// QuizResult is the outcome of scoring a submission
type QuizResult struct {
	Passed       bool    `json:"passed"`
	CorrectCount int     `json:"correctCount"`
	Total        int     `json:"total"`
	Percentage   float64 `json:"percentage"`
}

// ScoreQuiz compares answers with the questions by position. Missing
// answers count as wrong and extra answers are ignored.
func ScoreQuiz(questions []models.QuizQuestion, answers []string) QuizResult {
	total := len(questions)
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}

	res := QuizResult{CorrectCount: correct, Total: total}
	if total == 0 {
		return res
	}
	res.Percentage = math.Round(float64(correct)*10000/float64(total)) / 100
	res.Passed = correct*100 >= PassPercentage*total
	return res
}
