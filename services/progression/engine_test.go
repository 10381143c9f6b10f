package progression

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"maitree/apperr"
	"maitree/database"
	"maitree/models"
	"maitree/services/referral"
	"maitree/services/subscription"
	"maitree/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type noopVerifier struct{}

func (noopVerifier) Verify(_ context.Context, _ string) (bool, error) { return false, nil }

type fixture struct {
	db      *gorm.DB
	engine  *Engine
	subs    *subscription.Manager
	learner *models.Learner
	lessons map[models.Level][]models.Lesson
}

func newFixture(t *testing.T, perLevel int) *fixture {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	locks := utils.NewKeyedMutex()
	subs := subscription.NewManager(db, noopVerifier{}, referral.NewLedger(51, 101), locks, time.Second)

	phone := "9876543210"
	learner := &models.Learner{Name: "Ravi", Phone: &phone, Password: "x", ReferralCode: "MM3210ABCD"}
	require.NoError(t, db.Create(learner).Error)

	f := &fixture{db: db, engine: NewEngine(db, subs, locks), subs: subs, learner: learner, lessons: map[models.Level][]models.Lesson{}}
	for _, level := range models.Levels {
		for n := 1; n <= perLevel; n++ {
			lesson := models.Lesson{Level: level, LessonNumber: n, Title: fmt.Sprintf("%s %d", level, n), Content: "..."}
			require.NoError(t, db.Create(&lesson).Error)
			f.lessons[level] = append(f.lessons[level], lesson)
		}
	}
	return f
}

func (f *fixture) setPlan(t *testing.T, plan models.Plan) {
	t.Helper()
	require.NoError(t, f.db.Model(f.learner).Update("subscription_type", plan).Error)
}

func (f *fixture) currentLevel(t *testing.T) models.Level {
	t.Helper()
	var l models.Learner
	require.NoError(t, f.db.First(&l, f.learner.ID).Error)
	return l.CurrentLevel
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	f := newFixture(t, 3)
	lesson := f.lessons[models.LevelBeginner][0]

	first, err := f.engine.CompleteLesson(f.learner.ID, lesson.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)

	second, err := f.engine.CompleteLesson(f.learner.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)

	var count int64
	require.NoError(t, f.db.Model(&models.LessonCompletion{}).Where("learner_id = ?", f.learner.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCompleteLessonErrors(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.engine.CompleteLesson(f.learner.ID, 9999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.engine.CompleteLesson(9999, f.lessons[models.LevelBeginner][0].ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLevelAdvancesOnceInAnyOrder(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		t.Run(fmt.Sprintf("order %d", seed), func(t *testing.T) {
			f := newFixture(t, 4)
			beginner := append([]models.Lesson(nil), f.lessons[models.LevelBeginner]...)
			rand.New(rand.NewSource(seed)).Shuffle(len(beginner), func(i, j int) {
				beginner[i], beginner[j] = beginner[j], beginner[i]
			})

			advanced := 0
			for _, lesson := range beginner {
				res, err := f.engine.CompleteLesson(f.learner.ID, lesson.ID)
				require.NoError(t, err)
				if res.LevelAdvanced {
					advanced++
				}
			}
			assert.Equal(t, 1, advanced)
			assert.Equal(t, models.LevelMedium, f.currentLevel(t))

			res, err := f.engine.CompleteLesson(f.learner.ID, beginner[0].ID)
			require.NoError(t, err)
			assert.False(t, res.LevelAdvanced)
			assert.Equal(t, models.LevelMedium, f.currentLevel(t))
		})
	}
}

func TestLevelNeverRegresses(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.db.Model(f.learner).Update("current_level", models.LevelExpert).Error)

	res, err := f.engine.CompleteLesson(f.learner.ID, f.lessons[models.LevelBeginner][0].ID)
	require.NoError(t, err)
	assert.False(t, res.LevelAdvanced)
	assert.Equal(t, models.LevelExpert, f.currentLevel(t))
}

func TestGetLevelStatus(t *testing.T) {
	f := newFixture(t, 2)

	status, err := f.engine.GetLevelStatus(f.learner.ID)
	require.NoError(t, err)
	assert.True(t, status[models.LevelBeginner].Unlocked)
	assert.False(t, status[models.LevelMedium].Unlocked)

	for _, lesson := range f.lessons[models.LevelBeginner] {
		_, err := f.engine.CompleteLesson(f.learner.ID, lesson.ID)
		require.NoError(t, err)
	}

	status, err = f.engine.GetLevelStatus(f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, LevelState{Unlocked: true, Completed: 2, Total: 2}, status[models.LevelBeginner])
	assert.True(t, status[models.LevelMedium].Unlocked)
	assert.False(t, status[models.LevelExpert].Unlocked)
}

func TestGetLessonsWithStatus(t *testing.T) {
	f := newFixture(t, 5)
	quiz := models.Quiz{Level: models.LevelBeginner, QuizNumber: 1, AfterLesson: 2, Questions: datatypes.NewJSONSlice([]models.QuizQuestion{
		{Question: "One?", Options: []string{"ek", "don"}, CorrectAnswer: "ek"},
	})}
	require.NoError(t, f.db.Create(&quiz).Error)

	lessons, err := f.engine.GetLessonsWithStatus(f.learner.ID, models.LevelBeginner)
	require.NoError(t, err)
	require.Len(t, lessons, 5)
	assert.True(t, lessons[0].IsUnlocked)
	assert.False(t, lessons[1].IsUnlocked)
	assert.True(t, lessons[2].RequiresQuiz)
	assert.True(t, lessons[3].RequiresSubscription)

	_, err = f.engine.GetLessonsWithStatus(f.learner.ID, models.Level("advanced"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetLessonsWithStatusAppliesExpiry(t *testing.T) {
	f := newFixture(t, 5)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(f.learner).Updates(map[string]interface{}{
		"subscription_type":     models.PlanMonthly,
		"subscription_status":   models.SubscriptionActive,
		"subscription_end_date": past,
	}).Error)

	lessons, err := f.engine.GetLessonsWithStatus(f.learner.ID, models.LevelBeginner)
	require.NoError(t, err)
	assert.True(t, lessons[3].RequiresSubscription)

	var stored models.Learner
	require.NoError(t, f.db.First(&stored, f.learner.ID).Error)
	assert.Equal(t, models.PlanFree, stored.SubscriptionType)
	assert.Equal(t, models.SubscriptionExpired, stored.SubscriptionStatus)
}

func TestQuizFlow(t *testing.T) {
	f := newFixture(t, 3)
	f.setPlan(t, models.PlanLifetime)
	quiz := models.Quiz{Level: models.LevelBeginner, QuizNumber: 1, AfterLesson: 2, Questions: datatypes.NewJSONSlice([]models.QuizQuestion{
		{Question: "1", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Question: "2", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{Question: "3", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Question: "4", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{Question: "5", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	})}
	require.NoError(t, f.db.Create(&quiz).Error)

	public, err := f.engine.GetQuiz(models.LevelBeginner, 1)
	require.NoError(t, err)
	require.Len(t, public.Questions, 5)
	assert.Equal(t, []string{"a", "b"}, public.Questions[0].Options)

	for _, lesson := range f.lessons[models.LevelBeginner][:2] {
		_, err := f.engine.CompleteLesson(f.learner.ID, lesson.ID)
		require.NoError(t, err)
	}

	res, err := f.engine.SubmitQuiz(f.learner.ID, models.LevelBeginner, 1, []string{"b", "a", "a", "b", "b"})
	require.NoError(t, err)
	assert.False(t, res.Passed)
	lessons, err := f.engine.GetLessonsWithStatus(f.learner.ID, models.LevelBeginner)
	require.NoError(t, err)
	assert.False(t, lessons[2].IsUnlocked)

	for i := 0; i < 2; i++ {
		res, err = f.engine.SubmitQuiz(f.learner.ID, models.LevelBeginner, 1, []string{"a", "b", "a", "a", "b"})
		require.NoError(t, err)
		assert.True(t, res.Passed)
		assert.Equal(t, 60.0, res.Percentage)
	}

	var passes int64
	require.NoError(t, f.db.Model(&models.QuizPass{}).Where("learner_id = ?", f.learner.ID).Count(&passes).Error)
	assert.Equal(t, int64(1), passes)

	lessons, err = f.engine.GetLessonsWithStatus(f.learner.ID, models.LevelBeginner)
	require.NoError(t, err)
	assert.True(t, lessons[2].IsUnlocked)
}

func TestQuizErrors(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.engine.GetQuiz(models.LevelBeginner, 42)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.engine.SubmitQuiz(f.learner.ID, models.LevelBeginner, 42, nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, f.db.Create(&models.Quiz{Level: models.LevelBeginner, QuizNumber: 2}).Error)
	_, err = f.engine.SubmitQuiz(f.learner.ID, models.LevelBeginner, 2, nil)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestGetProgress(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.engine.CompleteLesson(f.learner.ID, f.lessons[models.LevelBeginner][1].ID)
	require.NoError(t, err)

	progress, err := f.engine.GetProgress(f.learner.ID)
	require.NoError(t, err)
	require.Len(t, progress.CompletedLessons, 1)
	assert.Equal(t, 2, progress.CompletedLessons[0].LessonNumber)
	assert.Empty(t, progress.QuizzesPassed)
	assert.Equal(t, models.LevelBeginner, progress.CurrentLevel)
	assert.Equal(t, "Ravi", progress.Learner.Name)
}
