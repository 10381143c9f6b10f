package content

import (
	"os"
	"path/filepath"
	"testing"

	"maitree/apperr"
	"maitree/database"
	"maitree/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const bundleJSON = `{
  "lessons": [
    {"level": "beginner", "lessonNumber": 1, "title": "Namaskar", "content": "..."},
    {"level": "beginner", "lessonNumber": 2, "title": "Ankh", "content": "..."}
  ],
  "quizzes": [
    {"level": "beginner", "quizNumber": 1, "questions": [
      {"question": "1?", "options": ["ek", "don"], "correctAnswer": "ek"}
    ]}
  ]
}`

func writeBundle(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestImportUpserts(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	bundle, err := LoadBundle(writeBundle(t, bundleJSON))
	require.NoError(t, err)

	stats, err := Import(db, bundle)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Lessons)
	assert.Equal(t, 1, stats.Quizzes)

	bundle.Lessons[0].Title = "Namaste"
	_, err = Import(db, bundle)
	require.NoError(t, err)

	var lessons []models.Lesson
	require.NoError(t, db.Order("lesson_number").Find(&lessons).Error)
	require.Len(t, lessons, 2, "re-import updates in place")
	assert.Equal(t, "Namaste", lessons[0].Title)

	var quiz models.Quiz
	require.NoError(t, db.First(&quiz).Error)
	assert.Equal(t, 5, quiz.GateLesson())
}

func TestImportRejectsBadRecords(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	cases := map[string]*Bundle{
		"bad level":     {Lessons: []models.Lesson{{Level: "master", LessonNumber: 1, Title: "x"}}},
		"zero number":   {Lessons: []models.Lesson{{Level: models.LevelBeginner, Title: "x"}}},
		"empty quiz":    {Quizzes: []models.Quiz{{Level: models.LevelBeginner, QuizNumber: 1}}},
		"answer absent": {Quizzes: []models.Quiz{{Level: models.LevelBeginner, QuizNumber: 1, Questions: datatypes.NewJSONSlice([]models.QuizQuestion{{Question: "q", Options: []string{"a"}, CorrectAnswer: "b"}})}}},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Import(db, b)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Lesson{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBackfillAfterLesson(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	questions := datatypes.NewJSONSlice([]models.QuizQuestion{{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"}})
	require.NoError(t, db.Create(&models.Quiz{Level: models.LevelBeginner, QuizNumber: 2, Questions: questions}).Error)
	require.NoError(t, db.Create(&models.Quiz{Level: models.LevelMedium, QuizNumber: 1, AfterLesson: 3, Questions: questions}).Error)

	updated, err := BackfillAfterLesson(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	var quizzes []models.Quiz
	require.NoError(t, db.Order("level").Find(&quizzes).Error)
	assert.Equal(t, 10, quizzes[0].AfterLesson)
	assert.Equal(t, 3, quizzes[1].AfterLesson)
}
