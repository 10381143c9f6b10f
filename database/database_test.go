package database

import (
	"testing"

	"maitree/config"
	"maitree/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemoryMigrates(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	for _, table := range []interface{}{
		&models.Learner{}, &models.Lesson{}, &models.Quiz{}, &models.LessonCompletion{},
		&models.QuizPass{}, &models.Redemption{}, &models.WalletTransaction{}, &models.PasswordReset{},
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table for %T", table)
	}
}

func TestOpenInMemoryIsolated(t *testing.T) {
	a, err := OpenInMemory()
	require.NoError(t, err)
	b, err := OpenInMemory()
	require.NoError(t, err)

	require.NoError(t, a.Create(&models.Lesson{Level: models.LevelBeginner, LessonNumber: 1, Title: "Swar", Content: "..."}).Error)

	var count int64
	require.NoError(t, b.Model(&models.Lesson{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{DBDriver: "postgres", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", buildDSN(cfg))

	cfg.DBDriver = "mysql"
	assert.Equal(t, "u:p@tcp(db:5432)/n?charset=utf8mb4&parseTime=True&loc=Local", buildDSN(cfg))

	cfg.DBDSN = "override"
	assert.Equal(t, "override", buildDSN(cfg))
}
