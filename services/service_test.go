package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"quizsystem/config"
	"quizsystem/logger"
	"quizsystem/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// newTestDB opens a fresh in-memory database with foreign keys
// enforced, so cascade deletes behave like production postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, true)
}

// newTestDBNoFK disables foreign key enforcement so tests can produce
// dangling references, the condition the listing fallbacks exist for.
func newTestDBNoFK(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, false)
}

func openTestDB(t *testing.T, foreignKeys bool) *gorm.DB {
	t.Helper()

	fk := "off"
	if foreignKeys {
		fk = "on"
	}
	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared&_foreign_keys=%s",
		testDBCounter.Add(1), fk)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, uni, name string) *models.User {
	t.Helper()
	user := &models.User{Uni: uni, Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedQuiz(t *testing.T, db *gorm.DB, title string, active bool) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{Title: title, Area: "testing", IsActive: active, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

// seedChoiceQuestion adds a two-answer multiple choice question; the
// first answer is the correct one.
func seedChoiceQuestion(t *testing.T, db *gorm.DB, quizID uint, order int) (*models.Question, *models.Answer, *models.Answer) {
	t.Helper()

	question := &models.Question{
		QuizID:       quizID,
		Text:         fmt.Sprintf("question %d", order),
		QuestionType: models.QuestionTypeMultipleChoice,
		Order:        order,
		TimeLimit:    30,
	}
	require.NoError(t, db.Create(question).Error)

	correct := &models.Answer{QuestionID: question.ID, Text: "right", IsCorrect: true, Order: 1}
	wrong := &models.Answer{QuestionID: question.ID, Text: "wrong", IsCorrect: false, Order: 2}
	require.NoError(t, db.Create(correct).Error)
	require.NoError(t, db.Create(wrong).Error)
	return question, correct, wrong
}

func seedOpenQuestion(t *testing.T, db *gorm.DB, quizID uint, order int) *models.Question {
	t.Helper()

	question := &models.Question{
		QuizID:       quizID,
		Text:         fmt.Sprintf("open question %d", order),
		QuestionType: models.QuestionTypeOpenEnded,
		Order:        order,
		TimeLimit:    60,
	}
	require.NoError(t, db.Create(question).Error)

	reference := &models.Answer{QuestionID: question.ID, Text: "reference", Order: 1}
	require.NoError(t, db.Create(reference).Error)
	return question
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}
