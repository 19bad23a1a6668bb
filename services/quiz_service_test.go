package services

import (
	"context"
	"testing"

	"quizsystem/apperrors"
	"quizsystem/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizService(t *testing.T) (*QuizService, *ParticipationService) {
	t.Helper()
	db := newTestDB(t)
	return NewQuizService(db, nil, testLogger()), NewParticipationService(db, testLogger())
}

func TestCreateAndListQuizzes(t *testing.T) {
	svc, _ := newQuizService(t)

	quiz, err := svc.Create(&CreateQuizRequest{Title: "Networks", Area: "CS", Description: "intro"})
	require.NoError(t, err)
	assert.False(t, quiz.IsActive)

	_, err = svc.Update(context.Background(), quiz.ID, &UpdateQuizRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)

	_, err = svc.Create(&CreateQuizRequest{Title: "Databases", Area: "CS"})
	require.NoError(t, err)

	all := svc.List(false)
	assert.Len(t, all, 2)

	active := svc.List(true)
	require.Len(t, active, 1)
	assert.Equal(t, "Networks", active[0].Title)

	counts := svc.Counts()
	assert.Equal(t, int64(2), counts.TotalCount)
	assert.Equal(t, int64(1), counts.ActiveCount)
	assert.Equal(t, int64(1), counts.InactiveCount)
}

func TestUpdateQuizPartial(t *testing.T) {
	svc, _ := newQuizService(t)

	quiz, err := svc.Create(&CreateQuizRequest{Title: "Original", Area: "Math", Description: "keep me"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), quiz.ID, &UpdateQuizRequest{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Math", updated.Area)
	assert.Equal(t, "keep me", updated.Description)

	_, err = svc.Update(context.Background(), 9999, &UpdateQuizRequest{Title: strPtr("x")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAddQuestionValidation(t *testing.T) {
	svc, _ := newQuizService(t)

	quiz, err := svc.Create(&CreateQuizRequest{Title: "Validation", Area: "QA"})
	require.NoError(t, err)

	t.Run("ChoiceNeedsCorrectAnswer", func(t *testing.T) {
		_, err := svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
			Text:  "no correct answers",
			Order: 1,
			Answers: []CreateAnswerRequest{
				{Text: "a", Order: 1},
				{Text: "b", Order: 2},
			},
		})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("OpenEndedNeedsExactlyOneAnswer", func(t *testing.T) {
		_, err := svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
			Text:         "open with two answers",
			QuestionType: models.QuestionTypeOpenEnded,
			Order:        1,
			Answers: []CreateAnswerRequest{
				{Text: "a", Order: 1},
				{Text: "b", Order: 2},
			},
		})
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("OpenEndedIgnoresCorrectFlag", func(t *testing.T) {
		question, err := svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
			Text:         "open",
			QuestionType: models.QuestionTypeOpenEnded,
			Order:        1,
			Answers: []CreateAnswerRequest{
				{Text: "reference", IsCorrect: true, Order: 1},
			},
		})
		require.NoError(t, err)
		require.Len(t, question.Answers, 1)
		assert.False(t, question.Answers[0].IsCorrect)
	})

	t.Run("DefaultsApplied", func(t *testing.T) {
		question, err := svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
			Text:  "defaults",
			Order: 2,
			Answers: []CreateAnswerRequest{
				{Text: "yes", IsCorrect: true, Order: 1},
				{Text: "no", Order: 2},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.QuestionTypeMultipleChoice, question.QuestionType)
		assert.Equal(t, 30, question.TimeLimit)
	})

	t.Run("QuizNotFound", func(t *testing.T) {
		_, err := svc.AddQuestion(9999, &CreateQuestionRequest{
			Text:    "orphan",
			Order:   1,
			Answers: []CreateAnswerRequest{{Text: "a", IsCorrect: true, Order: 1}},
		})
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestUpdateQuestionReplacesAnswers(t *testing.T) {
	svc, _ := newQuizService(t)

	quiz, err := svc.Create(&CreateQuizRequest{Title: "Editable", Area: "QA"})
	require.NoError(t, err)

	question, err := svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
		Text:  "before",
		Order: 1,
		Answers: []CreateAnswerRequest{
			{Text: "old right", IsCorrect: true, Order: 1},
			{Text: "old wrong", Order: 2},
		},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateQuestion(question.ID, &UpdateQuestionRequest{
		Text: strPtr("after"),
		Answers: []CreateAnswerRequest{
			{Text: "new right", IsCorrect: true, Order: 1},
			{Text: "new wrong 1", Order: 2},
			{Text: "new wrong 2", Order: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	require.Len(t, updated.Answers, 3)
	assert.Equal(t, "new right", updated.Answers[0].Text)

	// Replacement without a correct answer is rejected and changes
	// nothing.
	_, err = svc.UpdateQuestion(question.ID, &UpdateQuestionRequest{
		Answers: []CreateAnswerRequest{{Text: "all wrong", Order: 1}},
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	current, err := svc.GetQuestion(question.ID)
	require.NoError(t, err)
	assert.Len(t, current.Answers, 3)
}

func TestGetQuizDetailOrderingAndEscaping(t *testing.T) {
	svc, _ := newQuizService(t)

	quiz, err := svc.Create(&CreateQuizRequest{Title: "Detail", Area: "QA", Description: "line1\nline2"})
	require.NoError(t, err)

	// Insert out of order; detail must come back ordered.
	_, err = svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
		Text:  "second",
		Order: 2,
		Answers: []CreateAnswerRequest{
			{Text: "b2", Order: 2},
			{Text: "b1", IsCorrect: true, Order: 1},
		},
	})
	require.NoError(t, err)
	_, err = svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
		Text:  "first \"quoted\"",
		Order: 1,
		Answers: []CreateAnswerRequest{
			{Text: "a1", IsCorrect: true, Order: 1},
		},
	})
	require.NoError(t, err)

	detail, err := svc.GetByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "line1\\nline2", detail.Description)
	require.Len(t, detail.Questions, 2)
	assert.Equal(t, 1, detail.Questions[0].Order)
	assert.Equal(t, `first \"quoted\"`, detail.Questions[0].Text)
	require.Len(t, detail.Questions[1].Answers, 2)
	assert.Equal(t, "b1", detail.Questions[1].Answers[0].Text)
}

func TestDeleteQuizCascades(t *testing.T) {
	svc, partSvc := newQuizService(t)
	db := svc.db

	quiz, err := svc.Create(&CreateQuizRequest{Title: "Doomed", Area: "QA"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), quiz.ID, &UpdateQuizRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)

	q1, err := svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
		Text:  "q1",
		Order: 1,
		Answers: []CreateAnswerRequest{
			{Text: "right", IsCorrect: true, Order: 1},
			{Text: "wrong", Order: 2},
		},
	})
	require.NoError(t, err)
	_, err = svc.AddQuestion(quiz.ID, &CreateQuestionRequest{
		Text:    "q2",
		Order:   2,
		Answers: []CreateAnswerRequest{{Text: "right", IsCorrect: true, Order: 1}},
	})
	require.NoError(t, err)

	user := seedUser(t, db, "cascade", "Cascade User")
	started, err := partSvc.Start(user.Uni, quiz.ID)
	require.NoError(t, err)
	_, err = partSvc.Submit(started.ParticipationID, &SubmitAnswerRequest{
		QuestionID: q1.ID,
		AnswerID:   &q1.Answers[0].ID,
	})
	require.NoError(t, err)
	_, err = partSvc.Complete(started.ParticipationID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), quiz.ID))

	tables := map[string]interface{}{
		"questions":      &models.Question{},
		"answers":        &models.Answer{},
		"participations": &models.Participation{},
		"user_responses": &models.UserResponse{},
	}
	for name, model := range tables {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error, name)
		assert.Zero(t, count, "table %s should be empty after cascade", name)
	}
}

func TestBulkOperations(t *testing.T) {
	svc, _ := newQuizService(t)

	var ids []uint
	for _, title := range []string{"one", "two", "three"} {
		quiz, err := svc.Create(&CreateQuizRequest{Title: title, Area: "bulk"})
		require.NoError(t, err)
		ids = append(ids, quiz.ID)
	}

	updated, err := svc.BulkSetActive(context.Background(), ids[:2], true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.Len(t, svc.List(true), 2)

	deleted, err := svc.BulkDelete(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Empty(t, svc.List(false))

	updated, err = svc.BulkSetActive(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestQuizSearch(t *testing.T) {
	svc, _ := newQuizService(t)

	_, err := svc.Create(&CreateQuizRequest{Title: "Golang Fundamentals", Area: "Programming"})
	require.NoError(t, err)
	_, err = svc.Create(&CreateQuizRequest{Title: "History 101", Area: "Humanities"})
	require.NoError(t, err)

	assert.Empty(t, svc.Search("g"))
	assert.Empty(t, svc.Search("  x "))

	results := svc.Search("golang")
	require.Len(t, results, 1)
	assert.Equal(t, "Golang Fundamentals", results[0].Title)

	byArea := svc.Search("humanities")
	require.Len(t, byArea, 1)
	assert.Equal(t, "History 101", byArea[0].Title)
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
