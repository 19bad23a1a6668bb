package services

import (
	"testing"

	"quizsystem/apperrors"
	"quizsystem/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, testLogger())

	stats := svc.Dashboard()
	assert.Zero(t, stats.TotalQuizzes)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.AverageScore)
}

func TestDashboard(t *testing.T) {
	db := newTestDB(t)
	statsSvc := NewStatsService(db, testLogger())
	partSvc := NewParticipationService(db, testLogger())

	seedQuiz(t, db, "Inactive quiz", false)
	quiz := seedQuiz(t, db, "Active quiz", true)
	q1, correct1, _ := seedChoiceQuestion(t, db, quiz.ID, 1)
	seedChoiceQuestion(t, db, quiz.ID, 2)

	alice := seedUser(t, db, "alice", "Alice")
	bob := seedUser(t, db, "bob", "Bob")

	// Alice finishes with 1/2, Bob stays in progress.
	started, err := partSvc.Start(alice.Uni, quiz.ID)
	require.NoError(t, err)
	_, err = partSvc.Submit(started.ParticipationID, &SubmitAnswerRequest{QuestionID: q1.ID, AnswerID: &correct1.ID})
	require.NoError(t, err)
	_, err = partSvc.Complete(started.ParticipationID)
	require.NoError(t, err)

	_, err = partSvc.Start(bob.Uni, quiz.ID)
	require.NoError(t, err)

	stats := statsSvc.Dashboard()
	assert.Equal(t, int64(2), stats.TotalQuizzes)
	assert.Equal(t, int64(1), stats.ActiveQuizzes)
	assert.Equal(t, int64(1), stats.InactiveQuizzes)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalParticipations)
	assert.Equal(t, int64(1), stats.CompletedParticipations)
	assert.Equal(t, 50.0, stats.CompletionRate)
	assert.Equal(t, 50.0, stats.AverageScore)
}

func TestQuizStats(t *testing.T) {
	db := newTestDB(t)
	statsSvc := NewStatsService(db, testLogger())
	partSvc := NewParticipationService(db, testLogger())

	quiz := seedQuiz(t, db, "Stats quiz", true)
	q1, c1, _ := seedChoiceQuestion(t, db, quiz.ID, 1)
	q2, _, w2 := seedChoiceQuestion(t, db, quiz.ID, 2)
	// A third question nobody answers must stay out of the map.
	unanswered, _, _ := seedChoiceQuestion(t, db, quiz.ID, 3)

	for _, uni := range []string{"s1", "s2"} {
		user := seedUser(t, db, uni, "Student "+uni)
		started, err := partSvc.Start(user.Uni, quiz.ID)
		require.NoError(t, err)
		_, err = partSvc.Submit(started.ParticipationID, &SubmitAnswerRequest{QuestionID: q1.ID, AnswerID: &c1.ID})
		require.NoError(t, err)
		_, err = partSvc.Submit(started.ParticipationID, &SubmitAnswerRequest{QuestionID: q2.ID, AnswerID: &w2.ID})
		require.NoError(t, err)
		_, err = partSvc.Complete(started.ParticipationID)
		require.NoError(t, err)
	}

	// One more participation left incomplete.
	carol := seedUser(t, db, "s3", "Student s3")
	_, err := partSvc.Start(carol.Uni, quiz.ID)
	require.NoError(t, err)

	stats, err := statsSvc.Quiz(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalParticipations)
	assert.Equal(t, 2, stats.CompletedParticipations)
	assert.Equal(t, 66.67, stats.CompletionRate)
	assert.Equal(t, 1.0, stats.AverageScore)
	assert.Equal(t, 33.33, stats.AveragePercentage)
	assert.Equal(t, 3, stats.TotalQuestions)

	require.Len(t, stats.QuestionDifficulty, 2)
	assert.Equal(t, 100.0, stats.QuestionDifficulty[q1.ID])
	assert.Equal(t, 0.0, stats.QuestionDifficulty[q2.ID])
	assert.NotContains(t, stats.QuestionDifficulty, unanswered.ID)
}

func TestQuizStatsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db, testLogger())

	_, err := svc.Quiz(424242)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListParticipations(t *testing.T) {
	db := newTestDB(t)
	statsSvc := NewStatsService(db, testLogger())
	partSvc := NewParticipationService(db, testLogger())

	quizA := seedQuiz(t, db, "Quiz A", true)
	quizB := seedQuiz(t, db, "Quiz B", true)
	seedChoiceQuestion(t, db, quizA.ID, 1)
	seedChoiceQuestion(t, db, quizB.ID, 1)

	user := seedUser(t, db, "lister", "Lister")
	startedA, err := partSvc.Start(user.Uni, quizA.ID)
	require.NoError(t, err)
	_, err = partSvc.Complete(startedA.ParticipationID)
	require.NoError(t, err)
	_, err = partSvc.Start(user.Uni, quizB.ID)
	require.NoError(t, err)

	all := statsSvc.ListParticipations(false, 0)
	assert.Len(t, all, 2)

	completed := statsSvc.ListParticipations(true, 0)
	require.Len(t, completed, 1)
	assert.Equal(t, "Quiz A", completed[0].QuizTitle)
	assert.Equal(t, "Lister", completed[0].UserName)
	assert.True(t, completed[0].Completed)

	byQuiz := statsSvc.ListParticipations(false, quizB.ID)
	require.Len(t, byQuiz, 1)
	assert.Equal(t, quizB.ID, byQuiz[0].QuizID)
}

// Dangling references show fallback text instead of dropping the row.
func TestListParticipationsDanglingReferences(t *testing.T) {
	db := newTestDBNoFK(t)
	statsSvc := NewStatsService(db, testLogger())
	partSvc := NewParticipationService(db, testLogger())

	quiz := seedQuiz(t, db, "Doomed quiz", true)
	seedChoiceQuestion(t, db, quiz.ID, 1)
	user := seedUser(t, db, "doomed", "Doomed User")

	started, err := partSvc.Start(user.Uni, quiz.ID)
	require.NoError(t, err)
	_, err = partSvc.Complete(started.ParticipationID)
	require.NoError(t, err)

	// Hard-delete the referenced rows, leaving the participation behind.
	require.NoError(t, db.Exec("DELETE FROM users WHERE id = ?", user.ID).Error)
	require.NoError(t, db.Exec("DELETE FROM quizzes WHERE id = ?", quiz.ID).Error)

	rows := statsSvc.ListParticipations(false, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "Usuario Eliminado", rows[0].UserName)
	assert.Equal(t, "N/A", rows[0].UserUni)
	assert.Equal(t, "Quiz Eliminado", rows[0].QuizTitle)
}

func TestQuizResponses(t *testing.T) {
	db := newTestDB(t)
	statsSvc := NewStatsService(db, testLogger())
	partSvc := NewParticipationService(db, testLogger())

	quiz := seedQuiz(t, db, "Responses quiz", true)
	q1, c1, _ := seedChoiceQuestion(t, db, quiz.ID, 1)
	open := seedOpenQuestion(t, db, quiz.ID, 2)

	user := seedUser(t, db, "writer", "Writer")
	started, err := partSvc.Start(user.Uni, quiz.ID)
	require.NoError(t, err)
	_, err = partSvc.Submit(started.ParticipationID, &SubmitAnswerRequest{QuestionID: q1.ID, AnswerID: &c1.ID, ResponseTime: 800})
	require.NoError(t, err)
	_, err = partSvc.Submit(started.ParticipationID, &SubmitAnswerRequest{
		QuestionID:     open.ID,
		OpenAnswerText: "line one\nline two",
		ResponseTime:   3000,
	})
	require.NoError(t, err)

	rows, err := statsSvc.QuizResponses(quiz.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Writer", rows[0].UserName)
	assert.Equal(t, "right", rows[0].AnswerText)
	assert.True(t, rows[0].IsCorrect)
	assert.Equal(t, 800, rows[0].ResponseTime)

	// Open answers come back flattened to one line.
	assert.Equal(t, "line one line two", rows[1].AnswerText)
	assert.Equal(t, models.QuestionTypeOpenEnded, rows[1].QuestionType)
	assert.False(t, rows[1].IsCorrect)

	_, err = statsSvc.QuizResponses(424242)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestParticipationResponses(t *testing.T) {
	db := newTestDB(t)
	statsSvc := NewStatsService(db, testLogger())
	partSvc := NewParticipationService(db, testLogger())

	quiz := seedQuiz(t, db, "Single participation", true)
	q1, c1, _ := seedChoiceQuestion(t, db, quiz.ID, 1)

	alice := seedUser(t, db, "alice2", "Alice")
	bob := seedUser(t, db, "bob2", "Bob")

	startedA, err := partSvc.Start(alice.Uni, quiz.ID)
	require.NoError(t, err)
	_, err = partSvc.Submit(startedA.ParticipationID, &SubmitAnswerRequest{QuestionID: q1.ID, AnswerID: &c1.ID})
	require.NoError(t, err)

	startedB, err := partSvc.Start(bob.Uni, quiz.ID)
	require.NoError(t, err)
	_, err = partSvc.Submit(startedB.ParticipationID, &SubmitAnswerRequest{QuestionID: q1.ID, AnswerID: &c1.ID})
	require.NoError(t, err)

	rows, err := statsSvc.ParticipationResponses(startedA.ParticipationID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, startedA.ParticipationID, rows[0].ParticipationID)
	assert.Equal(t, "Alice", rows[0].UserName)

	_, err = statsSvc.ParticipationResponses(424242)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
