package services

import (
	"errors"
	"math"
	"time"

	"quizsystem/apperrors"
	"quizsystem/logger"
	"quizsystem/models"

	"gorm.io/gorm"
)

// StatsService derives dashboard and per-quiz statistics from stored
// participations. Everything is recomputed per call; nothing is cached.
type StatsService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatsService(db *gorm.DB, log *logger.Logger) *StatsService {
	return &StatsService{db: db, log: log}
}

type DashboardStats struct {
	TotalQuizzes            int64   `json:"total_quizzes"`
	ActiveQuizzes           int64   `json:"active_quizzes"`
	InactiveQuizzes         int64   `json:"inactive_quizzes"`
	TotalUsers              int64   `json:"total_users"`
	TotalParticipations     int64   `json:"total_participations"`
	CompletedParticipations int64   `json:"completed_participations"`
	CompletionRate          float64 `json:"completion_rate"`
	AverageScore            float64 `json:"average_score"`
}

type QuizStats struct {
	QuizID                  uint             `json:"quiz_id"`
	QuizTitle               string           `json:"quiz_title"`
	TotalParticipations     int              `json:"total_participations"`
	CompletedParticipations int              `json:"completed_participations"`
	CompletionRate          float64          `json:"completion_rate"`
	AverageScore            float64          `json:"average_score"`
	AveragePercentage       float64          `json:"average_percentage"`
	TotalQuestions          int              `json:"total_questions"`
	QuestionDifficulty      map[uint]float64 `json:"question_difficulty"`
}

type ResponseRow struct {
	ParticipationID uint       `json:"participation_id"`
	UserName        string     `json:"user_name"`
	UserUni         string     `json:"user_uni"`
	QuestionOrder   int        `json:"question_order"`
	QuestionText    string     `json:"question_text"`
	QuestionType    string     `json:"question_type"`
	AnswerText      string     `json:"answer_text"`
	IsCorrect       bool       `json:"is_correct"`
	ResponseTime    int        `json:"response_time"`
	AnsweredAt      time.Time  `json:"answered_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Dashboard returns system-wide counts and rates. Internal failures
// degrade to a zeroed result so the admin dashboard keeps rendering.
func (s *StatsService) Dashboard() DashboardStats {
	var stats DashboardStats

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalQuizzes, s.db.Model(&models.Quiz{})},
		{&stats.ActiveQuizzes, s.db.Model(&models.Quiz{}).Where("is_active = ?", true)},
		{&stats.TotalUsers, s.db.Model(&models.User{})},
		{&stats.TotalParticipations, s.db.Model(&models.Participation{})},
		{&stats.CompletedParticipations, s.db.Model(&models.Participation{}).Where("completed = ?", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			s.log.Errorw("dashboard statistics failed", "error", err)
			return DashboardStats{}
		}
	}
	stats.InactiveQuizzes = stats.TotalQuizzes - stats.ActiveQuizzes

	if stats.TotalParticipations > 0 {
		stats.CompletionRate = round2(float64(stats.CompletedParticipations) / float64(stats.TotalParticipations) * 100)
	}

	if stats.CompletedParticipations > 0 {
		var completed []models.Participation
		if err := s.db.Where("completed = ?", true).Find(&completed).Error; err != nil {
			s.log.Errorw("dashboard statistics failed", "error", err)
			return DashboardStats{}
		}
		var sum float64
		for _, p := range completed {
			sum += percentage(p.Score, p.TotalQuestions)
		}
		if len(completed) > 0 {
			stats.AverageScore = round2(sum / float64(len(completed)))
		}
	}

	return stats
}

// Quiz returns per-quiz rates and a per-question difficulty map built
// from completed participations. Questions nobody answered are omitted
// from the map.
func (s *StatsService) Quiz(quizID uint) (*QuizStats, error) {
	var quiz models.Quiz
	if err := s.db.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	var participations []models.Participation
	if err := s.db.Where("quiz_id = ?", quizID).Preload("Responses").Find(&participations).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch participations", err)
	}

	stats := QuizStats{
		QuizID:             quizID,
		QuizTitle:          quiz.Title,
		TotalQuestions:     len(quiz.Questions),
		QuestionDifficulty: map[uint]float64{},
	}

	type questionTally struct {
		correct int
		total   int
	}
	tallies := map[uint]*questionTally{}

	var scoreSum, pctSum float64
	for _, p := range participations {
		stats.TotalParticipations++
		if !p.Completed {
			continue
		}
		stats.CompletedParticipations++
		scoreSum += float64(p.Score)
		pctSum += percentage(p.Score, p.TotalQuestions)

		for _, r := range p.Responses {
			t := tallies[r.QuestionID]
			if t == nil {
				t = &questionTally{}
				tallies[r.QuestionID] = t
			}
			t.total++
			if r.IsCorrect {
				t.correct++
			}
		}
	}

	if stats.TotalParticipations > 0 {
		stats.CompletionRate = round2(float64(stats.CompletedParticipations) / float64(stats.TotalParticipations) * 100)
	}
	if stats.CompletedParticipations > 0 {
		stats.AverageScore = round2(scoreSum / float64(stats.CompletedParticipations))
		stats.AveragePercentage = round2(pctSum / float64(stats.CompletedParticipations))
	}
	for questionID, t := range tallies {
		if t.total == 0 {
			continue
		}
		stats.QuestionDifficulty[questionID] = round2(float64(t.correct) / float64(t.total) * 100)
	}

	return &stats, nil
}

// participationRow scans the outer-joined listing; joined columns are
// nullable because referenced rows may have been hard-deleted.
type participationRow struct {
	ID             uint
	QuizID         uint
	Score          int
	TotalQuestions int
	Completed      bool
	StartedAt      time.Time
	CompletedAt    *time.Time
	UserName       *string
	UserUni        *string
	QuizTitle      *string
}

// ListParticipations lists participations joined with user and quiz,
// with defensive fallbacks for dangling references. quizID zero means
// all quizzes. Internal failures degrade to an empty slice.
func (s *StatsService) ListParticipations(completedOnly bool, quizID uint) []ParticipationSummary {
	query := s.db.Table("participations").
		Select("participations.id, participations.quiz_id, participations.score, " +
			"participations.total_questions, participations.completed, participations.started_at, " +
			"participations.completed_at, users.name AS user_name, users.uni AS user_uni, " +
			"quizzes.title AS quiz_title").
		Joins("LEFT JOIN users ON users.id = participations.user_id").
		Joins("LEFT JOIN quizzes ON quizzes.id = participations.quiz_id")
	if completedOnly {
		query = query.Where("participations.completed = ?", true)
	}
	if quizID != 0 {
		query = query.Where("participations.quiz_id = ?", quizID)
	}

	var rows []participationRow
	if err := query.Order("participations.completed_at DESC").Scan(&rows).Error; err != nil {
		s.log.Errorw("participation listing failed", "error", err)
		return []ParticipationSummary{}
	}

	summaries := make([]ParticipationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, ParticipationSummary{
			ID:             row.ID,
			QuizID:         row.QuizID,
			QuizTitle:      fallback(row.QuizTitle, "Quiz Eliminado"),
			UserName:       fallback(row.UserName, "Usuario Eliminado"),
			UserUni:        fallback(row.UserUni, "N/A"),
			Score:          row.Score,
			TotalQuestions: row.TotalQuestions,
			Percentage:     percentage(row.Score, row.TotalQuestions),
			Completed:      row.Completed,
			StartedAt:      row.StartedAt,
			CompletedAt:    row.CompletedAt,
		})
	}
	return summaries
}

type responseRow struct {
	ParticipationID uint
	IsCorrect       bool
	ResponseTime    *int
	AnsweredAt      time.Time
	OpenAnswerText  *string
	QuestionOrder   *int
	QuestionText    *string
	QuestionType    *string
	AnswerText      *string
	UserName        *string
	UserUni         *string
	CompletedAt     *time.Time
}

// QuizResponses lists every individual response recorded for a quiz.
// Listings use outer joins so a dangling reference shows its fallback
// text instead of dropping the row.
func (s *StatsService) QuizResponses(quizID uint) ([]ResponseRow, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	return s.listResponses(s.db.Where("participations.quiz_id = ?", quizID))
}

// ParticipationResponses lists the responses of one participation.
func (s *StatsService) ParticipationResponses(participationID uint) ([]ResponseRow, error) {
	var participation models.Participation
	if err := s.db.First(&participation, participationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("participation not found")
		}
		return nil, apperrors.Internal("failed to fetch participation", err)
	}

	return s.listResponses(s.db.Where("user_responses.participation_id = ?", participationID))
}

func (s *StatsService) listResponses(query *gorm.DB) ([]ResponseRow, error) {
	var rows []responseRow
	err := query.Table("user_responses").
		Select("user_responses.participation_id, user_responses.is_correct, " +
			"user_responses.response_time, user_responses.answered_at, user_responses.open_answer_text, " +
			"questions.question_order, questions.question_text, questions.question_type, " +
			"answers.answer_text, users.name AS user_name, users.uni AS user_uni, " +
			"participations.completed_at").
		Joins("LEFT JOIN participations ON participations.id = user_responses.participation_id").
		Joins("LEFT JOIN users ON users.id = participations.user_id").
		Joins("LEFT JOIN questions ON questions.id = user_responses.question_id").
		Joins("LEFT JOIN answers ON answers.id = user_responses.answer_id").
		Order("participations.id, questions.question_order").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal("failed to fetch responses", err)
	}

	result := make([]ResponseRow, 0, len(rows))
	for _, row := range rows {
		answerText := "N/A"
		if row.OpenAnswerText != nil && *row.OpenAnswerText != "" {
			answerText = FlattenText(*row.OpenAnswerText)
		} else if row.AnswerText != nil && *row.AnswerText != "" {
			answerText = FlattenText(*row.AnswerText)
		}

		questionText := "Pregunta eliminada"
		if row.QuestionText != nil && *row.QuestionText != "" {
			questionText = FlattenText(*row.QuestionText)
		}

		questionType := models.QuestionTypeMultipleChoice
		if row.QuestionType != nil && *row.QuestionType != "" {
			questionType = *row.QuestionType
		}

		result = append(result, ResponseRow{
			ParticipationID: row.ParticipationID,
			UserName:        flattenFallback(row.UserName, "Usuario Eliminado"),
			UserUni:         flattenFallback(row.UserUni, "N/A"),
			QuestionOrder:   intOrZero(row.QuestionOrder),
			QuestionText:    questionText,
			QuestionType:    questionType,
			AnswerText:      answerText,
			IsCorrect:       row.IsCorrect,
			ResponseTime:    intOrZero(row.ResponseTime),
			AnsweredAt:      row.AnsweredAt,
			CompletedAt:     row.CompletedAt,
		})
	}
	return result, nil
}

func fallback(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func flattenFallback(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return FlattenText(*v)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
