package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"quizsystem/apperrors"
	"quizsystem/logger"
	"quizsystem/models"

	"gorm.io/gorm"
)

// ParticipationService drives a single user's attempt at a quiz: start,
// answer submission with grading, completion. State moves
// absent -> in_progress -> completed, and never leaves completed.
type ParticipationService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipationService(db *gorm.DB, log *logger.Logger) *ParticipationService {
	return &ParticipationService{db: db, log: log}
}

type StartResult struct {
	ParticipationID uint   `json:"participation_id"`
	TotalQuestions  int    `json:"total_questions"`
	Message         string `json:"message"`
}

type SubmitAnswerRequest struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	AnswerID       *uint  `json:"answer_id"`
	OpenAnswerText string `json:"open_answer_text"`
	ResponseTime   int    `json:"response_time" binding:"min=0"` // milliseconds
}

type SubmitResult struct {
	Correct      bool   `json:"correct"`
	CurrentScore int    `json:"current_score"`
	QuestionType string `json:"question_type"`
}

type CompleteResult struct {
	Message        string  `json:"message"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

type StatusResult struct {
	Status            string     `json:"status"`
	CanParticipate    bool       `json:"can_participate"`
	QuizActive        *bool      `json:"quiz_active,omitempty"`
	ParticipationID   *uint      `json:"participation_id,omitempty"`
	CurrentScore      *int       `json:"current_score,omitempty"`
	QuestionsAnswered *int       `json:"questions_answered,omitempty"`
	Score             *int       `json:"score,omitempty"`
	TotalQuestions    *int       `json:"total_questions,omitempty"`
	Percentage        *float64   `json:"percentage,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

type ParticipationSummary struct {
	ID             uint       `json:"id"`
	QuizID         uint       `json:"quiz_id"`
	QuizTitle      string     `json:"quiz_title"`
	UserName       string     `json:"user_name"`
	UserUni        string     `json:"user_uni"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     float64    `json:"percentage"`
	Completed      bool       `json:"completed"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// percentage is score over total as a percentage, rounded to two
// decimals. Zero total yields zero.
func percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}

// Start begins a participation, or resumes the incomplete one if it
// exists. A pair that already completed the quiz may not start again.
func (s *ParticipationService) Start(uni string, quizID uint) (*StartResult, error) {
	var user models.User
	if err := s.db.Where("uni = ?", uni).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to fetch user", err)
	}

	var quiz models.Quiz
	if err := s.db.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	if !quiz.IsActive {
		return nil, apperrors.InvalidState("quiz is not active")
	}

	var completed models.Participation
	err := s.db.Where("user_id = ? AND quiz_id = ? AND completed = ?", user.ID, quizID, true).
		First(&completed).Error
	if err == nil {
		return nil, apperrors.InvalidState(fmt.Sprintf(
			"quiz already completed with score %d/%d", completed.Score, completed.TotalQuestions))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check participation", err)
	}

	var existing models.Participation
	err = s.db.Where("user_id = ? AND quiz_id = ? AND completed = ?", user.ID, quizID, false).
		First(&existing).Error
	if err == nil {
		return &StartResult{
			ParticipationID: existing.ID,
			TotalQuestions:  existing.TotalQuestions,
			Message:         "resuming existing participation",
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check participation", err)
	}

	totalQuestions := len(quiz.Questions)
	if totalQuestions == 0 {
		return nil, apperrors.InvalidState("quiz has no questions")
	}

	participation := models.Participation{
		UserID:         user.ID,
		QuizID:         quizID,
		TotalQuestions: totalQuestions,
		StartedAt:      time.Now().UTC(),
	}
	if err := s.db.Create(&participation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent start won the race on the partial unique
			// index; resume the winner's row.
			var winner models.Participation
			if ferr := s.db.Where("user_id = ? AND quiz_id = ? AND completed = ?", user.ID, quizID, false).
				First(&winner).Error; ferr == nil {
				return &StartResult{
					ParticipationID: winner.ID,
					TotalQuestions:  winner.TotalQuestions,
					Message:         "resuming existing participation",
				}, nil
			}
			return nil, apperrors.Conflict("participation already exists")
		}
		return nil, apperrors.Internal("failed to start participation", err)
	}

	s.log.Infow("participation started", "uni", uni, "quiz_id", quizID, "participation_id", participation.ID)
	return &StartResult{
		ParticipationID: participation.ID,
		TotalQuestions:  totalQuestions,
		Message:         "participation started",
	}, nil
}

// Submit records one answer within a participation. Choice questions are
// graded against the set of answers flagged correct; open-ended answers
// are stored verbatim and never graded. The response row and the score
// update commit together or not at all.
func (s *ParticipationService) Submit(participationID uint, req *SubmitAnswerRequest) (*SubmitResult, error) {
	var result SubmitResult

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var participation models.Participation
		if err := tx.First(&participation, participationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("participation not found")
			}
			return apperrors.Internal("failed to fetch participation", err)
		}

		if participation.Completed {
			return apperrors.InvalidState("participation already completed")
		}

		var prior models.UserResponse
		err := tx.Where("participation_id = ? AND question_id = ?", participationID, req.QuestionID).
			First(&prior).Error
		if err == nil {
			return apperrors.Conflict("question already answered")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Internal("failed to check response", err)
		}

		var question models.Question
		if err := tx.First(&question, req.QuestionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("question not found")
			}
			return apperrors.Internal("failed to fetch question", err)
		}

		response := models.UserResponse{
			ParticipationID: participationID,
			QuestionID:      req.QuestionID,
			ResponseTime:    req.ResponseTime,
			AnsweredAt:      time.Now().UTC(),
		}

		if question.QuestionType == models.QuestionTypeOpenEnded {
			response.OpenAnswerText = req.OpenAnswerText
		} else {
			if req.AnswerID == nil {
				return apperrors.Validation("answer_id is required for this question type")
			}

			var correctAnswers []models.Answer
			if err := tx.Where("question_id = ? AND is_correct = ?", req.QuestionID, true).
				Find(&correctAnswers).Error; err != nil {
				return apperrors.Internal("failed to fetch answers", err)
			}
			for _, a := range correctAnswers {
				if a.ID == *req.AnswerID {
					response.IsCorrect = true
					break
				}
			}
			response.AnswerID = req.AnswerID
		}

		if err := tx.Create(&response).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("question already answered")
			}
			return apperrors.Internal("failed to record response", err)
		}

		if response.IsCorrect {
			participation.Score++
			if err := tx.Save(&participation).Error; err != nil {
				return apperrors.Internal("failed to update score", err)
			}
		}

		result = SubmitResult{
			Correct:      response.IsCorrect,
			CurrentScore: participation.Score,
			QuestionType: question.QuestionType,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &result, nil
}

// Complete seals a participation. Completing an already-completed
// participation returns the existing result unchanged.
func (s *ParticipationService) Complete(participationID uint) (*CompleteResult, error) {
	var participation models.Participation
	if err := s.db.First(&participation, participationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("participation not found")
		}
		return nil, apperrors.Internal("failed to fetch participation", err)
	}

	if participation.Completed {
		return &CompleteResult{
			Message:        "participation already completed",
			Score:          participation.Score,
			TotalQuestions: participation.TotalQuestions,
			Percentage:     percentage(participation.Score, participation.TotalQuestions),
		}, nil
	}

	now := time.Now().UTC()
	participation.Completed = true
	participation.CompletedAt = &now
	if err := s.db.Save(&participation).Error; err != nil {
		return nil, apperrors.Internal("failed to complete participation", err)
	}

	s.log.Infow("participation completed", "participation_id", participation.ID, "score", participation.Score)
	return &CompleteResult{
		Message:        "participation completed",
		Score:          participation.Score,
		TotalQuestions: participation.TotalQuestions,
		Percentage:     percentage(participation.Score, participation.TotalQuestions),
	}, nil
}

// Status reports where a (user, quiz) pair stands: not_started,
// in_progress or completed.
func (s *ParticipationService) Status(uni string, quizID uint) (*StatusResult, error) {
	var user models.User
	if err := s.db.Where("uni = ?", uni).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to fetch user", err)
	}

	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	var participation models.Participation
	err := s.db.Where("user_id = ? AND quiz_id = ?", user.ID, quizID).
		Order("completed DESC").
		First(&participation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StatusResult{
			Status:         "not_started",
			CanParticipate: quiz.IsActive,
			QuizActive:     &quiz.IsActive,
		}, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to fetch participation", err)
	}

	if participation.Completed {
		pct := percentage(participation.Score, participation.TotalQuestions)
		return &StatusResult{
			Status:         "completed",
			CanParticipate: false,
			Score:          &participation.Score,
			TotalQuestions: &participation.TotalQuestions,
			Percentage:     &pct,
			CompletedAt:    participation.CompletedAt,
		}, nil
	}

	var answered int64
	if err := s.db.Model(&models.UserResponse{}).
		Where("participation_id = ?", participation.ID).
		Count(&answered).Error; err != nil {
		return nil, apperrors.Internal("failed to count responses", err)
	}
	answeredCount := int(answered)

	return &StatusResult{
		Status:            "in_progress",
		CanParticipate:    true,
		ParticipationID:   &participation.ID,
		CurrentScore:      &participation.Score,
		QuestionsAnswered: &answeredCount,
	}, nil
}

// Delete removes a participation and its responses.
func (s *ParticipationService) Delete(participationID uint) error {
	var participation models.Participation
	if err := s.db.First(&participation, participationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("participation not found")
		}
		return apperrors.Internal("failed to fetch participation", err)
	}

	if err := s.db.Select("Responses").Delete(&participation).Error; err != nil {
		return apperrors.Internal("failed to delete participation", err)
	}
	return nil
}

// ListByUser returns a user's participations with quiz titles and
// percentages.
func (s *ParticipationService) ListByUser(uni string) ([]ParticipationSummary, error) {
	var user models.User
	if err := s.db.Where("uni = ?", uni).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to fetch user", err)
	}

	var participations []models.Participation
	if err := s.db.Where("user_id = ?", user.ID).Preload("Quiz").Find(&participations).Error; err != nil {
		return nil, apperrors.Internal("failed to list participations", err)
	}

	summaries := make([]ParticipationSummary, 0, len(participations))
	for _, p := range participations {
		summaries = append(summaries, ParticipationSummary{
			ID:             p.ID,
			QuizID:         p.QuizID,
			QuizTitle:      p.Quiz.Title,
			UserName:       user.Name,
			UserUni:        user.Uni,
			Score:          p.Score,
			TotalQuestions: p.TotalQuestions,
			Percentage:     percentage(p.Score, p.TotalQuestions),
			Completed:      p.Completed,
			StartedAt:      p.StartedAt,
			CompletedAt:    p.CompletedAt,
		})
	}
	return summaries, nil
}
