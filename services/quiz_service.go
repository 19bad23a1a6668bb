package services

import (
	"context"
	"errors"

	"quizsystem/apperrors"
	"quizsystem/logger"
	"quizsystem/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type QuizService struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logger.Logger
}

func NewQuizService(db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *QuizService {
	return &QuizService{db: db, redis: redisClient, log: log}
}

type CreateQuizRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Area        string `json:"area" binding:"required,max=100"`
	Description string `json:"description"`
}

// UpdateQuizRequest is a partial update: nil fields are left untouched.
type UpdateQuizRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Area        *string `json:"area" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CreateAnswerRequest struct {
	Text      string `json:"answer_text"`
	ImageURL  string `json:"image_url"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"answer_order" binding:"required,min=1"`
}

type CreateQuestionRequest struct {
	Text         string                `json:"question_text" binding:"required"`
	QuestionType string                `json:"question_type" binding:"omitempty,oneof=multiple_choice open_ended image_choice"`
	ImageURL     string                `json:"image_url"`
	Order        int                   `json:"question_order" binding:"required,min=1"`
	TimeLimit    int                   `json:"time_limit" binding:"omitempty,min=10,max=300"`
	Answers      []CreateAnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// UpdateQuestionRequest is a partial update. A non-nil Answers slice
// replaces the whole answer set.
type UpdateQuestionRequest struct {
	Text         *string               `json:"question_text" binding:"omitempty,min=1"`
	QuestionType *string               `json:"question_type" binding:"omitempty,oneof=multiple_choice open_ended image_choice"`
	ImageURL     *string               `json:"image_url"`
	Order        *int                  `json:"question_order" binding:"omitempty,min=1"`
	TimeLimit    *int                  `json:"time_limit" binding:"omitempty,min=10,max=300"`
	Answers      []CreateAnswerRequest `json:"answers" binding:"omitempty,min=1,dive"`
}

type QuizCounts struct {
	TotalCount    int64 `json:"total_count"`
	ActiveCount   int64 `json:"active_count"`
	InactiveCount int64 `json:"inactive_count"`
}

func (s *QuizService) Create(req *CreateQuizRequest) (*models.Quiz, error) {
	quiz := models.Quiz{
		Title:       req.Title,
		Area:        req.Area,
		Description: req.Description,
	}
	if err := s.db.Create(&quiz).Error; err != nil {
		return nil, apperrors.Internal("failed to create quiz", err)
	}

	s.log.Infow("quiz created", "id", quiz.ID, "title", quiz.Title)
	return &quiz, nil
}

// List returns quizzes newest first. Internal failures degrade to an
// empty slice so the dashboard keeps rendering.
func (s *QuizService) List(activeOnly bool) []models.Quiz {
	query := s.db.Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var quizzes []models.Quiz
	if err := query.Find(&quizzes).Error; err != nil {
		s.log.Errorw("quiz listing failed", "error", err)
		return []models.Quiz{}
	}
	return quizzes
}

func (s *QuizService) Counts() QuizCounts {
	var counts QuizCounts
	if err := s.db.Model(&models.Quiz{}).Count(&counts.TotalCount).Error; err != nil {
		s.log.Errorw("quiz count failed", "error", err)
		return QuizCounts{}
	}
	if err := s.db.Model(&models.Quiz{}).Where("is_active = ?", true).Count(&counts.ActiveCount).Error; err != nil {
		s.log.Errorw("quiz count failed", "error", err)
		return QuizCounts{}
	}
	counts.InactiveCount = counts.TotalCount - counts.ActiveCount
	return counts
}

// GetByID loads a quiz with its questions and answers in display order.
func (s *QuizService) GetByID(id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.question_order")
		}).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.answer_order")
		}).
		First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	// Stored free text is escaped before it goes out in a structured
	// response.
	quiz.Title = EscapeText(quiz.Title)
	quiz.Area = EscapeText(quiz.Area)
	quiz.Description = EscapeText(quiz.Description)
	for i := range quiz.Questions {
		quiz.Questions[i].Text = EscapeText(quiz.Questions[i].Text)
		for j := range quiz.Questions[i].Answers {
			quiz.Questions[i].Answers[j].Text = EscapeText(quiz.Questions[i].Answers[j].Text)
		}
	}
	return &quiz, nil
}

func (s *QuizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Area != nil {
		quiz.Area = *req.Area
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.db.Save(&quiz).Error; err != nil {
		return nil, apperrors.Internal("failed to update quiz", err)
	}

	s.invalidateQR(ctx, id)
	return &quiz, nil
}

// Delete removes a quiz; questions, answers, participations and
// responses go with it.
func (s *QuizService) Delete(ctx context.Context, id uint) error {
	var quiz models.Quiz
	if err := s.db.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("quiz not found")
		}
		return apperrors.Internal("failed to fetch quiz", err)
	}

	if err := s.db.Select("Questions", "Participations").Delete(&quiz).Error; err != nil {
		return apperrors.Internal("failed to delete quiz", err)
	}

	s.invalidateQR(ctx, id)
	return nil
}

// BulkSetActive flips the active flag on every listed quiz and returns
// how many rows changed.
func (s *QuizService) BulkSetActive(ctx context.Context, ids []uint, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := s.db.Model(&models.Quiz{}).Where("id IN ?", ids).Update("is_active", active)
	if result.Error != nil {
		return 0, apperrors.Internal("bulk toggle failed", result.Error)
	}

	s.invalidateQR(ctx, ids...)
	return result.RowsAffected, nil
}

func (s *QuizService) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var quizzes []models.Quiz
	if err := s.db.Where("id IN ?", ids).Find(&quizzes).Error; err != nil {
		return 0, apperrors.Internal("bulk delete failed", err)
	}

	deleted := int64(0)
	for i := range quizzes {
		if err := s.db.Select("Questions", "Participations").Delete(&quizzes[i]).Error; err != nil {
			return deleted, apperrors.Internal("bulk delete failed", err)
		}
		deleted++
	}

	s.invalidateQR(ctx, ids...)
	return deleted, nil
}

// Search matches title or area case-insensitively. Queries shorter than
// two characters and internal failures both return an empty slice.
func (s *QuizService) Search(query string) []models.Quiz {
	query = trimmedQuery(query)
	if query == "" {
		return []models.Quiz{}
	}

	var quizzes []models.Quiz
	pattern := "%" + query + "%"
	err := s.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(area) LIKE LOWER(?)", pattern, pattern).
		Limit(50).
		Find(&quizzes).Error
	if err != nil {
		s.log.Errorw("quiz search failed", "query", query, "error", err)
		return []models.Quiz{}
	}
	return quizzes
}

// AddQuestion appends a question and its answers to a quiz. The whole
// insert is one transaction.
func (s *QuizService) AddQuestion(quizID uint, req *CreateQuestionRequest) (*models.Question, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	questionType := req.QuestionType
	if questionType == "" {
		questionType = models.QuestionTypeMultipleChoice
	}
	timeLimit := req.TimeLimit
	if timeLimit == 0 {
		timeLimit = 30
	}

	if err := validateAnswerSet(questionType, req.Answers); err != nil {
		return nil, err
	}

	question := models.Question{
		QuizID:       quizID,
		Text:         req.Text,
		QuestionType: questionType,
		ImageURL:     req.ImageURL,
		Order:        req.Order,
		TimeLimit:    timeLimit,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, aReq := range req.Answers {
			answer := models.Answer{
				QuestionID: question.ID,
				Text:       aReq.Text,
				ImageURL:   aReq.ImageURL,
				// Open-ended reference answers are never graded.
				IsCorrect: aReq.IsCorrect && questionType != models.QuestionTypeOpenEnded,
				Order:     aReq.Order,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal("failed to add question", err)
	}

	return s.GetQuestion(question.ID)
}

func (s *QuizService) GetQuestion(id uint) (*models.Question, error) {
	var question models.Question
	err := s.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.answer_order")
		}).
		First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("question not found")
		}
		return nil, apperrors.Internal("failed to fetch question", err)
	}
	return &question, nil
}

func (s *QuizService) UpdateQuestion(id uint, req *UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.GetQuestion(id)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.QuestionType != nil {
		question.QuestionType = *req.QuestionType
	}
	if req.ImageURL != nil {
		question.ImageURL = *req.ImageURL
	}
	if req.Order != nil {
		question.Order = *req.Order
	}
	if req.TimeLimit != nil {
		question.TimeLimit = *req.TimeLimit
	}

	if req.Answers != nil {
		if err := validateAnswerSet(question.QuestionType, req.Answers); err != nil {
			return nil, err
		}
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		question.Answers = nil
		if err := tx.Save(question).Error; err != nil {
			return err
		}
		if req.Answers == nil {
			return nil
		}

		// Replace the whole answer set.
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		for _, aReq := range req.Answers {
			answer := models.Answer{
				QuestionID: id,
				Text:       aReq.Text,
				ImageURL:   aReq.ImageURL,
				IsCorrect:  aReq.IsCorrect && question.QuestionType != models.QuestionTypeOpenEnded,
				Order:      aReq.Order,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, apperrors.Internal("failed to update question", txErr)
	}

	return s.GetQuestion(id)
}

func (s *QuizService) DeleteQuestion(id uint) error {
	question, err := s.GetQuestion(id)
	if err != nil {
		return err
	}

	if err := s.db.Select("Answers").Delete(question).Error; err != nil {
		return apperrors.Internal("failed to delete question", err)
	}
	return nil
}

// validateAnswerSet enforces the per-type answer rules: choice questions
// need at least one correct answer, open-ended questions carry exactly
// one ungraded reference answer.
func validateAnswerSet(questionType string, answers []CreateAnswerRequest) error {
	switch {
	case models.ChoiceType(questionType):
		for _, a := range answers {
			if a.IsCorrect {
				return nil
			}
		}
		return apperrors.Validation("at least one answer must be marked correct")
	case questionType == models.QuestionTypeOpenEnded:
		if len(answers) != 1 {
			return apperrors.Validation("open-ended questions must have exactly one reference answer")
		}
		return nil
	default:
		return apperrors.Validation("unknown question type")
	}
}

func (s *QuizService) invalidateQR(ctx context.Context, ids ...uint) {
	if s.redis == nil {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, qrCacheKey(id))
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnw("qr cache invalidation failed", "error", err)
	}
}
