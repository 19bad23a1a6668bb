package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizsystem/apperrors"
	"quizsystem/logger"
	"quizsystem/models"

	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

const qrCacheTTL = time.Hour

func qrCacheKey(quizID uint) string {
	return fmt.Sprintf("qr:quiz:%d", quizID)
}

// QRService renders a scannable code for a quiz's public URL. Rendered
// payloads are cached in redis for an hour; quiz mutations invalidate
// the entry.
type QRService struct {
	db      *gorm.DB
	redis   *redis.Client
	log     *logger.Logger
	baseURL string
}

func NewQRService(db *gorm.DB, redisClient *redis.Client, log *logger.Logger, baseURL string) *QRService {
	return &QRService{db: db, redis: redisClient, log: log, baseURL: baseURL}
}

type QRResult struct {
	QuizID    uint   `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	QRCode    string `json:"qr_code"`
	URL       string `json:"url"`
	IsActive  bool   `json:"is_active"`
}

func (s *QRService) Generate(ctx context.Context, quizID uint) (*QRResult, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, qrCacheKey(quizID)).Bytes(); err == nil {
			var result QRResult
			if err := json.Unmarshal(cached, &result); err == nil {
				return &result, nil
			}
		}
	}

	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("quiz not found")
		}
		return nil, apperrors.Internal("failed to fetch quiz", err)
	}

	quizURL := fmt.Sprintf("%s/quiz/%d", s.baseURL, quizID)
	png, err := qrcode.Encode(quizURL, qrcode.Medium, 256)
	if err != nil {
		return nil, apperrors.Internal("failed to render qr code", err)
	}

	result := &QRResult{
		QuizID:    quizID,
		QuizTitle: quiz.Title,
		QRCode:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		URL:       quizURL,
		IsActive:  quiz.IsActive,
	}

	if s.redis != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			if err := s.redis.Set(ctx, qrCacheKey(quizID), payload, qrCacheTTL).Err(); err != nil {
				s.log.Warnw("qr cache write failed", "quiz_id", quizID, "error", err)
			}
		}
	}

	return result, nil
}
