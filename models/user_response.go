package models

import (
	"time"
)

type UserResponse struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ParticipationID uint      `json:"participation_id" gorm:"not null;uniqueIndex:idx_responses_participation_question"`
	QuestionID      uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_responses_participation_question"`
	AnswerID        *uint     `json:"answer_id"`
	OpenAnswerText  string    `json:"open_answer_text" gorm:"type:text"`
	ResponseTime    int       `json:"response_time" gorm:"not null;default:0"` // milliseconds
	IsCorrect       bool      `json:"is_correct" gorm:"not null;default:false"`
	AnsweredAt      time.Time `json:"answered_at"`

	// Relationships
	Participation Participation `json:"participation,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Question      Question      `json:"question,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
