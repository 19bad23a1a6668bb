package models

import (
	"time"
)

type Participation struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"not null;index"`
	QuizID         uint       `json:"quiz_id" gorm:"not null;index"`
	Score          int        `json:"score" gorm:"not null;default:0"`
	TotalQuestions int        `json:"total_questions" gorm:"not null;default:0"`
	Completed      bool       `json:"completed" gorm:"not null;default:false"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`

	// Relationships
	User      User           `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quiz      Quiz           `json:"quiz,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Responses []UserResponse `json:"responses,omitempty" gorm:"foreignKey:ParticipationID;constraint:OnDelete:CASCADE"`
}
