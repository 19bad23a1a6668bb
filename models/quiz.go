package models

import (
	"time"
)

type Quiz struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Area        string    `json:"area" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Questions      []Question      `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Participations []Participation `json:"participations,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}
