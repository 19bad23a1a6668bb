package models

import (
	"time"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Uni       string    `json:"uni" gorm:"size:50;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Participations []Participation `json:"participations,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
