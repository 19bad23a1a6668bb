package models

type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"answer_text" gorm:"column:answer_text;size:500"`
	ImageURL   string `json:"image_url" gorm:"size:500"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
	Order      int    `json:"answer_order" gorm:"column:answer_order;not null"`

	// Relationships
	Question Question `json:"question,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
