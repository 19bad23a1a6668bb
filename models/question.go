package models

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeOpenEnded      = "open_ended"
	QuestionTypeImageChoice    = "image_choice"
)

// ChoiceType reports whether a question type is auto-graded against a
// set of correct answers.
func ChoiceType(questionType string) bool {
	return questionType == QuestionTypeMultipleChoice || questionType == QuestionTypeImageChoice
}

type Question struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	QuizID       uint   `json:"quiz_id" gorm:"not null;index"`
	Text         string `json:"question_text" gorm:"column:question_text;type:text;not null"`
	QuestionType string `json:"question_type" gorm:"size:20;not null;default:'multiple_choice'"`
	ImageURL     string `json:"image_url" gorm:"size:500"`
	Order        int    `json:"question_order" gorm:"column:question_order;not null"`
	TimeLimit    int    `json:"time_limit" gorm:"not null;default:30"` // seconds

	// Relationships
	Quiz    Quiz     `json:"quiz,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}
