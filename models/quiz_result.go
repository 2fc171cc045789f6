package models

import "time"

type QuizResult struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	SessionID        string    `json:"session_id" gorm:"not null;index"`
	QuizType         string    `json:"quiz_type" gorm:"not null"`
	Theme            string    `json:"theme" gorm:"not null;default:'all'"`
	TotalQuestions   int       `json:"total_questions" gorm:"not null"`
	CorrectAnswers   int       `json:"correct_answers" gorm:"not null"`
	IncorrectAnswers int       `json:"incorrect_answers" gorm:"not null"`
	Percentage       int       `json:"percentage" gorm:"not null"`
	TimeSpent        int       `json:"time_spent" gorm:"not null"` // seconds
	CreatedAt        time.Time `json:"created_at" gorm:"index"`

	// Relationships
	Details []QuizResultDetail `json:"details" gorm:"foreignKey:QuizResultID;constraint:OnDelete:CASCADE"`
}

type QuizResultDetail struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	QuizResultID  uint   `json:"-" gorm:"not null;index"`
	Position      int    `json:"-" gorm:"not null"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}
