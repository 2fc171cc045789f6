package models

import (
	"time"

	"gorm.io/datatypes"
)

type Activity struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Action     string         `json:"action" gorm:"not null;index"`
	EntityType string         `json:"entity_type" gorm:"not null"` // term, theme, quiz, import, admin
	EntityID   string         `json:"entity_id"`
	User       string         `json:"user" gorm:"column:actor"`
	IPAddress  string         `json:"ip_address"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}

// All returns every model the service migrates.
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Theme{},
		&Term{},
		&QuizResult{},
		&QuizResultDetail{},
		&Activity{},
	}
}
