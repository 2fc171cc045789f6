package models

import "time"

// PlaceholderDefinition fills definition_en when a term is created without one.
const PlaceholderDefinition = "No definition available"

type Term struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TermKaa        string    `json:"term_kaa" gorm:"not null;index"`
	TermEn         string    `json:"term_en" gorm:"not null;index"`
	DefinitionEn   string    `json:"definition_en" gorm:"not null"`
	DefinitionKaa  string    `json:"definition_kaa"`
	Theme          string    `json:"theme" gorm:"not null;index"`
	AudioURL       string    `json:"audio_url"`
	Views          int       `json:"views" gorm:"not null;default:0"`
	FavoritesCount int       `json:"favorites_count" gorm:"not null;default:0"`
	CreatedBy      string    `json:"created_by" gorm:"not null;default:'system'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
