package models

import "time"

// AutoCreatedThemeNote marks themes created implicitly by a bulk import.
const AutoCreatedThemeNote = "Auto-created during import"

type Theme struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	NameEn      string    `json:"name_en" gorm:"uniqueIndex;not null"`
	NameKaa     string    `json:"name_kaa" gorm:"not null"`
	Description string    `json:"description"`
	TermsCount  int       `json:"terms_count" gorm:"not null;default:0"` // derived, see RecomputeThemeCounts
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
