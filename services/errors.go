package services

import (
	"errors"
	"fmt"
)

var (
	ErrTermNotFound        = errors.New("term not found")
	ErrThemeNotFound       = errors.New("theme not found")
	ErrThemeExists         = errors.New("theme already exists")
	ErrQuizSessionNotFound = errors.New("quiz session not found or expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrEmptyField          = errors.New("term_kaa, term_en and theme must not be empty")
	ErrEmptyThemeName      = errors.New("name_en and name_kaa must not be empty")
)

// ThemeInUseError refuses deletion of a theme that still has terms.
type ThemeInUseError struct {
	Count int64
}

func (e *ThemeInUseError) Error() string {
	return fmt.Sprintf("Cannot delete theme with %d terms. Please reassign or delete terms first.", e.Count)
}
