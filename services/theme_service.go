package services

import (
	"context"
	"errors"
	"strings"

	"agroterms/models"

	"gorm.io/gorm"
)

type ThemeService struct {
	db *gorm.DB
}

func NewThemeService(db *gorm.DB) *ThemeService {
	return &ThemeService{db: db}
}

type ThemeRequest struct {
	NameEn      string `json:"name_en" binding:"required"`
	NameKaa     string `json:"name_kaa" binding:"required"`
	Description string `json:"description"`
}

// List returns every theme ordered by English name with fresh term counts.
func (s *ThemeService) List(ctx context.Context) ([]models.Theme, error) {
	if err := s.RecomputeThemeCounts(ctx); err != nil {
		return nil, err
	}

	var themes []models.Theme
	err := s.db.WithContext(ctx).Order("name_en").Find(&themes).Error
	return themes, err
}

func (s *ThemeService) Get(ctx context.Context, id uint) (*models.Theme, error) {
	var theme models.Theme
	if err := s.db.WithContext(ctx).First(&theme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, err
	}
	return &theme, nil
}

// Exists reports whether a theme with this English name is stored.
func (s *ThemeService) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Theme{}).Where("name_en = ?", name).Count(&count).Error
	return count > 0, err
}

// themeNames trims both names; blank ones are refused so terms never end up
// with an empty theme.
func themeNames(req *ThemeRequest) (nameEn, nameKaa string, err error) {
	nameEn = strings.TrimSpace(req.NameEn)
	nameKaa = strings.TrimSpace(req.NameKaa)
	if nameEn == "" || nameKaa == "" {
		return "", "", ErrEmptyThemeName
	}
	return nameEn, nameKaa, nil
}

func (s *ThemeService) Create(ctx context.Context, req *ThemeRequest) (*models.Theme, error) {
	name, nameKaa, err := themeNames(req)
	if err != nil {
		return nil, err
	}
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrThemeExists
	}

	theme := models.Theme{
		NameEn:      name,
		NameKaa:     nameKaa,
		Description: req.Description,
	}
	if err := s.db.WithContext(ctx).Create(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

// EnsureTheme returns the theme named nameEn, creating it when absent. A
// concurrent creator losing the race on the unique index gets the winner's
// row back.
func (s *ThemeService) EnsureTheme(ctx context.Context, nameEn, nameKaa, description string) (*models.Theme, bool, error) {
	if strings.TrimSpace(nameEn) == "" {
		return nil, false, ErrEmptyThemeName
	}
	var theme models.Theme
	err := s.db.WithContext(ctx).Where("name_en = ?", nameEn).First(&theme).Error
	if err == nil {
		return &theme, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	theme = models.Theme{NameEn: nameEn, NameKaa: nameKaa, Description: description}
	if createErr := s.db.WithContext(ctx).Create(&theme).Error; createErr != nil {
		var existing models.Theme
		if s.db.WithContext(ctx).Where("name_en = ?", nameEn).First(&existing).Error == nil {
			return &existing, false, nil
		}
		return nil, false, createErr
	}
	return &theme, true, nil
}

// CreatePlaceholder creates a theme for an imported term that references an
// unknown name. The English name doubles as the translated name.
func (s *ThemeService) CreatePlaceholder(ctx context.Context, name string) (uint, error) {
	theme, _, err := s.EnsureTheme(ctx, name, name, models.AutoCreatedThemeNote)
	if err != nil {
		return 0, err
	}
	return theme.ID, nil
}

// Update changes a theme. Renaming it moves every term to the new name.
func (s *ThemeService) Update(ctx context.Context, id uint, req *ThemeRequest) (*models.Theme, error) {
	newName, nameKaa, err := themeNames(req)
	if err != nil {
		return nil, err
	}
	theme, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := theme.NameEn

	if newName != oldName {
		exists, err := s.Exists(ctx, newName)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrThemeExists
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		theme.NameEn = newName
		theme.NameKaa = nameKaa
		theme.Description = req.Description
		if err := tx.Save(theme).Error; err != nil {
			return err
		}
		if oldName != newName {
			return tx.Model(&models.Term{}).Where("theme = ?", oldName).Update("theme", newName).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return theme, nil
}

// Delete removes a theme that no term references.
func (s *ThemeService) Delete(ctx context.Context, id uint) (*models.Theme, error) {
	theme, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Term{}).Where("theme = ?", theme.NameEn).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ThemeInUseError{Count: count}
	}

	if err := s.db.WithContext(ctx).Delete(&models.Theme{}, theme.ID).Error; err != nil {
		return nil, err
	}
	return theme, nil
}

// RecomputeThemeCounts rebuilds every theme's cached terms_count from the
// terms table. Call it after any batch of term mutations.
func (s *ThemeService) RecomputeThemeCounts(ctx context.Context) error {
	type themeCount struct {
		Theme string
		Count int
	}
	var counts []themeCount
	if err := s.db.WithContext(ctx).Model(&models.Term{}).
		Select("theme, COUNT(*) AS count").
		Group("theme").
		Scan(&counts).Error; err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Theme{}).Where("1 = 1").Update("terms_count", 0).Error; err != nil {
			return err
		}
		for _, c := range counts {
			if err := tx.Model(&models.Theme{}).Where("name_en = ?", c.Theme).Update("terms_count", c.Count).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
