package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"agroterms/models"

	"gorm.io/gorm"
)

type TermService struct {
	db     *gorm.DB
	themes *ThemeService
}

func NewTermService(db *gorm.DB, themes *ThemeService) *TermService {
	return &TermService{db: db, themes: themes}
}

type TermRequest struct {
	TermKaa       string `json:"term_kaa" binding:"required"`
	TermEn        string `json:"term_en" binding:"required"`
	DefinitionEn  string `json:"definition_en"`
	DefinitionKaa string `json:"definition_kaa"`
	Theme         string `json:"theme" binding:"required"`
	AudioURL      string `json:"audio_url"`
}

type TermFilter struct {
	Page   int
	Limit  int // 0 returns every match
	Search string
	Theme  string
	SortBy string
	Order  string
}

type TermPage struct {
	Data        []models.Term `json:"data"`
	Total       int64         `json:"total"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
}

var sortableTermColumns = map[string]bool{
	"term_kaa":   true,
	"term_en":    true,
	"theme":      true,
	"views":      true,
	"created_at": true,
}

func (s *TermService) List(ctx context.Context, f TermFilter) (*TermPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 0 {
		f.Limit = 50
	}
	if !sortableTermColumns[f.SortBy] {
		f.SortBy = "term_kaa"
	}
	direction := "ASC"
	if strings.EqualFold(f.Order, "desc") {
		direction = "DESC"
	}

	query := s.db.WithContext(ctx).Model(&models.Term{})
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(term_kaa) LIKE ? OR LOWER(term_en) LIKE ? OR LOWER(definition_en) LIKE ?", pattern, pattern, pattern)
	}
	if f.Theme != "" && f.Theme != "all" {
		query = query.Where("theme = ?", f.Theme)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var terms []models.Term
	find := query.Order(f.SortBy + " " + direction).Order("id")
	if f.Limit > 0 {
		find = find.Offset((f.Page - 1) * f.Limit).Limit(f.Limit)
	}
	if err := find.Find(&terms).Error; err != nil {
		return nil, err
	}

	totalPages := 1
	if f.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(f.Limit)))
	}
	return &TermPage{Data: terms, Total: total, CurrentPage: f.Page, TotalPages: totalPages}, nil
}

// View returns a term and counts the read.
func (s *TermService) View(ctx context.Context, id uint) (*models.Term, error) {
	res := s.db.WithContext(ctx).Model(&models.Term{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTermNotFound
	}
	return s.Get(ctx, id)
}

func (s *TermService) Get(ctx context.Context, id uint) (*models.Term, error) {
	var term models.Term
	if err := s.db.WithContext(ctx).First(&term, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		return nil, err
	}
	return &term, nil
}

func (s *TermService) Create(ctx context.Context, actor string, req *TermRequest) (*models.Term, error) {
	term, err := termFromRequest(req)
	if err != nil {
		return nil, err
	}
	term.CreatedBy = actor

	if err := s.createTerm(ctx, &term); err != nil {
		return nil, err
	}
	if err := s.themes.RecomputeThemeCounts(ctx); err != nil {
		return nil, err
	}
	return &term, nil
}

func (s *TermService) Update(ctx context.Context, id uint, req *TermRequest) (*models.Term, error) {
	term, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := termFromRequest(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.themes.CreatePlaceholder(ctx, updated.Theme); err != nil {
		return nil, err
	}

	term.TermKaa = updated.TermKaa
	term.TermEn = updated.TermEn
	term.DefinitionEn = updated.DefinitionEn
	term.DefinitionKaa = updated.DefinitionKaa
	term.Theme = updated.Theme
	term.AudioURL = updated.AudioURL
	if err := s.db.WithContext(ctx).Save(term).Error; err != nil {
		return nil, err
	}
	if err := s.themes.RecomputeThemeCounts(ctx); err != nil {
		return nil, err
	}
	return term, nil
}

func (s *TermService) Delete(ctx context.Context, id uint) (*models.Term, error) {
	term, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Term{}, id).Error; err != nil {
		return nil, err
	}
	if err := s.themes.RecomputeThemeCounts(ctx); err != nil {
		return nil, err
	}
	return term, nil
}

// FetchCandidates returns up to minimumCount random terms of a theme ("all"
// or empty for every theme). Fewer rows is not an error.
func (s *TermService) FetchCandidates(ctx context.Context, theme string, minimumCount int) ([]models.Term, error) {
	query := s.db.WithContext(ctx).Model(&models.Term{})
	if theme != "" && theme != "all" {
		query = query.Where("theme = ?", theme)
	}

	var terms []models.Term
	err := query.Order("RANDOM()").Limit(minimumCount).Find(&terms).Error
	return terms, err
}

// Favorite moves favorites_count by delta without going below zero.
func (s *TermService) Favorite(ctx context.Context, id uint, delta int) (*models.Term, error) {
	res := s.db.WithContext(ctx).Model(&models.Term{}).Where("id = ?", id).
		UpdateColumn("favorites_count", gorm.Expr("CASE WHEN favorites_count + ? < 0 THEN 0 ELSE favorites_count + ? END", delta, delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTermNotFound
	}
	return s.Get(ctx, id)
}

// Popular lists the most viewed terms.
func (s *TermService) Popular(ctx context.Context, limit int) ([]models.Term, error) {
	var terms []models.Term
	err := s.db.WithContext(ctx).
		Select("id, term_kaa, term_en, theme, views").
		Order("views DESC").Order("id").
		Limit(limit).
		Find(&terms).Error
	return terms, err
}

func (s *TermService) All(ctx context.Context) ([]models.Term, error) {
	var terms []models.Term
	err := s.db.WithContext(ctx).Order("theme").Order("term_kaa").Find(&terms).Error
	return terms, err
}

// createTerm stores term, creating its theme first when needed. Counts are
// left to the caller.
func (s *TermService) createTerm(ctx context.Context, term *models.Term) error {
	if _, err := s.themes.CreatePlaceholder(ctx, term.Theme); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(term).Error
}

func termFromRequest(req *TermRequest) (models.Term, error) {
	term := models.Term{
		TermKaa:       strings.TrimSpace(req.TermKaa),
		TermEn:        strings.TrimSpace(req.TermEn),
		DefinitionEn:  strings.TrimSpace(req.DefinitionEn),
		DefinitionKaa: strings.TrimSpace(req.DefinitionKaa),
		Theme:         strings.TrimSpace(req.Theme),
		AudioURL:      strings.TrimSpace(req.AudioURL),
	}
	if term.TermKaa == "" || term.TermEn == "" || term.Theme == "" {
		return models.Term{}, ErrEmptyField
	}
	if term.DefinitionEn == "" {
		term.DefinitionEn = models.PlaceholderDefinition
	}
	return term, nil
}
