package services

import (
	"context"
	"sort"
	"time"

	"agroterms/models"

	"gorm.io/gorm"
)

// StatsService backs the admin dashboard and analytics pages.
type StatsService struct {
	db       *gorm.DB
	terms    *TermService
	activity *ActivityService
	now      func() time.Time
}

func NewStatsService(db *gorm.DB, terms *TermService, activity *ActivityService) *StatsService {
	return &StatsService{db: db, terms: terms, activity: activity, now: time.Now}
}

type DailyQuizzes struct {
	Date     string  `json:"date"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

type Dashboard struct {
	TotalTerms     int64             `json:"totalTerms"`
	TotalThemes    int64             `json:"totalThemes"`
	TotalQuizzes   int64             `json:"totalQuizzes"`
	RecentActivity []models.Activity `json:"recentActivity"`
	DailyQuizzes   []DailyQuizzes    `json:"dailyQuizzes"`
}

type ThemeUsage struct {
	Theme    string  `json:"theme"`
	Count    int64   `json:"count"`
	AvgViews float64 `json:"avgViews"`
}

type QuizTypeStats struct {
	QuizType string  `json:"quiz_type"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avgScore"`
	AvgTime  float64 `json:"avgTime"`
}

type Analytics struct {
	PopularTerms  []models.Term   `json:"popularTerms"`
	ThemeStats    []ThemeUsage    `json:"themeStats"`
	QuizTypeStats []QuizTypeStats `json:"quizTypeStats"`
}

func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{}

	if err := db.Model(&models.Term{}).Count(&d.TotalTerms).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Theme{}).Count(&d.TotalThemes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.QuizResult{}).Count(&d.TotalQuizzes).Error; err != nil {
		return nil, err
	}

	recent, err := s.activity.Recent(ctx, 10)
	if err != nil {
		return nil, err
	}
	d.RecentActivity = recent

	daily, err := s.dailyQuizzes(ctx, 7)
	if err != nil {
		return nil, err
	}
	d.DailyQuizzes = daily
	return d, nil
}

// dailyQuizzes groups the last days of results by UTC date. Grouping happens
// here so the query stays portable across SQL dialects.
func (s *StatsService) dailyQuizzes(ctx context.Context, days int) ([]DailyQuizzes, error) {
	since := s.now().UTC().AddDate(0, 0, -days)

	var rows []models.QuizResult
	if err := s.db.WithContext(ctx).
		Select("created_at, percentage").
		Where("created_at >= ?", since).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	type acc struct {
		count int
		sum   int
	}
	byDate := map[string]*acc{}
	for _, r := range rows {
		key := r.CreatedAt.UTC().Format("2006-01-02")
		if byDate[key] == nil {
			byDate[key] = &acc{}
		}
		byDate[key].count++
		byDate[key].sum += r.Percentage
	}

	out := make([]DailyQuizzes, 0, len(byDate))
	for date, a := range byDate {
		out = append(out, DailyQuizzes{
			Date:     date,
			Count:    a.count,
			AvgScore: float64(a.sum) / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *StatsService) Analytics(ctx context.Context) (*Analytics, error) {
	popular, err := s.terms.Popular(ctx, 10)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		PopularTerms:  popular,
		ThemeStats:    []ThemeUsage{},
		QuizTypeStats: []QuizTypeStats{},
	}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Term{}).
		Select("theme, COUNT(*) AS count, AVG(views) AS avg_views").
		Group("theme").
		Order("count DESC").Order("theme").
		Scan(&a.ThemeStats).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.QuizResult{}).
		Select("quiz_type, COUNT(*) AS count, AVG(percentage) AS avg_score, AVG(time_spent) AS avg_time").
		Group("quiz_type").
		Order("quiz_type").
		Scan(&a.QuizTypeStats).Error; err != nil {
		return nil, err
	}
	return a, nil
}
