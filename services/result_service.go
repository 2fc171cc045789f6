package services

import (
	"context"
	"fmt"

	"agroterms/models"
	"agroterms/quiz"

	"gorm.io/gorm"
)

// ResultService persists scored attempts and aggregates them per session.
type ResultService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewResultService(db *gorm.DB, activity *ActivityService) *ResultService {
	return &ResultService{db: db, activity: activity}
}

type OverallStats struct {
	TotalQuizzes   int64   `json:"totalQuizzes"`
	AverageScore   float64 `json:"averageScore"`
	TotalQuestions int64   `json:"totalQuestions"`
	TotalCorrect   int64   `json:"totalCorrect"`
	AverageTime    float64 `json:"averageTime"`
}

type ThemeScore struct {
	Theme        string  `json:"theme"`
	Count        int64   `json:"count"`
	AverageScore float64 `json:"averageScore"`
}

type QuizStats struct {
	Overall OverallStats `json:"overall"`
	ByTheme []ThemeScore `json:"byTheme"`
}

// Record stores a scored attempt and returns its id.
func (s *ResultService) Record(ctx context.Context, result quiz.Result) (uint, error) {
	record := models.QuizResult{
		SessionID:        string(result.SessionID),
		QuizType:         string(result.QuizType),
		Theme:            result.Theme,
		TotalQuestions:   result.TotalQuestions,
		CorrectAnswers:   result.CorrectAnswers,
		IncorrectAnswers: result.IncorrectAnswers,
		Percentage:       result.Percentage,
		TimeSpent:        result.TimeSpent,
	}
	if record.Theme == "" {
		record.Theme = "all"
	}
	for i, d := range result.Details {
		record.Details = append(record.Details, models.QuizResultDetail{
			Position:      i,
			Question:      d.Question,
			UserAnswer:    d.UserAnswer,
			CorrectAnswer: d.CorrectAnswer,
			IsCorrect:     d.IsCorrect,
		})
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, err
	}

	if s.activity != nil {
		s.activity.Log(ctx, ActivityEntry{
			Action:     "quiz_completed",
			EntityType: "quiz",
			EntityID:   fmt.Sprint(record.ID),
			User:       record.SessionID,
			Details: map[string]interface{}{
				"quiz_type":  record.QuizType,
				"theme":      record.Theme,
				"percentage": record.Percentage,
			},
		})
	}
	return record.ID, nil
}

// History lists a session's attempts, newest first.
func (s *ResultService) History(ctx context.Context, sessionID string, limit int) ([]models.QuizResult, error) {
	if sessionID == "" {
		return []models.QuizResult{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var results []models.QuizResult
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// Stats aggregates attempts of one session, or of everyone when sessionID is
// empty.
func (s *ResultService) Stats(ctx context.Context, sessionID string) (*QuizStats, error) {
	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.QuizResult{})
		if sessionID != "" {
			q = q.Where("session_id = ?", sessionID)
		}
		return q
	}

	stats := &QuizStats{ByTheme: []ThemeScore{}}
	if err := scoped().Select(
		"COUNT(*) AS total_quizzes, " +
			"COALESCE(AVG(percentage), 0) AS average_score, " +
			"COALESCE(SUM(total_questions), 0) AS total_questions, " +
			"COALESCE(SUM(correct_answers), 0) AS total_correct, " +
			"COALESCE(AVG(time_spent), 0) AS average_time",
	).Scan(&stats.Overall).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Select("theme, COUNT(*) AS count, AVG(percentage) AS average_score").
		Group("theme").
		Order("theme").
		Scan(&stats.ByTheme).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
