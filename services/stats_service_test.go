package services

import (
	"context"
	"testing"
)

func TestDashboardCountsEverything(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	stats := NewStatsService(s.db, s.terms, s.activity)

	s.seedTerm(t, "Biyday", "Wheat", "Crops")
	s.seedTerm(t, "Suw", "Water", "Irrigation")
	s.results.Record(ctx, scoredResult("a", "Crops", []string{"Wheat", "Barley"}))
	s.results.Record(ctx, scoredResult("b", "Crops", nil))

	d, err := stats.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalTerms != 2 || d.TotalThemes != 2 || d.TotalQuizzes != 2 {
		t.Fatalf("dashboard totals = %d/%d/%d", d.TotalTerms, d.TotalThemes, d.TotalQuizzes)
	}
	if len(d.RecentActivity) != 2 || d.RecentActivity[0].Action != "quiz_completed" {
		t.Fatalf("recent activity = %+v", d.RecentActivity)
	}
	if len(d.DailyQuizzes) != 1 || d.DailyQuizzes[0].Count != 2 || d.DailyQuizzes[0].AvgScore != 50 {
		t.Fatalf("daily = %+v", d.DailyQuizzes)
	}
}

func TestAnalyticsGroupsByThemeAndType(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	stats := NewStatsService(s.db, s.terms, s.activity)

	wheat := s.seedTerm(t, "Biyday", "Wheat", "Crops")
	s.seedTerm(t, "Arpa", "Barley", "Crops")
	s.seedTerm(t, "Suw", "Water", "Irrigation")
	s.terms.View(ctx, wheat.ID)
	s.results.Record(ctx, scoredResult("a", "Crops", []string{"Wheat", "Barley"}))

	a, err := stats.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if len(a.PopularTerms) != 3 || a.PopularTerms[0].TermKaa != "Biyday" {
		t.Fatalf("popular = %+v", a.PopularTerms)
	}
	if len(a.ThemeStats) != 2 || a.ThemeStats[0].Theme != "Crops" || a.ThemeStats[0].Count != 2 || a.ThemeStats[0].AvgViews != 0.5 {
		t.Fatalf("theme stats = %+v", a.ThemeStats)
	}
	if len(a.QuizTypeStats) != 1 || a.QuizTypeStats[0].AvgScore != 100 {
		t.Fatalf("quiz type stats = %+v", a.QuizTypeStats)
	}
}
