package services

import (
	"context"
	"testing"

	"agroterms/models"
	"agroterms/quiz"
)

func scoredResult(session string, theme string, answers []string) quiz.Result {
	questions := []quiz.Question{
		{ID: 1, Question: `Translate to English: "Biyday"`, CorrectAnswer: "Wheat"},
		{ID: 2, Question: `Translate to English: "Arpa"`, CorrectAnswer: "Barley"},
	}
	return quiz.Score(questions, answers, 20, quiz.SessionID(session), quiz.TypeSrcToTgt, theme)
}

func TestRecordStoresDetailsInOrder(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	id, err := s.results.Record(ctx, scoredResult("learner", "Crops", []string{"Wheat", "Corn"}))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	history, err := s.results.History(ctx, "learner", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].ID != id {
		t.Fatalf("history = %+v", history)
	}
	got := history[0]
	if got.Percentage != 50 || got.CorrectAnswers != 1 || got.IncorrectAnswers != 1 {
		t.Fatalf("stored result = %+v", got)
	}
	if len(got.Details) != 2 || got.Details[0].CorrectAnswer != "Wheat" || got.Details[1].IsCorrect {
		t.Fatalf("details = %+v", got.Details)
	}

	var activity models.Activity
	if err := s.db.Where("action = ?", "quiz_completed").First(&activity).Error; err != nil {
		t.Fatalf("quiz_completed activity missing: %v", err)
	}
}

func TestRecordDefaultsTheme(t *testing.T) {
	s := newTestServices(t)
	if _, err := s.results.Record(context.Background(), scoredResult("learner", "", nil)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	var stored models.QuizResult
	s.db.First(&stored)
	if stored.Theme != "all" {
		t.Fatalf("Theme = %q, want all", stored.Theme)
	}
}

func TestHistoryWithoutSessionIsEmpty(t *testing.T) {
	s := newTestServices(t)
	s.results.Record(context.Background(), scoredResult("learner", "Crops", nil))

	history, err := s.results.History(context.Background(), "", 10)
	if err != nil || len(history) != 0 {
		t.Fatalf("History = %v, %v", history, err)
	}
}

func TestStatsAggregatesPerSession(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	s.results.Record(ctx, scoredResult("a", "Crops", []string{"Wheat", "Barley"}))
	s.results.Record(ctx, scoredResult("a", "Soil", []string{"Wheat"}))
	s.results.Record(ctx, scoredResult("b", "Crops", nil))

	stats, err := s.results.Stats(ctx, "a")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	o := stats.Overall
	if o.TotalQuizzes != 2 || o.TotalQuestions != 4 || o.TotalCorrect != 3 || o.AverageScore != 75 || o.AverageTime != 20 {
		t.Fatalf("overall = %+v", o)
	}
	if len(stats.ByTheme) != 2 || stats.ByTheme[0].Theme != "Crops" || stats.ByTheme[0].AverageScore != 100 {
		t.Fatalf("by theme = %+v", stats.ByTheme)
	}

	everyone, err := s.results.Stats(ctx, "")
	if err != nil {
		t.Fatalf("Stats all: %v", err)
	}
	if everyone.Overall.TotalQuizzes != 3 {
		t.Fatalf("total quizzes = %d, want 3", everyone.Overall.TotalQuizzes)
	}
}

func TestStatsWithoutResults(t *testing.T) {
	s := newTestServices(t)
	stats, err := s.results.Stats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Overall.TotalQuizzes != 0 || stats.Overall.AverageScore != 0 || len(stats.ByTheme) != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
