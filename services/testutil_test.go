package services

import (
	"context"
	"testing"

	"agroterms/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database. A single connection keeps
// every query on the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testServices struct {
	db       *gorm.DB
	activity *ActivityService
	themes   *ThemeService
	terms    *TermService
	results  *ResultService
}

func newTestServices(t *testing.T) *testServices {
	db := newTestDB(t)
	activity := NewActivityService(db, nil)
	themes := NewThemeService(db)
	return &testServices{
		db:       db,
		activity: activity,
		themes:   themes,
		terms:    NewTermService(db, themes),
		results:  NewResultService(db, activity),
	}
}

func (s *testServices) seedTerm(t *testing.T, kaa, en, theme string) *models.Term {
	t.Helper()
	term, err := s.terms.Create(context.Background(), "tester", &TermRequest{TermKaa: kaa, TermEn: en, Theme: theme})
	if err != nil {
		t.Fatalf("create term %s: %v", kaa, err)
	}
	return term
}

func (s *testServices) theme(t *testing.T, name string) models.Theme {
	t.Helper()
	var theme models.Theme
	if err := s.db.Where("name_en = ?", name).First(&theme).Error; err != nil {
		t.Fatalf("load theme %s: %v", name, err)
	}
	return theme
}
