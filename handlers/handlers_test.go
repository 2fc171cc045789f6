package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"agroterms/models"
	"agroterms/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memorySessions struct {
	sessions map[string]*services.QuizSession
}

func (m *memorySessions) Save(_ context.Context, id string, s *services.QuizSession) error {
	m.sessions[id] = s
	return nil
}

func (m *memorySessions) Take(_ context.Context, id string) (*services.QuizSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, services.ErrQuizSessionNotFound
	}
	delete(m.sessions, id)
	return s, nil
}

type testApp struct {
	router   *gin.Engine
	db       *gorm.DB
	terms    *services.TermService
	sessions *memorySessions
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	activity := services.NewActivityService(db, nil)
	themes := services.NewThemeService(db)
	terms := services.NewTermService(db, themes)
	results := services.NewResultService(db, activity)
	sessions := &memorySessions{sessions: map[string]*services.QuizSession{}}
	quizzes := services.NewQuizService(terms, sessions, results, rand.New(rand.NewSource(3)))
	imports := services.NewImportService(terms, themes, activity)
	stats := services.NewStatsService(db, terms, activity)

	termHandler := NewTermHandler(terms, activity)
	themeHandler := NewThemeHandler(themes, activity)
	quizHandler := NewQuizHandler(quizzes, results)
	adminHandler := NewAdminHandler(imports, stats, 1<<20)

	r := gin.New()
	r.GET("/terms", termHandler.ListTerms)
	r.GET("/terms/:id", termHandler.GetTerm)
	r.POST("/terms", termHandler.CreateTerm)
	r.DELETE("/themes/:id", themeHandler.DeleteTheme)
	r.PUT("/themes/:id", themeHandler.UpdateTheme)
	r.GET("/quiz", quizHandler.GenerateQuiz)
	r.POST("/quiz/:id/submit", quizHandler.SubmitQuiz)
	r.GET("/quiz/history", quizHandler.History)
	r.POST("/import", adminHandler.ImportTerms)
	r.GET("/export", adminHandler.ExportTerms)

	return &testApp{router: r, db: db, terms: terms, sessions: sessions}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) seed(t *testing.T, pairs ...string) {
	t.Helper()
	for i := 0; i+1 < len(pairs); i += 2 {
		_, err := a.terms.Create(context.Background(), "tester", &services.TermRequest{TermKaa: pairs[i], TermEn: pairs[i+1], Theme: "Crops"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestGenerateQuizNotEnoughTerms(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "Biyday", "Wheat", "Arpa", "Barley")

	w := app.do(t, httptest.NewRequest(http.MethodGet, "/quiz?count=5", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	var body struct {
		Error     string `json:"error"`
		Required  int    `json:"required"`
		Available int    `json:"available"`
	}
	decode(t, w, &body)
	if body.Error != "Not enough terms for quiz" || body.Required != 5 || body.Available != 2 {
		t.Fatalf("body = %+v", body)
	}
}

func TestGenerateQuizRejectsUnknownType(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, httptest.NewRequest(http.MethodGet, "/quiz?type=essay", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "Biyday", "Wheat", "Arpa", "Barley", "Mákke", "Corn", "Shaly", "Rice")

	w := app.do(t, httptest.NewRequest(http.MethodGet, "/quiz?type=translation_src_to_tgt&count=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("generate code = %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "correct_answer") {
		t.Fatal("generated quiz leaks correct answers")
	}
	var generated services.GeneratedQuiz
	decode(t, w, &generated)

	cached := app.sessions.sessions[generated.QuizID]
	body, _ := json.Marshal(services.SubmitRequest{
		Answers:   []string{cached.Questions[0].CorrectAnswer, cached.Questions[1].CorrectAnswer},
		TimeSpent: 12,
	})
	req := httptest.NewRequest(http.MethodPost, "/quiz/"+generated.QuizID+"/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "learner-9")
	w = app.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("submit code = %d: %s", w.Code, w.Body.String())
	}
	var result services.SubmittedQuiz
	decode(t, w, &result)
	if result.Percentage != 100 || result.TimeSpent != 12 || result.SessionID != "learner-9" {
		t.Fatalf("result = %+v", result)
	}

	w = app.do(t, httptest.NewRequest(http.MethodGet, "/quiz/history?session_id=learner-9", nil))
	var history []models.QuizResult
	decode(t, w, &history)
	if len(history) != 1 || history[0].Percentage != 100 {
		t.Fatalf("history = %+v", history)
	}

	w = app.do(t, httptest.NewRequest(http.MethodPost, "/quiz/"+generated.QuizID+"/submit", bytes.NewReader(body)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("resubmit code = %d, want 404", w.Code)
	}
}

func TestTermEndpoints(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "Biyday", "Wheat", "Arpa", "Barley")

	w := app.do(t, httptest.NewRequest(http.MethodGet, "/terms?search=barley", nil))
	var page services.TermPage
	decode(t, w, &page)
	if page.Total != 1 || page.Data[0].TermKaa != "Arpa" {
		t.Fatalf("page = %+v", page)
	}

	if w := app.do(t, httptest.NewRequest(http.MethodGet, "/terms/999", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("missing term code = %d", w.Code)
	}
	if w := app.do(t, httptest.NewRequest(http.MethodGet, "/terms/abc", nil)); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id code = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/terms", strings.NewReader(`{"term_kaa":"Suw","term_en":"Water"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := app.do(t, req); w.Code != http.StatusBadRequest {
		t.Fatalf("create without theme code = %d", w.Code)
	}
}

func TestDeleteThemeInUse(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "Biyday", "Wheat")
	var theme models.Theme
	app.db.Where("name_en = ?", "Crops").First(&theme)

	w := app.do(t, httptest.NewRequest(http.MethodDelete, "/themes/"+strconv.FormatUint(uint64(theme.ID), 10), nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Cannot delete theme with 1 terms") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestImportAndExport(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "terms.csv")
	part.Write([]byte("term_kaa,term_en,theme\nSuw,Water,Irrigation\nAryq,Canal,Irrigation\nX,Y,\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := app.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import code = %d: %s", w.Code, w.Body.String())
	}
	var report struct {
		Imported int `json:"imported"`
		Failed   int `json:"failed"`
	}
	decode(t, w, &report)
	if report.Imported != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}

	w = app.do(t, httptest.NewRequest(http.MethodGet, "/export", nil))
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("export code = %d type = %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Aryq,Canal,No definition available,,Irrigation") {
		t.Fatalf("export body = %s", w.Body.String())
	}
}

func TestImportWithoutFile(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, httptest.NewRequest(http.MethodPost, "/import", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}

func TestUpdateThemeBlankName(t *testing.T) {
	app := newTestApp(t)
	app.seed(t, "Biyday", "Wheat")
	var theme models.Theme
	app.db.Where("name_en = ?", "Crops").First(&theme)

	req := httptest.NewRequest(http.MethodPut, "/themes/"+strconv.FormatUint(uint64(theme.ID), 10),
		strings.NewReader(`{"name_en":"   ","name_kaa":"Egin"}`))
	req.Header.Set("Content-Type", "application/json")
	w := app.do(t, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400: %s", w.Code, w.Body.String())
	}

	var term models.Term
	app.db.First(&term)
	if term.Theme != "Crops" {
		t.Fatalf("term theme = %q, want Crops", term.Theme)
	}
}
