package handlers

import (
	"errors"
	"net/http"

	"agroterms/quiz"
	"agroterms/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService   *services.QuizService
	resultService *services.ResultService
}

func NewQuizHandler(quizService *services.QuizService, resultService *services.ResultService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		resultService: resultService,
	}
}

// sessionID reads the anonymous learner id from the query or the
// X-Session-ID header.
func sessionID(c *gin.Context) string {
	if id := c.Query("session_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Session-ID")
}

func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	var req services.QuizRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	generated, err := h.quizService.Generate(c.Request.Context(), req)
	if err != nil {
		quizError(c, err)
		return
	}

	c.JSON(http.StatusOK, generated)
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = sessionID(c)
	}

	result, err := h.quizService.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		quizError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SaveResult stores an attempt the client scored itself.
func (h *QuizHandler) SaveResult(c *gin.Context) {
	var req quiz.Result
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quizType, err := quiz.ParseType(string(req.QuizType))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.QuizType = quizType
	if req.SessionID == "" {
		req.SessionID = quiz.SessionID(sessionID(c))
	}

	saved, err := h.quizService.RecordClientResult(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *QuizHandler) History(c *gin.Context) {
	results, err := h.resultService.History(c.Request.Context(), sessionID(c), queryInt(c, "limit", 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *QuizHandler) Stats(c *gin.Context) {
	stats, err := h.resultService.Stats(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func quizError(c *gin.Context, err error) {
	var insufficient *quiz.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Not enough terms for quiz",
			"required":  insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.Is(err, quiz.ErrInvalidQuizType), errors.Is(err, quiz.ErrInvalidCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrQuizSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found or expired"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
