package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agroterms/middleware"
	"agroterms/services"

	"github.com/gin-gonic/gin"
)

type TermHandler struct {
	termService     *services.TermService
	activityService *services.ActivityService
}

func NewTermHandler(termService *services.TermService, activityService *services.ActivityService) *TermHandler {
	return &TermHandler{
		termService:     termService,
		activityService: activityService,
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

func (h *TermHandler) ListTerms(c *gin.Context) {
	page, err := h.termService.List(c.Request.Context(), services.TermFilter{
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 50),
		Search: c.Query("search"),
		Theme:  c.Query("theme"),
		SortBy: c.DefaultQuery("sortBy", "term_kaa"),
		Order:  c.DefaultQuery("order", "asc"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *TermHandler) GetTerm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	term, err := h.termService.View(c.Request.Context(), id)
	if err != nil {
		termError(c, err)
		return
	}

	c.JSON(http.StatusOK, term)
}

func (h *TermHandler) AddFavorite(c *gin.Context) {
	h.favorite(c, 1)
}

func (h *TermHandler) RemoveFavorite(c *gin.Context) {
	h.favorite(c, -1)
}

func (h *TermHandler) favorite(c *gin.Context, delta int) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	term, err := h.termService.Favorite(c.Request.Context(), id, delta)
	if err != nil {
		termError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": term.ID, "favorites_count": term.FavoritesCount})
}

func (h *TermHandler) PopularTerms(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	terms, err := h.termService.Popular(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, terms)
}

func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req services.TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.AdminUsername(c)
	term, err := h.termService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		termError(c, err)
		return
	}

	h.activityService.Log(c.Request.Context(), services.ActivityEntry{
		Action:     "term_created",
		EntityType: "term",
		EntityID:   strconv.FormatUint(uint64(term.ID), 10),
		User:       actor,
		IPAddress:  c.ClientIP(),
		Details:    gin.H{"term_kaa": term.TermKaa, "term_en": term.TermEn},
	})

	c.JSON(http.StatusCreated, term)
}

func (h *TermHandler) UpdateTerm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	term, err := h.termService.Update(c.Request.Context(), id, &req)
	if err != nil {
		termError(c, err)
		return
	}

	h.activityService.Log(c.Request.Context(), services.ActivityEntry{
		Action:     "term_updated",
		EntityType: "term",
		EntityID:   strconv.FormatUint(uint64(term.ID), 10),
		User:       middleware.AdminUsername(c),
		IPAddress:  c.ClientIP(),
		Details:    gin.H{"term_kaa": term.TermKaa, "term_en": term.TermEn},
	})

	c.JSON(http.StatusOK, term)
}

func (h *TermHandler) DeleteTerm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	term, err := h.termService.Delete(c.Request.Context(), id)
	if err != nil {
		termError(c, err)
		return
	}

	h.activityService.Log(c.Request.Context(), services.ActivityEntry{
		Action:     "term_deleted",
		EntityType: "term",
		EntityID:   strconv.FormatUint(uint64(term.ID), 10),
		User:       middleware.AdminUsername(c),
		IPAddress:  c.ClientIP(),
		Details:    gin.H{"term_kaa": term.TermKaa, "term_en": term.TermEn},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Term deleted successfully"})
}

func termError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTermNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Term not found"})
	case errors.Is(err, services.ErrEmptyField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
