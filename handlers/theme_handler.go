package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agroterms/middleware"
	"agroterms/services"

	"github.com/gin-gonic/gin"
)

type ThemeHandler struct {
	themeService    *services.ThemeService
	activityService *services.ActivityService
}

func NewThemeHandler(themeService *services.ThemeService, activityService *services.ActivityService) *ThemeHandler {
	return &ThemeHandler{
		themeService:    themeService,
		activityService: activityService,
	}
}

func (h *ThemeHandler) ListThemes(c *gin.Context) {
	themes, err := h.themeService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, themes)
}

func (h *ThemeHandler) CreateTheme(c *gin.Context) {
	var req services.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := h.themeService.Create(c.Request.Context(), &req)
	if err != nil {
		themeError(c, err)
		return
	}

	h.log(c, "theme_created", theme.ID, theme.NameEn)
	c.JSON(http.StatusCreated, theme)
}

func (h *ThemeHandler) UpdateTheme(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := h.themeService.Update(c.Request.Context(), id, &req)
	if err != nil {
		themeError(c, err)
		return
	}

	h.log(c, "theme_updated", theme.ID, theme.NameEn)
	c.JSON(http.StatusOK, theme)
}

func (h *ThemeHandler) DeleteTheme(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	theme, err := h.themeService.Delete(c.Request.Context(), id)
	if err != nil {
		themeError(c, err)
		return
	}

	h.log(c, "theme_deleted", theme.ID, theme.NameEn)
	c.JSON(http.StatusOK, gin.H{"message": "Theme deleted successfully"})
}

// RecountThemes runs the terms_count reconciliation on demand.
func (h *ThemeHandler) RecountThemes(c *gin.Context) {
	if err := h.themeService.RecomputeThemeCounts(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	themes, err := h.themeService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, themes)
}

func (h *ThemeHandler) log(c *gin.Context, action string, id uint, name string) {
	h.activityService.Log(c.Request.Context(), services.ActivityEntry{
		Action:     action,
		EntityType: "theme",
		EntityID:   strconv.FormatUint(uint64(id), 10),
		User:       middleware.AdminUsername(c),
		IPAddress:  c.ClientIP(),
		Details:    gin.H{"name_en": name},
	})
}

func themeError(c *gin.Context, err error) {
	var inUse *services.ThemeInUseError
	switch {
	case errors.As(err, &inUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": inUse.Error()})
	case errors.Is(err, services.ErrThemeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Theme not found"})
	case errors.Is(err, services.ErrEmptyThemeName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrThemeExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Theme already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
