package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agroterms/importer"
	"agroterms/middleware"
	"agroterms/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	importService *services.ImportService
	statsService  *services.StatsService
	maxUploadSize int64
}

func NewAdminHandler(importService *services.ImportService, statsService *services.StatsService, maxUploadSize int64) *AdminHandler {
	return &AdminHandler{
		importService: importService,
		statsService:  statsService,
		maxUploadSize: maxUploadSize,
	}
}

func (h *AdminHandler) ImportTerms(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	report, err := h.importService.Import(c.Request.Context(), file, middleware.AdminUsername(c), c.ClientIP())
	if err != nil {
		if errors.Is(err, importer.ErrMissingColumns) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Import completed: %d imported, %d failed", report.Imported, report.Failed),
		"imported": report.Imported,
		"failed":   report.Failed,
		"errors":   report.Errors,
	})
}

func (h *AdminHandler) ExportTerms(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.importService.Export(c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("terms_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	analytics, err := h.statsService.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analytics)
}
