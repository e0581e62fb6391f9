package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
)

// JobRepository is the storage the handlers need. *services.JobService
// implements it.
type JobRepository interface {
	ListJobs(ctx context.Context, userID string) ([][]models.Job, error)
	GetJob(ctx context.Context, userID, id string) (*models.Job, error)
	CreateJob(ctx context.Context, userID string, req *dtos.JobCreationRequest) (*models.Job, error)
	EditJob(ctx context.Context, userID, id string, patch dtos.JobPatch) (*models.Job, error)
	DeleteJob(ctx context.Context, userID, id string) error
	UpdateOrder(ctx context.Context, userID string, changes []dtos.OrderChange) error
	Events(ctx context.Context, userID, id string) ([]models.JobEvent, error)
}

type JobExtractor interface {
	ExtractJobDetails(ctx context.Context, rawHTML, link string) (*dtos.JobDraft, error)
}

type JobHandler struct {
	Extractor JobExtractor
	Jobs      JobRepository
	logger    *slog.Logger
}

func NewJobHandler(extractor JobExtractor, jobs JobRepository, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		Extractor: extractor,
		Jobs:      jobs,
		logger:    logger,
	}
}

// RegisterRoutes mounts the job API on r.
func RegisterRoutes(r gin.IRouter, h *JobHandler, defaultUserID string) {
	r.GET("/health", HealthCheck)

	jobs := r.Group("/job", UserScope(defaultUserID))
	{
		jobs.GET("", h.ListJobs)
		jobs.POST("", h.CreateJob)
		jobs.POST("/extract", h.ParseJob)
		jobs.PATCH("/order", h.UpdateOrder)
		jobs.GET("/:id", h.GetJob)
		jobs.GET("/:id/events", h.ListEvents)
		jobs.PATCH("/:id", h.EditJob)
		jobs.DELETE("/:id", h.DeleteJob)
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const userKey = "userID"

// UserScope picks the user every job query is scoped to: the X-User-ID
// header, or defaultUserID when the header is absent.
func UserScope(defaultUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if user == "" {
			user = defaultUserID
		}
		if user == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

// ParseJob is the POST /job/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	draft, err := h.Extractor.ExtractJobDetails(c.Request.Context(), req.RawHTML, req.URL)
	if err != nil {
		h.respondError(c, "AI Extraction failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    draft,
	})
}

// ListJobs answers with one array per status, indexed by the status number.
func (h *JobHandler) ListJobs(c *gin.Context) {
	parts, err := h.Jobs.ListJobs(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, "Failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.Jobs.GetJob(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to load job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) ListEvents(c *gin.Context) {
	events, err := h.Jobs.Events(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to load events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.Jobs.CreateJob(c.Request.Context(), userID(c), &req)
	if err != nil {
		h.respondError(c, "Failed to create job", err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) EditJob(c *gin.Context) {
	var patch dtos.JobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.Jobs.EditJob(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, "Failed to edit job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.Jobs.DeleteJob(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateOrder is the PATCH /job/order endpoint. The whole batch is saved or
// none of it.
func (h *JobHandler) UpdateOrder(c *gin.Context) {
	var req dtos.OrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	if err := h.Jobs.UpdateOrder(c.Request.Context(), userID(c), req.Jobs); err != nil {
		h.respondError(c, "Failed to update order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *JobHandler) respondError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidOrder):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInconsistentOrder):
		status = http.StatusConflict
	case errors.Is(err, services.ErrLLMUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrExtractionFailed):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, slog.String("path", c.FullPath()), slog.Any("error", err))
	}
	c.JSON(status, gin.H{"error": msg + ": " + err.Error()})
}
