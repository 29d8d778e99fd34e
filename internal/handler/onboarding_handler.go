package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"walksocr/internal/export"
	"walksocr/internal/service"
)

const defaultExportLimit = 500

// OnboardingHandler handles onboarding task endpoints.
type OnboardingHandler struct {
	svc service.OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(svc service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

// Create handles POST /api/v1/onboarding
func (h *OnboardingHandler) Create(c *gin.Context) {
	var input service.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
		return
	}

	task, err := h.svc.CreateTask(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, task)
}

// GetByID handles GET /api/v1/onboarding/:id
func (h *OnboardingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_TASK_ID", "task id must be a UUID")
		return
	}

	task, err := h.svc.GetTask(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, task)
}

// Export handles GET /api/v1/onboarding/export
// Streams completed task profiles as an Excel workbook.
func (h *OnboardingHandler) Export(c *gin.Context) {
	limit := defaultExportLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	tasks, err := h.svc.ListCompleted(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	w, err := export.NewWriter()
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = w.Close() }()

	if err := w.WriteTasks(tasks); err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("onboarding_profiles_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if _, err := w.WriteTo(c.Writer); err != nil {
		// Headers already sent; the client sees a truncated download.
		_ = c.Error(err)
	}
}
