package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"diligence-backend/models"
	"diligence-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler handles HTTP requests for activities and report jobs
type ActivityHandler struct {
	activityService *service.ActivityService
	reportService   *service.ReportService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *service.ActivityService, reportService *service.ReportService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		reportService:   reportService,
	}
}

// CreateActivityRequest represents the request body for registering an activity
type CreateActivityRequest struct {
	GuaranteeID       string                 `json:"guarantee_id" binding:"required"`
	ResponsiblePerson string                 `json:"responsible_person"`
	TaxID             string                 `json:"tax_id" binding:"required"`
	Guarantee         *models.Guarantee      `json:"guarantee"`
	Participants      models.ParticipantList `json:"participants"`
}

// CreateActivity handles POST /api/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	serviceReq := service.CreateActivityRequest{
		GuaranteeID:       req.GuaranteeID,
		ResponsiblePerson: req.ResponsiblePerson,
		TaxID:             req.TaxID,
		Guarantee:         req.Guarantee,
		Participants:      req.Participants,
	}

	result, err := h.activityService.CreateActivity(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Activity,
	})
}

// GetActivity handles GET /api/activities/:id
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid activity ID format",
			},
		})
		return
	}

	result, err := h.activityService.GetActivity(c.Request.Context(), service.GetActivityRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Activity not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Activity,
	})
}

// SyncActivities handles POST /api/activities/sync
func (h *ActivityHandler) SyncActivities(c *gin.Context) {
	result, err := h.activityService.SyncFromCRM(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SYNC_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"synced": result.Synced,
		},
	})
}

// GenerateReport handles POST /api/activities/:id/report
func (h *ActivityHandler) GenerateReport(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid activity ID format",
			},
		})
		return
	}

	// Create job (synchronous, fast)
	result, err := h.reportService.GenerateReport(c.Request.Context(), service.GenerateReportRequest{
		ActivityID: id,
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "REPORT_FAILED"
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			status = http.StatusNotFound
			code = "NOT_FOUND"
		case errors.Is(err, service.ErrMissingTaxID):
			status = http.StatusUnprocessableEntity
			code = "MISSING_TAX_ID"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for the pipeline, detached from the
	// request context so client disconnects don't cancel it
	go func() {
		bgCtx := context.Background()
		if err := h.reportService.ProcessReport(bgCtx, result.JobID); err != nil {
			// Stored in job.ErrorMessage; clients observe it by polling
			log.Printf("Report job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Report job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *ActivityHandler) GetJobStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.reportService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Report job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}
