package controller

import (
	"context"
	"fieldops-client/models"
	"fieldops-client/services"
	"fieldops-client/worker"
	"net/http"

	"fieldops-client/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type JobController struct {
	ctx          context.Context
	state        *services.TechnicianState
	location     *services.LocationTracker
	machine      services.JobStateMachineInterface
	sync         *worker.Service
	technicianID string
	logger       logger.Logger
	validator    *validator.Validate
}

func NewJobController(
	ctx context.Context,
	state *services.TechnicianState,
	location *services.LocationTracker,
	machine services.JobStateMachineInterface,
	sync *worker.Service,
	technicianID string,
	log logger.Logger,
) *JobController {
	return &JobController{
		ctx:          ctx,
		state:        state,
		location:     location,
		machine:      machine,
		sync:         sync,
		technicianID: technicianID,
		logger:       log,
		validator:    validator.New(),
	}
}

// GetJobs handles GET /jobs?view=active|completed|all. The default is the
// technician's working view; completed is the "tech finished" view.
func (h *JobController) GetJobs(c *gin.Context) {
	var jobs []*models.Job
	view := c.DefaultQuery("view", "active")
	switch view {
	case "active":
		jobs = h.state.ActiveJobs()
	case "completed":
		jobs = h.state.CompletedJobs()
	case "all":
		jobs = h.state.AllJobs()
	default:
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request", &models.APIError{
			Type:    "ValidationError",
			Details: "view must be one of: active, completed, all",
		}))
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Jobs retrieved successfully", gin.H{
		"jobs":  jobs,
		"count": len(jobs),
		"view":  view,
	}))
}

// GetJob handles GET /jobs/:id
func (h *JobController) GetJob(c *gin.Context) {
	job, ok := h.state.Job(c.Param("id"))
	if !ok {
		respondError(c, h.logger, models.ErrJobNotFound)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Job retrieved successfully", job))
}

// GetStats handles GET /jobs/stats. Counts may come from the snapshot cache
// when the remote source is unreachable; capturedAt tells the caller how old
// they are.
func (h *JobController) GetStats(c *gin.Context) {
	stats, at := h.state.Stats()
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Job stats retrieved successfully", gin.H{
		"stats":      stats,
		"capturedAt": at,
	}))
}

// GetClock handles GET /clock
func (h *JobController) GetClock(c *gin.Context) {
	record, at := h.state.Clock()
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Clock record retrieved successfully", gin.H{
		"clock":      record,
		"capturedAt": at,
	}))
}

// ClockIn handles POST /clock/in. The instant is cached locally so hours can
// be estimated while the remote clock endpoint is unreachable.
func (h *JobController) ClockIn(c *gin.Context) {
	if err := h.sync.MarkClockIn(); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Clock-in recorded", nil))
}

// UpdateLocation handles PUT /location
func (h *JobController) UpdateLocation(c *gin.Context) {
	var loc models.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request", &models.APIError{
			Type:    "ValidationError",
			Details: err.Error(),
		}))
		return
	}
	if err := h.validator.Struct(&loc); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Validation failed", &models.APIError{
			Type:    "ValidationError",
			Details: err.Error(),
		}))
		return
	}

	h.location.Update(loc)
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Location updated", nil))
}

// ClearLocation handles DELETE /location (device lost its fix).
func (h *JobController) ClearLocation(c *gin.Context) {
	h.location.ClearLocation()
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Location cleared", nil))
}

// Accept handles POST /jobs/:id/accept
func (h *JobController) Accept(c *gin.Context) {
	h.attempt(c, models.ActionAccept)
}

// Start handles POST /jobs/:id/start
func (h *JobController) Start(c *gin.Context) {
	h.attempt(c, models.ActionStart)
}

// Pause handles POST /jobs/:id/pause
func (h *JobController) Pause(c *gin.Context) {
	h.attempt(c, models.ActionPause)
}

// Complete handles POST /jobs/:id/complete
func (h *JobController) Complete(c *gin.Context) {
	h.attempt(c, models.ActionComplete)
}

func (h *JobController) attempt(c *gin.Context, action models.TransitionAction) {
	var req models.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Failed to bind JSON:", err)
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request", &models.APIError{
				Type:    "ValidationError",
				Details: err.Error(),
			}))
			return
		}
	}

	job, err := h.machine.AttemptTransition(h.ctx, c.Param("id"), action, h.technicianID, req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Job updated successfully", job))
}
