package controller

import (
	"context"
	"errors"
	"fieldops-client/cache"
	"fieldops-client/gateway"
	"fieldops-client/middelware"
	"fieldops-client/models"
	"fieldops-client/repository"
	"fieldops-client/services"
	"fieldops-client/utils"
	"fieldops-client/worker"
	"net/http"
	"strings"
	"time"

	"fieldops-client/utils/logger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	Job        *JobController
	Inspection *InspectionController
	SignOff    *SignOffController
	Sync       *worker.Service

	logger logger.Logger
}

func NewController(ctx context.Context, cfg *models.Config, log logger.Logger) *Controller {
	technicianID, err := utils.TechnicianID(cfg)
	if err != nil {
		log.Fatalf("Failed to resolve technician identity: %v", err)
	}

	remote := gateway.NewClient(cfg, log)
	repo := repository.NewJobRepository(remote, technicianID, log)
	snapshots := cache.NewSnapshotCache(cfg.SnapshotFilePath, nil, log)
	state := services.NewTechnicianState()
	location := services.NewLocationTracker()

	engine := services.NewValidationEngine()
	capture := services.NewCaptureManager(
		services.NewSimulatedCamera(),
		time.Duration(cfg.VideoMaxSeconds)*time.Second,
		log,
	)
	inspections := services.NewInspectionService(engine, capture, log)

	signoff := services.NewSignOffAggregator(state, repo, inspections, capture, technicianID, log)
	machine := services.NewJobStateMachine(state, repo, location, signoff, technicianID, log)
	signoff.AttachStateMachine(machine)

	syncService, err := worker.NewService(cfg, repo, state, snapshots, technicianID, log)
	if err != nil {
		log.Fatalf("Failed to initialize sync service: %v", err)
	}

	return &Controller{
		Job:        NewJobController(ctx, state, location, machine, syncService, technicianID, log),
		Inspection: NewInspectionController(ctx, inspections, log),
		SignOff:    NewSignOffController(ctx, signoff, log),
		Sync:       syncService,
		logger:     log,
	}
}

func (c *Controller) RegisterRoutes(ctx context.Context, config *models.Config, r *gin.Engine, basePath string) error {
	logging := middelware.NewLoggingMiddleware(c.logger)
	cors := middelware.NewCORSMiddleware(config)

	r.Use(logging.RequestLogger())
	r.Use(logging.Recovery())
	r.Use(cors.CORS())

	v1 := r.Group(basePath)

	// Health check endpoint
	v1.GET("/health", func(gc *gin.Context) {
		gc.JSON(200, gin.H{
			"status":  "healthy",
			"version": config.AppVersion,
			"service": config.AppName,
			"sync":    c.Sync.GetHealthStatus(),
		})
	})

	// Job lifecycle
	v1.GET("/jobs", c.Job.GetJobs)
	v1.GET("/jobs/stats", c.Job.GetStats)
	v1.GET("/jobs/:id", c.Job.GetJob)
	v1.POST("/jobs/:id/accept", c.Job.Accept)
	v1.POST("/jobs/:id/start", c.Job.Start)
	v1.POST("/jobs/:id/pause", c.Job.Pause)
	v1.POST("/jobs/:id/complete", c.Job.Complete)

	// Device context
	v1.GET("/clock", c.Job.GetClock)
	v1.POST("/clock/in", c.Job.ClockIn)
	v1.PUT("/location", c.Job.UpdateLocation)
	v1.DELETE("/location", c.Job.ClearLocation)

	// Inspection checklists
	v1.POST("/inspections", c.Inspection.Open)
	v1.GET("/inspections/:id", c.Inspection.Get)
	v1.GET("/inspections/:id/completion", c.Inspection.Completion)
	v1.POST("/inspections/:id/location-image", c.Inspection.AddLocationImage)
	v1.PUT("/inspections/:id/serial", c.Inspection.SetSerial)
	v1.PUT("/inspections/:id/expiry", c.Inspection.SetExpiry)
	v1.GET("/inspections/:id/items/:itemID", c.Inspection.ItemState)
	v1.POST("/inspections/:id/items/:itemID/images", c.Inspection.AddItemImage)
	v1.POST("/inspections/:id/items/:itemID/video", c.Inspection.RecordItemVideo)
	v1.PUT("/inspections/:id/items/:itemID/condition", c.Inspection.SetItemCondition)
	v1.PUT("/inspections/:id/items/:itemID/expiry", c.Inspection.SetItemExpiry)
	v1.PUT("/inspections/:id/items/:itemID/serial", c.Inspection.SetItemSerial)
	v1.POST("/inspections/:id/items/:itemID/resolve", c.Inspection.ResolveItem)
	v1.POST("/inspections/:id/items/:itemID/reset", c.Inspection.ResetItem)

	// Sign-off
	v1.POST("/jobs/:id/signoff", c.SignOff.Open)
	v1.GET("/jobs/:id/signoff", c.SignOff.Get)
	v1.GET("/jobs/:id/signoff/gates", c.SignOff.Gates)
	v1.PUT("/jobs/:id/signoff/signature", c.SignOff.SetSignature)
	v1.PUT("/jobs/:id/signoff/terms", c.SignOff.SetTerms)
	v1.PUT("/jobs/:id/signoff/udf", c.SignOff.SetUDF)
	v1.POST("/jobs/:id/signoff/stock", c.SignOff.SetStock)
	v1.POST("/jobs/:id/signoff/gallery-image", c.SignOff.AddGalleryImage)
	v1.POST("/jobs/:id/signoff/save", c.SignOff.Save)
	v1.POST("/jobs/:id/signoff/complete", c.SignOff.Complete)

	// Create HTTP server
	srv := &http.Server{
		Addr:    config.AppHost + ":" + config.AppPort,
		Handler: r,
	}
	// Start server
	c.logger.Infof("Starting client surface on %s:%s", config.AppHost, config.AppPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// respondError converts the error taxonomy into the response envelope. Every
// failure a handler sees lands here; nothing propagates past the surface.
func respondError(gc *gin.Context, log logger.Logger, err error) {
	var illegal *models.IllegalTransitionError
	var precondition *models.PreconditionMissingError
	var unmet *models.ValidationUnmetError
	var rejection *models.RemoteRejectionError
	var syncFailure *models.SyncFailureError

	switch {
	case errors.Is(err, models.ErrJobNotFound):
		gc.JSON(http.StatusNotFound, models.NewErrorResponse(http.StatusNotFound, "Job not found", &models.APIError{
			Type:    "NotFound",
			Details: err.Error(),
		}))
	case errors.Is(err, models.ErrNotJobOwner):
		gc.JSON(http.StatusForbidden, models.NewErrorResponse(http.StatusForbidden, "Job belongs to another technician", &models.APIError{
			Type:    "Ownership",
			Details: err.Error(),
		}))
	case errors.As(err, &illegal):
		gc.JSON(http.StatusConflict, models.NewErrorResponse(http.StatusConflict, "Action not allowed in the job's current status", &models.APIError{
			Type:    "IllegalTransition",
			Details: err.Error(),
		}))
	case errors.As(err, &precondition):
		gc.JSON(http.StatusPreconditionFailed, models.NewErrorResponse(http.StatusPreconditionFailed, "A required capability is missing", &models.APIError{
			Type:    "PreconditionMissing",
			Details: err.Error(),
		}))
	case errors.As(err, &unmet):
		gc.JSON(http.StatusConflict, models.NewErrorResponse(http.StatusConflict, "Some conditions are not met yet", &models.APIError{
			Type:    "ValidationUnmet",
			Details: err.Error(),
			Missing: unmet.Missing,
		}))
	case errors.As(err, &rejection):
		gc.JSON(http.StatusBadGateway, models.NewErrorResponse(http.StatusBadGateway, "The remote source rejected the request", &models.APIError{
			Type:    "RemoteRejection",
			Details: err.Error(),
		}))
	case errors.As(err, &syncFailure):
		gc.JSON(http.StatusServiceUnavailable, models.NewErrorResponse(http.StatusServiceUnavailable, "The remote source is unreachable", &models.APIError{
			Type:    "SyncFailure",
			Details: err.Error(),
		}))
	case strings.Contains(err.Error(), "not found"):
		gc.JSON(http.StatusNotFound, models.NewErrorResponse(http.StatusNotFound, "Not found", &models.APIError{
			Type:    "NotFound",
			Details: err.Error(),
		}))
	default:
		log.Errorf("Unclassified request error: %v", err)
		gc.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Request failed", &models.APIError{
			Type:    "RequestError",
			Details: err.Error(),
		}))
	}
}
