package controller

import (
	"context"
	"fieldops-client/models"
	"fieldops-client/services"
	"net/http"

	"fieldops-client/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type InspectionController struct {
	ctx       context.Context
	service   services.InspectionServiceInterface
	logger    logger.Logger
	validator *validator.Validate
}

func NewInspectionController(ctx context.Context, service services.InspectionServiceInterface, log logger.Logger) *InspectionController {
	return &InspectionController{
		ctx:       ctx,
		service:   service,
		logger:    log,
		validator: validator.New(),
	}
}

func (h *InspectionController) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request", &models.APIError{
			Type:    "ValidationError",
			Details: err.Error(),
		}))
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Validation failed", &models.APIError{
			Type:    "ValidationError",
			Details: err.Error(),
		}))
		return false
	}
	return true
}

// Open handles POST /inspections
func (h *InspectionController) Open(c *gin.Context) {
	var req models.OpenChecklistRequest
	if !h.bind(c, &req) {
		return
	}

	checklist, err := h.service.OpenChecklist(req.JobID, req.Template)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSuccessResponse(http.StatusCreated, "Checklist opened successfully", checklist))
}

// Get handles GET /inspections/:id
func (h *InspectionController) Get(c *gin.Context) {
	checklist, err := h.service.Checklist(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Checklist retrieved successfully", checklist))
}

// Completion handles GET /inspections/:id/completion
func (h *InspectionController) Completion(c *gin.Context) {
	completion, err := h.service.Completion(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Completion state retrieved successfully", completion))
}

// AddLocationImage handles POST /inspections/:id/location-image
func (h *InspectionController) AddLocationImage(c *gin.Context) {
	img, err := h.service.AddLocationImage(h.ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewSuccessResponse(http.StatusCreated, "Location image captured", img))
}

// SetSerial handles PUT /inspections/:id/serial
func (h *InspectionController) SetSerial(c *gin.Context) {
	var req models.SerialRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetChecklistSerial(c.Param("id"), req.SerialNumber); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Serial number recorded", nil))
}

// SetExpiry handles PUT /inspections/:id/expiry
func (h *InspectionController) SetExpiry(c *gin.Context) {
	var req models.ExpiryRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetChecklistExpiry(c.Param("id"), req.ExpiryDate); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Expiry date recorded", nil))
}

// ItemState handles GET /inspections/:id/items/:itemID
func (h *InspectionController) ItemState(c *gin.Context) {
	progress, err := h.service.ItemState(c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Item state retrieved successfully", progress))
}

// AddItemImage handles POST /inspections/:id/items/:itemID/images
func (h *InspectionController) AddItemImage(c *gin.Context) {
	img, progress, err := h.service.AddItemImage(h.ctx, c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewSuccessResponse(http.StatusCreated, "Image captured", gin.H{
		"image":    img,
		"progress": progress,
	}))
}

// RecordItemVideo handles POST /inspections/:id/items/:itemID/video
func (h *InspectionController) RecordItemVideo(c *gin.Context) {
	video, err := h.service.RecordItemVideo(h.ctx, c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewSuccessResponse(http.StatusCreated, "Video recorded", video))
}

// SetItemCondition handles PUT /inspections/:id/items/:itemID/condition
func (h *InspectionController) SetItemCondition(c *gin.Context) {
	var req models.ConditionRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetItemCondition(c.Param("id"), c.Param("itemID"), req.Condition); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Condition recorded", nil))
}

// SetItemExpiry handles PUT /inspections/:id/items/:itemID/expiry
func (h *InspectionController) SetItemExpiry(c *gin.Context) {
	var req models.ExpiryRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetItemExpiry(c.Param("id"), c.Param("itemID"), req.ExpiryDate); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Expiry date recorded", nil))
}

// SetItemSerial handles PUT /inspections/:id/items/:itemID/serial
func (h *InspectionController) SetItemSerial(c *gin.Context) {
	var req models.SerialRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetItemSerial(c.Param("id"), c.Param("itemID"), req.SerialNumber); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Serial number recorded", nil))
}

// ResolveItem handles POST /inspections/:id/items/:itemID/resolve
func (h *InspectionController) ResolveItem(c *gin.Context) {
	var req models.ResolveRequest
	if !h.bind(c, &req) {
		return
	}
	progress, err := h.service.ResolveItem(c.Param("id"), c.Param("itemID"), req.Resolution, req.Note)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Item resolved", progress))
}

// ResetItem handles POST /inspections/:id/items/:itemID/reset
func (h *InspectionController) ResetItem(c *gin.Context) {
	if err := h.service.ResetItem(c.Param("id"), c.Param("itemID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Item reset", nil))
}
