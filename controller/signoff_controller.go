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

type SignOffController struct {
	ctx       context.Context
	service   services.SignOffAggregatorInterface
	logger    logger.Logger
	validator *validator.Validate
}

func NewSignOffController(ctx context.Context, service services.SignOffAggregatorInterface, log logger.Logger) *SignOffController {
	return &SignOffController{
		ctx:       ctx,
		service:   service,
		logger:    log,
		validator: validator.New(),
	}
}

func (h *SignOffController) bind(c *gin.Context, req interface{}) bool {
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

// Open handles POST /jobs/:id/signoff. Reopening clears the signature.
func (h *SignOffController) Open(c *gin.Context) {
	record, err := h.service.Open(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewSuccessResponse(http.StatusCreated, "Sign-off opened", record))
}

// Get handles GET /jobs/:id/signoff
func (h *SignOffController) Get(c *gin.Context) {
	record, err := h.service.Record(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Sign-off retrieved successfully", record))
}

// Gates handles GET /jobs/:id/signoff/gates
func (h *SignOffController) Gates(c *gin.Context) {
	granted, missing := h.service.CanComplete(c.Param("id"))
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Completion gates evaluated", gin.H{
		"canComplete": granted,
		"missing":     missing,
	}))
}

// SetSignature handles PUT /jobs/:id/signoff/signature
func (h *SignOffController) SetSignature(c *gin.Context) {
	var req models.SignatureRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetSignature(c.Param("id"), req.Signature); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Signature recorded", nil))
}

// SetTerms handles PUT /jobs/:id/signoff/terms
func (h *SignOffController) SetTerms(c *gin.Context) {
	var req models.TermsRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetTerms(c.Param("id"), *req.Accepted); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Terms acceptance recorded", nil))
}

// SetUDF handles PUT /jobs/:id/signoff/udf
func (h *SignOffController) SetUDF(c *gin.Context) {
	var req models.UDFRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetUDFComplete(c.Param("id"), *req.Complete); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "UDF state recorded", nil))
}

// SetStock handles POST /jobs/:id/signoff/stock
func (h *SignOffController) SetStock(c *gin.Context) {
	var req models.StockRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.service.SetStock(c.Param("id"), req.Items, req.NoStockUsed); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Stock usage recorded", nil))
}

// AddGalleryImage handles POST /jobs/:id/signoff/gallery-image
func (h *SignOffController) AddGalleryImage(c *gin.Context) {
	img, err := h.service.AddGalleryImage(h.ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewSuccessResponse(http.StatusCreated, "Gallery image captured", img))
}

// Save handles POST /jobs/:id/signoff/save. Work in progress persists even
// with gates unmet.
func (h *SignOffController) Save(c *gin.Context) {
	if err := h.service.Save(h.ctx, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Sign-off saved", nil))
}

// Complete handles POST /jobs/:id/signoff/complete
func (h *SignOffController) Complete(c *gin.Context) {
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

	job, err := h.service.Complete(h.ctx, c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse(http.StatusOK, "Job completed successfully", job))
}
