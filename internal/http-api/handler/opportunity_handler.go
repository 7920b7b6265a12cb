package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servespot/internal/http-api/dto"
	"servespot/internal/http-api/middleware"
	"servespot/internal/http-api/models"
	"servespot/internal/http-api/repository"
	"servespot/internal/http-api/service"
	"servespot/internal/shared"
)

type OpportunityHandler struct {
	svc service.OpportunityService
}

func NewOpportunityHandler(svc service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{svc: svc}
}

// RegisterRoutes: browsing is open to any authenticated user; mutations
// are organization-only.
func (h *OpportunityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)

	org := rg.Group("", middleware.RequireRole(shared.RoleOrganization))
	org.POST("", h.Create)
	org.PUT("/:id", h.Update)
	org.PUT("/:id/close", h.Close)
}

func (h *OpportunityHandler) Create(c *gin.Context) {
	_, organizationID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	opportunity := &models.Opportunity{
		OrganizationID: organizationID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Location:       req.Location,
		Date:           req.Date,
		Capacity:       req.Capacity,
	}
	if err := h.svc.Create(ctx, opportunity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, opportunity)
}

func (h *OpportunityHandler) Update(c *gin.Context) {
	_, organizationID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	opportunity := &models.Opportunity{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Date:        req.Date,
		Capacity:    req.Capacity,
	}
	if err := h.svc.Update(ctx, organizationID, opportunity); err != nil {
		writeOpportunityError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

func (h *OpportunityHandler) Close(c *gin.Context) {
	_, organizationID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Close(ctx, organizationID, c.Param("id")); err != nil {
		writeOpportunityError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OpportunityHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	opportunity, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

func (h *OpportunityHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	filter := repository.OpportunityFilter{
		Category:       c.Query("category"),
		Location:       c.Query("location"),
		OrganizationID: c.Query("organization_id"),
		Status:         models.OpportunityStatus(c.Query("status")),
	}
	opportunities, err := h.svc.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"opportunities": opportunities})
}

func writeOpportunityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOpportunityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
