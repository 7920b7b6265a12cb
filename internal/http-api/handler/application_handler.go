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
	"servespot/internal/http-api/service"
	"servespot/internal/shared"
)

type ApplicationHandler struct {
	svc service.ApplicationService
}

func NewApplicationHandler(svc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vol := rg.Group("", middleware.RequireRole(shared.RoleVolunteer))
	vol.POST("", h.Apply)
	vol.GET("/mine", h.ListMine)

	org := rg.Group("", middleware.RequireRole(shared.RoleOrganization))
	org.GET("/opportunity/:id", h.ListForOpportunity)
	org.PUT("/:id/status", h.UpdateStatus)
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	_, volunteerID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	application, err := h.svc.Apply(ctx, volunteerID, req.OpportunityID, req.Message)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	_, volunteerID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	applications, err := h.svc.ListForVolunteer(ctx, volunteerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

func (h *ApplicationHandler) ListForOpportunity(c *gin.Context) {
	_, organizationID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	applications, err := h.svc.ListForOpportunity(ctx, organizationID, c.Param("id"))
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// UpdateStatus is where notification delivery originates: accepting or
// rejecting pushes a status notification to the volunteer.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	_, organizationID, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.svc.UpdateStatus(ctx, organizationID, c.Param("id"), models.ApplicationStatus(req.Status))
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func writeApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound),
		errors.Is(err, service.ErrOpportunityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyApplied),
		errors.Is(err, service.ErrOpportunityClosed),
		errors.Is(err, service.ErrOpportunityFull),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
