package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/islandpros/directory_api/internal/middleware"
	"github.com/islandpros/directory_api/internal/service"
	"github.com/islandpros/directory_api/internal/utils"
)

// ProviderAdminHandler handles admin writes to provider records.
type ProviderAdminHandler struct {
	providers *service.ProviderService
}

// NewProviderAdminHandler constructs a ProviderAdminHandler.
func NewProviderAdminHandler(providers *service.ProviderService) *ProviderAdminHandler {
	return &ProviderAdminHandler{providers: providers}
}

// Register creates a provider.
// POST /v1/admin/providers
func (h *ProviderAdminHandler) Register(c *gin.Context) {
	var req service.RegisterProviderInput
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.providers.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Provider registered successfully", p)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus changes availability.
// PUT /v1/admin/providers/:id/status
func (h *ProviderAdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.providers.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Provider status updated", gin.H{"id": id, "status": req.Status})
}

type updatePlanRequest struct {
	Plan       string     `json:"plan" binding:"required"`
	TrialEndAt *time.Time `json:"trialEndAt"`
}

// UpdatePlan changes the subscription plan.
// PUT /v1/admin/providers/:id/plan
func (h *ProviderAdminHandler) UpdatePlan(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req updatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.providers.ChangePlan(c.Request.Context(), id, req.Plan, req.TrialEndAt); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Provider plan updated", gin.H{"id": id, "plan": req.Plan})
}

type updateLifecycleRequest struct {
	LifecycleStatus string `json:"lifecycleStatus" binding:"required"`
}

// UpdateLifecycle moves a provider through its lifecycle.
// PUT /v1/admin/providers/:id/lifecycle
func (h *ProviderAdminHandler) UpdateLifecycle(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req updateLifecycleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.providers.TransitionLifecycle(c.Request.Context(), id, req.LifecycleStatus); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Provider lifecycle updated", gin.H{"id": id, "lifecycleStatus": req.LifecycleStatus})
}

type setCategoriesRequest struct {
	CategoryIDs []int64 `json:"categoryIds"`
}

// SetCategories replaces the provider's categories.
// PUT /v1/admin/providers/:id/categories
func (h *ProviderAdminHandler) SetCategories(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req setCategoriesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.providers.SetCategories(c.Request.Context(), id, req.CategoryIDs); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Provider categories updated", gin.H{"id": id, "categoryIds": req.CategoryIDs})
}

type setAreasRequest struct {
	AreaIDs []int64 `json:"areaIds"`
}

// SetAreas replaces the provider's service areas.
// PUT /v1/admin/providers/:id/areas
func (h *ProviderAdminHandler) SetAreas(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req setAreasRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.providers.SetAreas(c.Request.Context(), id, req.AreaIDs); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Provider areas updated", gin.H{"id": id, "areaIds": req.AreaIDs})
}

type assignBadgeRequest struct {
	Badge string  `json:"badge" binding:"required"`
	Notes *string `json:"notes"`
}

// AssignBadge grants a badge. The assigning admin comes from the token.
// POST /v1/admin/providers/:id/badges
func (h *ProviderAdminHandler) AssignBadge(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req assignBadgeRequest
	if !bindJSON(c, &req) {
		return
	}

	badge, err := h.providers.AssignBadge(c.Request.Context(), id, req.Badge, middleware.AdminEmail(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Badge assigned", badge)
}

// RemoveBadge revokes a badge.
// DELETE /v1/admin/providers/:id/badges/:badge
func (h *ProviderAdminHandler) RemoveBadge(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}

	if err := h.providers.RemoveBadge(c.Request.Context(), id, c.Param("badge")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Badge removed", gin.H{"id": id, "badge": c.Param("badge")})
}

type recordActivityRequest struct {
	EventType string `json:"eventType" binding:"required"`
}

// RecordActivity appends an activity event.
// POST /v1/admin/providers/:id/activity
func (h *ProviderAdminHandler) RecordActivity(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}
	var req recordActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	ev, err := h.providers.RecordActivity(c.Request.Context(), id, req.EventType)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Activity recorded", ev)
}
