package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/islandpros/directory_api/internal/service"
	"github.com/islandpros/directory_api/internal/utils"
)

// ReferenceHandler serves categories and areas.
type ReferenceHandler struct {
	reference *service.ReferenceService
}

// NewReferenceHandler constructs a ReferenceHandler.
func NewReferenceHandler(reference *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference}
}

// GetCategories returns all categories.
// GET /v1/categories
func (h *ReferenceHandler) GetCategories(c *gin.Context) {
	categories, err := h.reference.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessList(c, http.StatusOK, "Categories retrieved successfully", categories, len(categories))
}

// GetAreas returns areas, optionally for one island.
// GET /v1/areas?island=
func (h *ReferenceHandler) GetAreas(c *gin.Context) {
	areas, err := h.reference.Areas(c.Request.Context(), c.Query("island"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessList(c, http.StatusOK, "Areas retrieved successfully", areas, len(areas))
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

// CreateCategory adds a category.
// POST /v1/admin/categories
func (h *ReferenceHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.reference.CreateCategory(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Category created successfully", category)
}

type createAreaRequest struct {
	Name   string `json:"name" binding:"required"`
	Island string `json:"island" binding:"required"`
}

// CreateArea adds an area.
// POST /v1/admin/areas
func (h *ReferenceHandler) CreateArea(c *gin.Context) {
	var req createAreaRequest
	if !bindJSON(c, &req) {
		return
	}

	area, err := h.reference.CreateArea(c.Request.Context(), req.Name, req.Island)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Area created successfully", area)
}
