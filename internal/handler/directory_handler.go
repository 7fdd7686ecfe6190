package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/islandpros/directory_api/internal/ranking"
	"github.com/islandpros/directory_api/internal/service"
	"github.com/islandpros/directory_api/internal/utils"
)

// DirectoryHandler serves the public provider directory.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs a DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListProviders returns ranked providers.
// GET /v1/providers?island=&area_id=&category_id=&status=
func (h *DirectoryHandler) ListProviders(c *gin.Context) {
	filters, err := ranking.ParseFilters(
		c.Query("island"),
		c.Query("area_id"),
		c.Query("category_id"),
		c.Query("status"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.directory.ListProviders(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessList(c, http.StatusOK, "Providers retrieved successfully", entries, len(entries))
}

// GetProvider returns one ranked provider. Like the list endpoint it
// answers 400 while any stored provider row is malformed.
// GET /v1/providers/:id
func (h *DirectoryHandler) GetProvider(c *gin.Context) {
	id, ok := providerID(c)
	if !ok {
		return
	}

	entry, err := h.directory.GetProvider(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Provider retrieved successfully", entry)
}
