package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/utils"
)

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
	case errors.Is(err, utils.ErrValidation):
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, utils.ErrProviderNotFound):
		utils.Error(c, http.StatusNotFound, "PROVIDER_NOT_FOUND", "Provider not found")
	case errors.Is(err, utils.ErrCategoryNotFound):
		utils.Error(c, http.StatusUnprocessableEntity, "CATEGORY_NOT_FOUND", "Unknown category id")
	case errors.Is(err, utils.ErrAreaNotFound):
		utils.Error(c, http.StatusUnprocessableEntity, "AREA_NOT_FOUND", "Unknown area id")
	case errors.Is(err, utils.ErrBadgeNotFound):
		utils.Error(c, http.StatusNotFound, "BADGE_NOT_FOUND", "Provider does not hold this badge")
	case errors.Is(err, utils.ErrDuplicateBadge):
		utils.Error(c, http.StatusConflict, "DUPLICATE_BADGE", "Provider already holds this badge")
	case errors.Is(err, utils.ErrDuplicateCategory):
		utils.Error(c, http.StatusConflict, "DUPLICATE_CATEGORY", "A category with this slug already exists")
	case errors.Is(err, utils.ErrDuplicateArea):
		utils.Error(c, http.StatusConflict, "DUPLICATE_AREA", "An area with this name already exists on the island")
	case errors.Is(err, utils.ErrInvalidTransition):
		utils.Error(c, http.StatusConflict, "INVALID_LIFECYCLE_TRANSITION", "Archived providers cannot be restored")
	case errors.Is(err, utils.ErrStorage):
		utils.Error(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Directory storage is unavailable")
	default:
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// providerID parses the :id path parameter.
func providerID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, &models.ValidationError{Field: "id", Value: raw})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return false
	}
	return true
}
