package utils

import "errors"

// Common application errors used across services.
var (
	ErrValidation        = errors.New("VALIDATION_ERROR")
	ErrStorage           = errors.New("STORAGE_UNAVAILABLE")
	ErrProviderNotFound  = errors.New("PROVIDER_NOT_FOUND")
	ErrCategoryNotFound  = errors.New("CATEGORY_NOT_FOUND")
	ErrAreaNotFound      = errors.New("AREA_NOT_FOUND")
	ErrInvalidTransition = errors.New("INVALID_LIFECYCLE_TRANSITION")
	ErrDuplicateBadge    = errors.New("DUPLICATE_BADGE")
	ErrBadgeNotFound     = errors.New("BADGE_NOT_FOUND")
	ErrDuplicateCategory = errors.New("DUPLICATE_CATEGORY")
	ErrDuplicateArea     = errors.New("DUPLICATE_AREA")
	ErrInvalidToken      = errors.New("INVALID_TOKEN")
)
