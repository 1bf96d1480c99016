package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"immo/internal/app/authz"
	authsvc "immo/internal/app/services/auth"
	domainad "immo/internal/domain/ad"
	domainauth "immo/internal/domain/auth"
	domainbooking "immo/internal/domain/booking"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

var notFoundErrors = []error{
	domainuser.ErrNotFound,
	domainproperty.ErrNotFound,
	domainad.ErrNotFound,
	domainbooking.ErrNotFound,
}

var badRequestErrors = []error{
	domainuser.ErrEmailRequired,
	domainuser.ErrNameRequired,
	domainuser.ErrInvalidRole,
	domainuser.ErrAlreadyFavorite,
	domainuser.ErrNotFavorite,
	domainproperty.ErrTitleRequired,
	domainproperty.ErrInvalidType,
	domainproperty.ErrInvalidPrice,
	domainproperty.ErrInvalidSurface,
	domainproperty.ErrCityRequired,
	domainproperty.ErrZipCodeRequired,
	domainproperty.ErrInvalidStatus,
	domainproperty.ErrImageNotFound,
	domainad.ErrTitleRequired,
	domainad.ErrInvalidType,
	domainad.ErrInvalidPrice,
	domainad.ErrInvalidStatus,
	domainbooking.ErrDateInPast,
	domainbooking.ErrOwnBooking,
	domainbooking.ErrAdPropertyMismatch,
	domainbooking.ErrSlotRequired,
	domainbooking.ErrSlotFormat,
	domainbooking.ErrSlotOrder,
	domainbooking.ErrInvalidTransition,
	domainbooking.ErrInvalidRating,
	domainbooking.ErrNotCompleted,
	authsvc.ErrPasswordTooShort,
}

var unauthorizedErrors = []error{
	authsvc.ErrInvalidCredentials,
	domainauth.ErrSessionNotFound,
}

var forbiddenErrors = []error{
	authz.ErrForbidden,
	authz.ErrRoleNotAllowed,
	domainuser.ErrRoleNotAssignable,
}

var conflictErrors = []error{
	domainuser.ErrEmailAlreadyUsed,
	domainbooking.ErrSlotTaken,
	domainbooking.ErrFeedbackExists,
	domainbooking.ErrNotPending,
}

// respondError maps domain and application errors onto HTTP statuses.
// Anything unmatched is an internal error and logged as such.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	for _, candidate := range notFoundErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range badRequestErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range unauthorizedErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range forbiddenErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
	}
	for _, candidate := range conflictErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}
	if logger != nil {
		logger.Error("request failed", "error", err, "path", c.Request.URL.Path)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
