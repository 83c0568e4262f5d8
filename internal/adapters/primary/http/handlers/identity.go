package handlers

import (
	"net/http"

	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func requireUserID(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingUserID.Error(), "reason": domain.ReasonValidation})
		return "", false
	}
	return userID, true
}

func parseMapID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid map id", "reason": domain.ReasonValidation})
		return uuid.Nil, false
	}
	return id, true
}
