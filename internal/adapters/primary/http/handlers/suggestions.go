package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSuggestions(c *gin.Context) {
	results, err := h.suggestionSvc.Search(c.Request.Context(), c.Query("q"), c.DefaultQuery("locale", "en"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": results})
}
