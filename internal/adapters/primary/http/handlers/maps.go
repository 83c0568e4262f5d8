package handlers

import (
	"net/http"
	"strings"

	"map-catalog-service/internal/adapters/primary/http/dto"
	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetMap(c *gin.Context) {
	id, ok := parseMapID(c)
	if !ok {
		return
	}

	m, err := h.mapSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMapResponse(m, middleware.UserID(c)))
}

func (h *Handler) GetMapByTicket(c *gin.Context) {
	m, err := h.mapSvc.GetByTicket(c.Request.Context(), c.Param("ticket"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMapResponse(m, middleware.UserID(c)))
}

func (h *Handler) ArchiveMap(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseMapID(c)
	if !ok {
		return
	}

	if err := h.mapSvc.Archive(c.Request.Context(), id, userID); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteMap(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseMapID(c)
	if !ok {
		return
	}

	if err := h.mapSvc.Delete(c.Request.Context(), id, userID); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetPrintSize(c *gin.Context) {
	id, ok := parseMapID(c)
	if !ok {
		return
	}
	unit := domain.SizeUnit(strings.ToLower(c.DefaultQuery("unit", string(domain.UnitCm))))

	size, err := h.mapSvc.PrintSize(c.Request.Context(), id, unit)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, size)
}
