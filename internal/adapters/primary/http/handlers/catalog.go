package handlers

import (
	"context"
	"net/http"

	"map-catalog-service/internal/adapters/primary/http/dto"
	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

type pageFunc func(ctx context.Context, userID string, req domain.PageRequest) (*domain.Page, error)

func (h *Handler) Explore(c *gin.Context) {
	h.listPage(c, "explore", false, func(ctx context.Context, _ string, req domain.PageRequest) (*domain.Page, error) {
		return h.catalogSvc.Explore(ctx, req)
	})
}

func (h *Handler) MyMaps(c *gin.Context) {
	h.listPage(c, "my maps", true, h.catalogSvc.MyMaps)
}

func (h *Handler) PurchasableMaps(c *gin.Context) {
	h.listPage(c, "purchasable", false, h.catalogSvc.Purchasable)
}

func (h *Handler) listPage(c *gin.Context, view string, needsUser bool, fetch pageFunc) {
	userID := middleware.UserID(c)
	if needsUser {
		var ok bool
		if userID, ok = requireUserID(c); !ok {
			return
		}
	}

	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": domain.ReasonValidation})
		return
	}
	req, err := q.ToPageRequest(h.defaultPageSize)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	page, err := fetch(c.Request.Context(), userID, req)
	if err != nil {
		middleware.Logger(c).WithError(err).WithField("view", view).Warn("list maps failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPageResponse(page, userID))
}

func (h *Handler) SearchMaps(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": domain.ReasonValidation})
		return
	}

	result, err := h.catalogSvc.Search(c.Request.Context(), q.ToSearchRequest())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSearchResponse(result, middleware.UserID(c)))
}
