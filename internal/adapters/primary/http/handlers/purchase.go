package handlers

import (
	"net/http"

	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetPurchaseEligibility(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseMapID(c)
	if !ok {
		return
	}

	elig, err := h.purchaseSvc.ValidateEligibility(c.Request.Context(), id, userID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, elig)
}

// PurchaseMap runs one purchase. A debit that lost a race against a
// concurrent balance update is retried once as a fresh purchase.
func (h *Handler) PurchaseMap(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseMapID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	email := middleware.UserEmail(c)

	result, err := h.purchaseSvc.Purchase(ctx, id, userID, email)
	if result != nil && result.State == domain.PurchaseRejected && result.Reason == domain.ReasonConflict {
		middleware.Logger(c).WithFields(log.Fields{"map_id": id, "purchase_id": result.PurchaseID}).Info("purchase conflicted, retrying")
		result, err = h.purchaseSvc.Purchase(ctx, id, userID, email)
	}
	if result == nil {
		mapDomainError(c, err)
		return
	}
	if err != nil {
		middleware.Logger(c).WithError(err).WithFields(log.Fields{
			"map_id":      id,
			"purchase_id": result.PurchaseID,
			"state":       result.State,
		}).Error("purchase failed")
	}

	c.JSON(purchaseStatus(result, err), result)
}
