package handlers

import (
	"errors"
	"net/http"

	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrNotVoted),
		errors.Is(err, domain.ErrStoreConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapDomainError(c *gin.Context, err error) {
	status := statusOf(err)
	reason := domain.ReasonOf(err)

	switch {
	// Operator action needed, the caller only sees a generic failure
	case errors.Is(err, domain.ErrIndexRequired):
		middleware.Logger(c).WithError(err).WithField("path", c.FullPath()).Error("store index or schema object missing, run migrations")
		c.JSON(status, gin.H{"error": "internal server error", "reason": reason})

	case status == http.StatusInternalServerError:
		middleware.Logger(c).WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
		c.JSON(status, gin.H{"error": "internal server error", "reason": domain.ReasonInternal})

	default:
		c.JSON(status, gin.H{"error": err.Error(), "reason": reason})
	}
}

// purchaseStatus picks the response code for a purchase attempt that
// produced a result.
func purchaseStatus(r *domain.PurchaseResult, err error) int {
	switch r.State {
	case domain.PurchaseSucceeded:
		return http.StatusCreated
	case domain.PurchasePartiallySucceeded:
		return http.StatusInternalServerError
	case domain.PurchaseCloneFailed:
		if err != nil {
			return statusOf(err)
		}
		return http.StatusInternalServerError
	}

	switch r.Reason {
	case domain.ReasonNotFound:
		return http.StatusNotFound
	case domain.ReasonInsufficientCredits:
		return http.StatusPaymentRequired
	case domain.ReasonConflict:
		return http.StatusConflict
	case domain.ReasonNotPurchasable, domain.ReasonOwnMap, domain.ReasonValidation:
		return http.StatusBadRequest
	}
	if err != nil {
		return statusOf(err)
	}
	return http.StatusBadRequest
}
