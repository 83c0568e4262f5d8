package handlers

import (
	"net/http"
	"strconv"

	"map-catalog-service/internal/adapters/primary/http/dto"
	"map-catalog-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) GetAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	acc, err := h.creditSvc.Account(c.Request.Context(), userID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

func (h *Handler) InitializeCredits(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.InitializeCreditsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": domain.ReasonValidation})
			return
		}
	}
	credits := -1
	if req.Credits != nil {
		credits = *req.Credits
	}

	acc, created, err := h.creditSvc.Initialize(c.Request.Context(), userID, credits)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToAccountResponse(acc))
}

func (h *Handler) TopUpCredits(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": domain.ReasonValidation})
		return
	}

	balance, err := h.creditSvc.Credit(c.Request.Context(), userID, req.Amount, req.Reference)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Credits: balance})
}

// SpendCredits charges the generation cost of a tier. Without a client
// reference every call is a separate charge.
func (h *Handler) SpendCredits(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.SpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": domain.ReasonValidation})
		return
	}
	tier, err := domain.ParseTier(req.Tier)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	reference := req.Reference
	if reference == "" {
		reference = "generate:" + uuid.New().String()
	}

	balance, cost, err := h.creditSvc.Spend(c.Request.Context(), userID, tier, reference)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SpendResponse{Credits: balance, Cost: cost, Tier: string(tier)})
}

func (h *Handler) GetCreditHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.creditSvc.History(c.Request.Context(), userID, limit)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryResponse(entries))
}

func (h *Handler) GetCosts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CostsResponse{Tiers: domain.CostTable()})
}
