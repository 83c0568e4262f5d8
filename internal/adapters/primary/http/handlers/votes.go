package handlers

import (
	"net/http"

	"map-catalog-service/internal/adapters/primary/http/dto"
	"map-catalog-service/internal/adapters/primary/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetVotes(c *gin.Context) {
	id, ok := parseMapID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	votes, err := h.voteSvc.VoteCount(ctx, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	resp := dto.VoteResponse{MapID: id, Votes: votes}
	if userID := middleware.UserID(c); userID != "" {
		voted, err := h.voteSvc.HasVoted(ctx, id, userID)
		if err != nil {
			mapDomainError(c, err)
			return
		}
		resp.HasVoted = voted
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AddVote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseMapID(c)
	if !ok {
		return
	}

	votes, err := h.voteSvc.AddVote(c.Request.Context(), id, userID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VoteResponse{MapID: id, Votes: votes, HasVoted: true})
}

func (h *Handler) RemoveVote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseMapID(c)
	if !ok {
		return
	}

	votes, err := h.voteSvc.RemoveVote(c.Request.Context(), id, userID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VoteResponse{MapID: id, Votes: votes, HasVoted: false})
}
