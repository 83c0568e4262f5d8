package dto

import (
	"time"

	"map-catalog-service/internal/core/domain"
)

type InitializeCreditsRequest struct {
	Credits *int `json:"credits" binding:"omitempty,min=0"`
}

type TopUpRequest struct {
	Amount    int    `json:"amount" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"max=200"`
}

type SpendRequest struct {
	Tier      string `json:"tier" binding:"required"`
	Reference string `json:"reference" binding:"max=200"`
}

type AccountResponse struct {
	UID       string `json:"uid"`
	Credits   int    `json:"credits"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		UID:       a.UID,
		Credits:   a.Credits,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}

type BalanceResponse struct {
	Credits int `json:"credits"`
}

type SpendResponse struct {
	Credits int    `json:"credits"`
	Cost    int    `json:"cost"`
	Tier    string `json:"tier"`
}

type LedgerEntryResponse struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	Amount       int    `json:"amount"`
	BalanceAfter int    `json:"balance_after"`
	Reference    string `json:"reference,omitempty"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type HistoryResponse struct {
	Items []LedgerEntryResponse `json:"items"`
}

func ToHistoryResponse(entries []*domain.LedgerEntry) HistoryResponse {
	items := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, LedgerEntryResponse{
			ID:           e.ID,
			Kind:         string(e.Kind),
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			Reference:    e.Reference,
			Description:  e.Description,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	return HistoryResponse{Items: items}
}

type CostsResponse struct {
	Tiers []domain.CostEntry `json:"tiers"`
}
