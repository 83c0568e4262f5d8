package handlers

import (
	"map-catalog-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalogSvc      *services.CatalogService
	mapSvc          *services.MapService
	voteSvc         *services.VoteService
	purchaseSvc     *services.PurchaseService
	creditSvc       *services.CreditLedgerService
	suggestionSvc   *services.SuggestionService
	defaultPageSize int
}

func New(
	catalogSvc *services.CatalogService,
	mapSvc *services.MapService,
	voteSvc *services.VoteService,
	purchaseSvc *services.PurchaseService,
	creditSvc *services.CreditLedgerService,
	suggestionSvc *services.SuggestionService,
	defaultPageSize int,
) *Handler {
	return &Handler{
		catalogSvc:      catalogSvc,
		mapSvc:          mapSvc,
		voteSvc:         voteSvc,
		purchaseSvc:     purchaseSvc,
		creditSvc:       creditSvc,
		suggestionSvc:   suggestionSvc,
		defaultPageSize: defaultPageSize,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Catalog listings
	r.GET("/maps", h.Explore)
	r.GET("/maps/mine", h.MyMaps)
	r.GET("/maps/purchasable", h.PurchasableMaps)
	r.GET("/maps/search", h.SearchMaps)

	// Maps
	r.GET("/maps/:id", h.GetMap)
	r.GET("/maps/ticket/:ticket", h.GetMapByTicket)
	r.POST("/maps/:id/archive", h.ArchiveMap)
	r.DELETE("/maps/:id", h.DeleteMap)
	r.GET("/maps/:id/size", h.GetPrintSize)

	// Purchases
	r.GET("/maps/:id/purchase/eligibility", h.GetPurchaseEligibility)
	r.POST("/maps/:id/purchase", h.PurchaseMap)

	// Votes
	r.GET("/maps/:id/votes", h.GetVotes)
	r.POST("/maps/:id/votes", h.AddVote)
	r.DELETE("/maps/:id/votes", h.RemoveVote)

	// Credits
	r.GET("/credits", h.GetAccount)
	r.POST("/credits/initialize", h.InitializeCredits)
	r.POST("/credits/topup", h.TopUpCredits)
	r.POST("/credits/spend", h.SpendCredits)
	r.GET("/credits/history", h.GetCreditHistory)
	r.GET("/costs", h.GetCosts)

	// Location suggestions
	r.GET("/suggestions", h.GetSuggestions)
}
