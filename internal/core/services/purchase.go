package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

// PurchaseService buys copies of other users' maps. A purchase debits the
// buyer first, then persists the copy, and refunds the debit if the copy
// cannot be persisted.
type PurchaseService struct {
	maps    ports.MapRepository
	credits *CreditLedgerService
	metrics ports.Metrics
	now     func() time.Time
}

func NewPurchaseService(maps ports.MapRepository, credits *CreditLedgerService, metrics ports.Metrics) *PurchaseService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &PurchaseService{
		maps:    maps,
		credits: credits,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ValidateEligibility reports whether buyerID may purchase the map. Reasons
// are checked in order: not found, not purchasable, own map, insufficient
// credits. Store failures are returned as errors.
func (s *PurchaseService) ValidateEligibility(ctx context.Context, mapID uuid.UUID, buyerID string) (*domain.Eligibility, error) {
	elig, _, err := s.eligibility(ctx, mapID, buyerID)
	return elig, err
}

func (s *PurchaseService) eligibility(ctx context.Context, mapID uuid.UUID, buyerID string) (*domain.Eligibility, *domain.Map, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, nil, domain.ErrMissingUserID
	}
	m, err := s.maps.GetByID(ctx, mapID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Eligibility{Reason: domain.ReasonNotFound}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if m.IsArchived() {
		return &domain.Eligibility{Reason: domain.ReasonNotFound}, nil, nil
	}
	cost := domain.PurchaseCost(m.Tier)
	if !m.Tier.Purchasable() {
		return &domain.Eligibility{Reason: domain.ReasonNotPurchasable}, m, nil
	}
	if m.IsOwnedBy(buyerID) {
		return &domain.Eligibility{Reason: domain.ReasonOwnMap, Cost: cost}, m, nil
	}

	balance := 0
	acc, err := s.credits.Account(ctx, buyerID)
	switch {
	case err == nil:
		balance = acc.Credits
	case !errors.Is(err, domain.ErrNotFound):
		return nil, nil, err
	}
	if !domain.CanAfford(balance, cost) {
		return &domain.Eligibility{Reason: domain.ReasonInsufficientCredits, Cost: cost}, m, nil
	}
	return &domain.Eligibility{CanPurchase: true, Cost: cost}, m, nil
}

// Purchase buys a copy of the map for buyerID. The returned error is
// non-nil when a store failure decided the outcome; the result is nil only
// if nothing was attempted.
func (s *PurchaseService) Purchase(ctx context.Context, mapID uuid.UUID, buyerID, buyerEmail string) (*domain.PurchaseResult, error) {
	purchaseID := uuid.New()
	logger := log.WithFields(log.Fields{
		"purchase_id": purchaseID,
		"map_id":      mapID,
		"buyer_id":    buyerID,
	})

	elig, original, err := s.eligibility(ctx, mapID, buyerID)
	if err != nil {
		return nil, err
	}
	if !elig.CanPurchase {
		return s.finish(&domain.PurchaseResult{
			PurchaseID: purchaseID,
			State:      domain.PurchaseRejected,
			Reason:     elig.Reason,
			FailedStep: domain.StepValidate,
			Message:    rejectionMessage(elig.Reason),
		}), nil
	}
	cost := elig.Cost

	_, err = s.credits.debit(ctx, buyerID, cost, ports.Mutation{
		Kind:        domain.LedgerDebit,
		Reference:   domain.DebitReference(purchaseID),
		Description: fmt.Sprintf("purchase map %s", mapID),
	})
	if err != nil {
		result := s.finish(&domain.PurchaseResult{
			PurchaseID: purchaseID,
			State:      domain.PurchaseRejected,
			Reason:     domain.ReasonOf(err),
			FailedStep: domain.StepDebit,
			Message:    rejectionMessage(domain.ReasonOf(err)),
		})
		if errors.Is(err, domain.ErrInsufficientCredits) || errors.Is(err, domain.ErrStoreConflict) || errors.Is(err, domain.ErrNotFound) {
			return result, nil
		}
		return result, err
	}

	clone, err := original.CloneFor(buyerID, buyerEmail, s.now())
	if err == nil {
		err = s.maps.Create(ctx, clone)
	}
	if err == nil {
		logger.WithFields(log.Fields{"new_map_id": clone.UID, "cost": cost}).Info("map purchased")
		newID := clone.UID
		return s.finish(&domain.PurchaseResult{
			PurchaseID:   purchaseID,
			Success:      true,
			State:        domain.PurchaseSucceeded,
			NewMapID:     &newID,
			CostDeducted: cost,
			Message:      "map purchased",
		}), nil
	}
	cloneErr := err

	_, err = s.credits.credit(ctx, buyerID, cost, ports.Mutation{
		Kind:        domain.LedgerRefund,
		Reference:   domain.RefundReference(purchaseID),
		Description: fmt.Sprintf("refund purchase of map %s", mapID),
	})
	if err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"clone_error": cloneErr.Error(),
			"cost":        cost,
		}).Error("purchase refund failed, credits taken without a map")
		return s.finish(&domain.PurchaseResult{
			PurchaseID:   purchaseID,
			State:        domain.PurchasePartiallySucceeded,
			CostDeducted: cost,
			Reason:       domain.ReasonPartiallySucceeded,
			FailedStep:   domain.StepRefund,
			Message:      "credits were deducted but the map could not be created, the purchase will be reconciled",
		}), fmt.Errorf("%w: %v", domain.ErrPartiallySucceeded, cloneErr)
	}

	logger.WithError(cloneErr).Warn("purchase clone failed, debit refunded")
	return s.finish(&domain.PurchaseResult{
		PurchaseID: purchaseID,
		State:      domain.PurchaseCloneFailed,
		Reason:     domain.ReasonOf(cloneErr),
		FailedStep: domain.StepClone,
		Message:    "the map could not be copied, credits were refunded",
	}), cloneErr
}

func (s *PurchaseService) finish(r *domain.PurchaseResult) *domain.PurchaseResult {
	s.metrics.IncPurchase(string(r.State))
	return r
}

func rejectionMessage(reason domain.Reason) string {
	switch reason {
	case domain.ReasonNotFound:
		return "map not found"
	case domain.ReasonNotPurchasable:
		return "small maps cannot be purchased"
	case domain.ReasonOwnMap:
		return "you cannot purchase your own map"
	case domain.ReasonInsufficientCredits:
		return "insufficient credits"
	case domain.ReasonConflict:
		return "the purchase conflicted with a concurrent update, retry"
	default:
		return "purchase failed"
	}
}
