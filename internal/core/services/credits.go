package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type CreditLedgerService struct {
	accounts       ports.AccountRepository
	metrics        ports.Metrics
	defaultCredits int
}

func NewCreditLedgerService(accounts ports.AccountRepository, metrics ports.Metrics, defaultCredits int) *CreditLedgerService {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &CreditLedgerService{accounts: accounts, metrics: metrics, defaultCredits: defaultCredits}
}

// DefaultCredits is the balance new accounts start with.
func (s *CreditLedgerService) DefaultCredits() int {
	return s.defaultCredits
}

func (s *CreditLedgerService) Account(ctx context.Context, userID string) (*domain.Account, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrMissingUserID
	}
	return s.accounts.Get(ctx, userID)
}

func (s *CreditLedgerService) Balance(ctx context.Context, userID string) (int, error) {
	acc, err := s.Account(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acc.Credits, nil
}

// Initialize creates the account with credits unless one exists. A negative
// amount uses the configured default.
func (s *CreditLedgerService) Initialize(ctx context.Context, userID string, credits int) (*domain.Account, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, domain.ErrMissingUserID
	}
	if credits < 0 {
		credits = s.defaultCredits
	}
	acc, created, err := s.accounts.Initialize(ctx, userID, credits)
	if err != nil {
		s.metrics.IncLedger("initialize", string(domain.ReasonOf(err)))
		return nil, false, err
	}
	if created {
		log.WithFields(log.Fields{"user_id": userID, "credits": credits}).Info("credit account initialized")
	}
	s.metrics.IncLedger("initialize", "ok")
	return acc, created, nil
}

// Debit subtracts amount only when the balance covers it. A reference that
// was already applied is not applied again.
func (s *CreditLedgerService) Debit(ctx context.Context, userID string, amount int, reference string) (int, error) {
	return s.debit(ctx, userID, amount, ports.Mutation{Kind: domain.LedgerDebit, Reference: reference})
}

func (s *CreditLedgerService) debit(ctx context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingUserID
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	balance, err := s.accounts.Debit(ctx, userID, amount, mut)
	if err != nil {
		s.metrics.IncLedger("debit", string(domain.ReasonOf(err)))
		if !errors.Is(err, domain.ErrInsufficientCredits) && !errors.Is(err, domain.ErrNotFound) {
			log.WithError(err).WithFields(log.Fields{
				"user_id":   userID,
				"amount":    amount,
				"reference": mut.Reference,
			}).Error("debit failed")
		}
		return 0, err
	}
	s.metrics.IncLedger("debit", "ok")
	return balance, nil
}

// Credit adds amount unconditionally.
func (s *CreditLedgerService) Credit(ctx context.Context, userID string, amount int, reference string) (int, error) {
	return s.credit(ctx, userID, amount, ports.Mutation{Kind: domain.LedgerCredit, Reference: reference})
}

func (s *CreditLedgerService) credit(ctx context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingUserID
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	balance, err := s.accounts.Credit(ctx, userID, amount, mut)
	if err != nil {
		s.metrics.IncLedger(string(mut.Kind), string(domain.ReasonOf(err)))
		return 0, err
	}
	s.metrics.IncLedger(string(mut.Kind), "ok")
	return balance, nil
}

// Spend charges the generation cost of tier. The generation itself happens
// elsewhere; reference ties the charge to it.
func (s *CreditLedgerService) Spend(ctx context.Context, userID string, tier domain.Tier, reference string) (int, int, error) {
	if !tier.IsValid() {
		return 0, 0, domain.ErrInvalidTier
	}
	cost := domain.GenerationCost(tier)
	balance, err := s.debit(ctx, userID, cost, ports.Mutation{
		Kind:        domain.LedgerDebit,
		Reference:   reference,
		Description: fmt.Sprintf("generate %s map", tier.Info().Name),
	})
	if err != nil {
		return 0, cost, err
	}
	return balance, cost, nil
}

// History lists the newest ledger entries first.
func (s *CreditLedgerService) History(ctx context.Context, userID string, limit int) ([]*domain.LedgerEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrMissingUserID
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.accounts.History(ctx, userID, limit)
}
