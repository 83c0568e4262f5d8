package ports

import (
	"context"

	"map-catalog-service/internal/core/domain"
)

// Mutation describes why a balance changes. A non-empty Reference is
// applied at most once.
type Mutation struct {
	Kind        domain.LedgerKind
	Reference   string
	Description string
}

type AccountRepository interface {
	Get(ctx context.Context, userID string) (*domain.Account, error)
	// Initialize creates the account with credits unless it exists. The
	// bool reports whether it was created.
	Initialize(ctx context.Context, userID string, credits int) (*domain.Account, bool, error)
	// Debit subtracts amount only if the balance covers it, as a single
	// conditional write. It returns the balance after the debit.
	Debit(ctx context.Context, userID string, amount int, m Mutation) (int, error)
	Credit(ctx context.Context, userID string, amount int, m Mutation) (int, error)
	History(ctx context.Context, userID string, limit int) ([]*domain.LedgerEntry, error)
}
