package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"map-catalog-service/internal/core/domain"
	ports "map-catalog-service/internal/core/ports/output"
)

type accountRepo struct {
	db *Connector
}

// NewAccountRepository creates the credit account and ledger repository.
func NewAccountRepository(db *Connector) ports.AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Get(ctx context.Context, userID string) (*domain.Account, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	acc, err := scanAccount(pool.QueryRow(ctx, `
		SELECT uid, credits, created_at, updated_at FROM credit_accounts WHERE uid = $1
	`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, classify("get credit account", err)
	}
	return acc, nil
}

func (r *accountRepo) Initialize(ctx context.Context, userID string, credits int) (*domain.Account, bool, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, false, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, false, classify("begin initialize", err)
	}
	defer tx.Rollback(ctx)

	acc, err := scanAccount(tx.QueryRow(ctx, `
		INSERT INTO credit_accounts (uid, credits) VALUES ($1, $2)
		ON CONFLICT (uid) DO NOTHING
		RETURNING uid, credits, created_at, updated_at
	`, userID, credits))
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.Get(ctx, userID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, classify("insert credit account", err)
	}

	mut := ports.Mutation{Kind: domain.LedgerInitial, Description: "initial balance"}
	if _, err := insertEntry(ctx, tx, userID, mut, credits, acc.Credits); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, classify("commit initialize", err)
	}
	return acc, true, nil
}

// References are unique per (user_id, kind, reference). A replayed
// mutation is one whose reference this user already spent on the same kind.
const (
	debitSQL = `
		UPDATE credit_accounts
		SET credits = credits - $2, updated_at = NOW()
		WHERE uid = $1 AND credits >= $2
		RETURNING credits`

	creditSQL = `
		UPDATE credit_accounts
		SET credits = credits + $2, updated_at = NOW()
		WHERE uid = $1
		RETURNING credits`

	replayCheckSQL = `
		SELECT EXISTS(
			SELECT 1 FROM ledger_entries
			WHERE user_id = $1 AND kind = $2 AND reference = $3
		)`

	insertEntrySQL = `
		INSERT INTO ledger_entries (user_id, kind, amount, balance_after, reference, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, kind, reference) DO NOTHING`
)

// Debit runs the conditional decrement and its ledger entry in one
// transaction. The UPDATE only matches while credits cover amount, so
// concurrent debits can never drive the balance negative.
func (r *accountRepo) Debit(ctx context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	return r.apply(ctx, userID, mut, -amount, debitSQL, amount)
}

func (r *accountRepo) Credit(ctx context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	return r.apply(ctx, userID, mut, amount, creditSQL, amount)
}

func (r *accountRepo) apply(ctx context.Context, userID string, mut ports.Mutation, delta int, update string, amount int) (int, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, classify("begin ledger mutation", err)
	}
	defer tx.Rollback(ctx)

	if mut.Reference != "" {
		var seen bool
		err := tx.QueryRow(ctx, replayCheckSQL, userID, string(mut.Kind), mut.Reference).Scan(&seen)
		if err != nil {
			return 0, classify("check ledger reference", err)
		}
		if seen {
			return r.currentBalance(ctx, tx, userID)
		}
	}

	var balance int
	err = tx.QueryRow(ctx, update, userID, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := r.currentBalance(ctx, tx, userID); err != nil {
			return 0, err
		}
		return 0, domain.ErrInsufficientCredits
	}
	if err != nil {
		return 0, classify(fmt.Sprintf("%s credits", mut.Kind), err)
	}

	inserted, err := insertEntry(ctx, tx, userID, mut, delta, balance)
	if err != nil {
		return 0, err
	}
	if !inserted {
		// A concurrent call with the same reference committed first; roll
		// this one back and report the balance it left.
		if err := tx.Rollback(ctx); err != nil {
			return 0, classify("rollback replayed mutation", err)
		}
		acc, err := r.Get(ctx, userID)
		if err != nil {
			return 0, err
		}
		return acc.Credits, nil
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, classify("commit ledger mutation", err)
	}
	return balance, nil
}

func (r *accountRepo) currentBalance(ctx context.Context, tx pgx.Tx, userID string) (int, error) {
	var credits int
	err := tx.QueryRow(ctx, `SELECT credits FROM credit_accounts WHERE uid = $1`, userID).Scan(&credits)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		return 0, classify("read balance", err)
	}
	return credits, nil
}

// insertEntry records a mutation. It reports false when the reference was
// already taken.
func insertEntry(ctx context.Context, tx pgx.Tx, userID string, mut ports.Mutation, amount, balance int) (bool, error) {
	result, err := tx.Exec(ctx, insertEntrySQL, userID, string(mut.Kind), amount, balance, nullableString(mut.Reference), mut.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, classify("insert ledger entry", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *accountRepo) History(ctx context.Context, userID string, limit int) ([]*domain.LedgerEntry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `
		SELECT id, user_id, kind, amount, balance_after, COALESCE(reference, ''), description, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, classify("query ledger entries", err)
	}
	defer rows.Close()

	entries := []*domain.LedgerEntry{}
	for rows.Next() {
		var (
			e    domain.LedgerEntry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Amount, &e.BalanceAfter, &e.Reference, &e.Description, &e.CreatedAt); err != nil {
			return nil, classify("scan ledger entry", err)
		}
		e.Kind = domain.LedgerKind(kind)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate ledger entries", err)
	}
	return entries, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	if err := row.Scan(&acc.UID, &acc.Credits, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	return &acc, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
