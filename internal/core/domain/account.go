package domain

import "time"

// Account holds a user's prepaid credits. Credits never drops below zero.
type Account struct {
	UID       string    `json:"uid"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LedgerKind string

const (
	LedgerInitial LedgerKind = "initial"
	LedgerDebit   LedgerKind = "debit"
	LedgerCredit  LedgerKind = "credit"
	LedgerRefund  LedgerKind = "refund"
)

// LedgerEntry records one balance mutation. Reference, when set, is unique
// across the ledger and makes the mutation safe to replay.
type LedgerEntry struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Kind         LedgerKind `json:"kind"`
	Amount       int        `json:"amount"`
	BalanceAfter int        `json:"balance_after"`
	Reference    string     `json:"reference,omitempty"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
