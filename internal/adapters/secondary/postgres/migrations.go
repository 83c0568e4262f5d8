package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in order, each in its own transaction, and
// recorded in schema_migrations.
var migrations = []migration{
	{
		version: 1,
		name:    "maps",
		sql: `
			CREATE TABLE IF NOT EXISTS maps (
				uid               UUID PRIMARY KEY,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				owner             TEXT NOT NULL,
				email             TEXT NOT NULL DEFAULT '',
				tier              TEXT NOT NULL,
				status            TEXT NOT NULL DEFAULT 'pending',
				ticket            TEXT NOT NULL UNIQUE,
				title             TEXT NOT NULL DEFAULT '',
				subtitle          TEXT NOT NULL DEFAULT '',
				location          JSONB NOT NULL DEFAULT '{}',
				style             TEXT NOT NULL DEFAULT '',
				composition       TEXT NOT NULL DEFAULT '',
				design            JSONB NOT NULL DEFAULT '{}',
				image_url         TEXT NOT NULL DEFAULT '',
				votes             INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
				voters            TEXT[] NOT NULL DEFAULT '{}',
				purchased_from    UUID,
				is_purchased_copy BOOLEAN NOT NULL DEFAULT FALSE,
				archived_at       TIMESTAMPTZ,
				CONSTRAINT maps_votes_match_voters CHECK (votes = cardinality(voters)),
				CONSTRAINT maps_copy_has_source CHECK (NOT is_purchased_copy OR purchased_from IS NOT NULL)
			)`,
	},
	{
		version: 2,
		name:    "maps_catalog_indexes",
		sql: `
			CREATE INDEX IF NOT EXISTS maps_recency_idx
				ON maps (created_at DESC, uid DESC) WHERE archived_at IS NULL;
			CREATE INDEX IF NOT EXISTS maps_popularity_idx
				ON maps (votes DESC, created_at DESC, uid DESC) WHERE archived_at IS NULL;
			CREATE INDEX IF NOT EXISTS maps_explore_idx
				ON maps (status, is_purchased_copy, tier, created_at DESC, uid DESC) WHERE archived_at IS NULL;
			CREATE INDEX IF NOT EXISTS maps_owner_idx
				ON maps (owner, created_at DESC, uid DESC) WHERE archived_at IS NULL`,
	},
	{
		version: 3,
		name:    "credit_ledger",
		sql: `
			CREATE TABLE IF NOT EXISTS credit_accounts (
				uid        TEXT PRIMARY KEY,
				credits    INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE TABLE IF NOT EXISTS ledger_entries (
				id            BIGSERIAL PRIMARY KEY,
				user_id       TEXT NOT NULL REFERENCES credit_accounts (uid) ON DELETE CASCADE,
				kind          TEXT NOT NULL,
				amount        INTEGER NOT NULL,
				balance_after INTEGER NOT NULL,
				reference     TEXT UNIQUE,
				description   TEXT NOT NULL DEFAULT '',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS ledger_entries_user_idx
				ON ledger_entries (user_id, id DESC)`,
	},
	{
		version: 4,
		name:    "ledger_reference_scope",
		sql: `
			ALTER TABLE ledger_entries DROP CONSTRAINT IF EXISTS ledger_entries_reference_key;
			CREATE UNIQUE INDEX IF NOT EXISTS ledger_entries_reference_idx
				ON ledger_entries (user_id, kind, reference)`,
	},
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return classify("create schema_migrations", err)
	}
	for _, m := range migrations {
		applied, err := applyMigration(ctx, pool, m)
		if err != nil {
			return err
		}
		if applied {
			log.WithFields(log.Fields{"version": m.version, "name": m.name}).Info("migration applied")
		}
	}
	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, m migration) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, classify("begin migration", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return false, classify("check migration", err)
	}
	if exists {
		return false, nil
	}
	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return false, classify(fmt.Sprintf("migration %d (%s)", m.version, m.name), err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return false, classify("record migration", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, classify("commit migration", err)
	}
	return true, nil
}
