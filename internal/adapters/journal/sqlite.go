package journal

// sqlite.go — diario de runs en SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `runs`: una fila por pasada completa con los contadores del resumen.
//   - `listings`: una fila por item procesado, con outcome y desglose.
//   - Prune automático al arrancar: runs (y sus listings) > 30 días.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/steamseller/internal/domain"
)

const schema = `
-- Una fila por run completo
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    total       INTEGER  NOT NULL DEFAULT 0,
    listed      INTEGER  NOT NULL DEFAULT 0,
    skipped_type      INTEGER NOT NULL DEFAULT 0,
    skipped_liquidity INTEGER NOT NULL DEFAULT 0,
    skipped_price     INTEGER NOT NULL DEFAULT 0,
    skipped_data      INTEGER NOT NULL DEFAULT 0,
    failed            INTEGER NOT NULL DEFAULT 0
);

-- Una fila por item procesado en un run
CREATE TABLE IF NOT EXISTS listings (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id           TEXT NOT NULL REFERENCES runs(id),
    asset_id         TEXT NOT NULL,
    market_hash_name TEXT,
    category         TEXT NOT NULL,
    outcome          TEXT NOT NULL,
    price            REAL    NOT NULL DEFAULT 0,
    fee_cents        INTEGER NOT NULL DEFAULT 0,
    net_cents        INTEGER NOT NULL DEFAULT 0,
    listed           INTEGER NOT NULL DEFAULT 0,
    confirmation     TEXT,
    reason           TEXT,
    created_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started   ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_listings_run   ON listings(run_id);
CREATE INDEX IF NOT EXISTS idx_listings_asset ON listings(asset_id);
`

// retentionRuns es cuánto histórico de runs se conserva.
const retentionRuns = 30 * 24 * time.Hour

// SQLiteJournal implementa ports.Journal usando SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada, aplica el
// schema y limpia runs antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// SaveRun persiste el resumen del run y una fila por item procesado, todo en
// una transacción.
func (j *SQLiteJournal) SaveRun(ctx context.Context, summary domain.RunSummary, results []domain.ItemResult) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs
			(id, started_at, finished_at, total, listed,
			 skipped_type, skipped_liquidity, skipped_price, skipped_data, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		summary.StartedAt.UTC(),
		summary.Finished.UTC(),
		summary.Total,
		summary.Listed,
		summary.SkippedType,
		summary.SkippedLiquidity,
		summary.SkippedPrice,
		summary.SkippedData,
		summary.Failed,
	); err != nil {
		return fmt.Errorf("journal.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings
			(run_id, asset_id, market_hash_name, category, outcome, price,
			 fee_cents, net_cents, listed, confirmation, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("journal.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range results {
		listed := 0
		if r.Listed {
			listed = 1
		}
		outcome := r.Decision.Outcome.String()
		if r.Failed {
			outcome = "failed"
		}
		if _, err := stmt.ExecContext(ctx,
			summary.ID,
			r.Item.AssetID,
			r.Item.MarketHashName,
			r.Item.Category.String(),
			outcome,
			r.Decision.Price,
			r.FeeCents,
			r.NetCents,
			listed,
			r.Confirmation.String(),
			r.Reason,
			now,
		); err != nil {
			return fmt.Errorf("journal.SaveRun: insert listing %s: %w", r.Item.AssetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal.SaveRun: commit: %w", err)
	}
	return nil
}

// RunHistory devuelve los resúmenes de runs en el rango dado, más reciente
// primero.
func (j *SQLiteJournal) RunHistory(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, total, listed,
		       skipped_type, skipped_liquidity, skipped_price, skipped_data, failed
		FROM runs
		WHERE started_at BETWEEN ? AND ?
		ORDER BY started_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("journal.RunHistory: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var s domain.RunSummary
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.Finished, &s.Total, &s.Listed,
			&s.SkippedType, &s.SkippedLiquidity, &s.SkippedPrice, &s.SkippedData, &s.Failed); err != nil {
			return nil, fmt.Errorf("journal.RunHistory: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close cierra la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld borra runs (y sus listings) más viejos que la retención.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM listings WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff); err != nil {
		slog.Warn("journal prune listings failed", "err", err)
		return
	}
	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM runs WHERE started_at < ?`, cutoff); err != nil {
		slog.Warn("journal prune runs failed", "err", err)
	}
}
