// Package storage persists completed reconciliation runs so reporting does
// not require re-parsing the source documents.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harpergrove/skein/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNoRuns is returned when no reconciliation run has been persisted yet.
var ErrNoRuns = errors.New("no reconciliation runs stored")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	generated_at TIMESTAMP NOT NULL,
	source_files TEXT NOT NULL,
	total_deposits TEXT NOT NULL,
	total_debits TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_transactions (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	date TEXT NOT NULL,
	description TEXT NOT NULL,
	raw_description TEXT NOT NULL,
	category TEXT NOT NULL,
	source_file TEXT NOT NULL,
	amount TEXT NOT NULL,
	kind TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_ledger_txns_run ON ledger_transactions(run_id);
`

// Store implements ledger persistence on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and if needed bootstraps) the ledger database at dbPath.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLedger persists one completed run and its transactions atomically.
func (s *Store) SaveLedger(ctx context.Context, ledger model.Ledger) error {
	sourceFiles, err := json.Marshal(ledger.SourceFiles)
	if err != nil {
		return fmt.Errorf("failed to encode source files: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, generated_at, source_files, total_deposits, total_debits)
		VALUES (?, ?, ?, ?, ?)`,
		ledger.RunID,
		ledger.GeneratedAt.UTC().Format(time.RFC3339Nano),
		string(sourceFiles),
		ledger.TotalDeposits.StringFixed(2),
		ledger.TotalDebits.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_transactions (
			run_id, seq, date, description, raw_description,
			category, source_file, amount, kind
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range ledger.Transactions {
		if _, err := stmt.ExecContext(ctx,
			ledger.RunID,
			i,
			txn.Date.Format("2006-01-02"),
			txn.Description,
			txn.RawDescription,
			txn.Category,
			txn.SourceFile,
			txn.Amount.StringFixed(2),
			string(txn.Kind),
		); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LatestLedger loads the most recently generated run in full.
func (s *Store) LatestLedger(ctx context.Context) (model.Ledger, error) {
	var (
		ledger      model.Ledger
		generatedAt string
		sourceFiles string
		deposits    string
		debits      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, generated_at, source_files, total_deposits, total_debits
		FROM runs ORDER BY generated_at DESC LIMIT 1`).
		Scan(&ledger.RunID, &generatedAt, &sourceFiles, &deposits, &debits)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ledger{}, ErrNoRuns
	}
	if err != nil {
		return model.Ledger{}, fmt.Errorf("failed to load latest run: %w", err)
	}

	if ledger.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return model.Ledger{}, fmt.Errorf("corrupt generated_at %q: %w", generatedAt, err)
	}
	if err = json.Unmarshal([]byte(sourceFiles), &ledger.SourceFiles); err != nil {
		return model.Ledger{}, fmt.Errorf("corrupt source_files: %w", err)
	}
	if ledger.TotalDeposits, err = decimal.NewFromString(deposits); err != nil {
		return model.Ledger{}, fmt.Errorf("corrupt total_deposits %q: %w", deposits, err)
	}
	if ledger.TotalDebits, err = decimal.NewFromString(debits); err != nil {
		return model.Ledger{}, fmt.Errorf("corrupt total_debits %q: %w", debits, err)
	}

	if ledger.Transactions, err = s.loadTransactions(ctx, ledger.RunID); err != nil {
		return model.Ledger{}, err
	}
	return ledger, nil
}

func (s *Store) loadTransactions(ctx context.Context, runID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, description, raw_description, category, source_file, amount, kind
		FROM ledger_transactions WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var (
			txn    model.Transaction
			date   string
			amount string
			kind   string
		)
		if err := rows.Scan(&date, &txn.Description, &txn.RawDescription,
			&txn.Category, &txn.SourceFile, &amount, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if txn.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("corrupt date %q: %w", date, err)
		}
		if txn.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		txn.Kind = model.Kind(kind)
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// RunInfo is one row of run history.
type RunInfo struct {
	GeneratedAt   time.Time
	RunID         string
	TotalDeposits decimal.Decimal
	TotalDebits   decimal.Decimal
	Transactions  int
}

// ListRuns returns run history, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.generated_at, r.total_deposits, r.total_debits,
		       (SELECT COUNT(*) FROM ledger_transactions t WHERE t.run_id = r.id)
		FROM runs r ORDER BY r.generated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunInfo
	for rows.Next() {
		var (
			info        RunInfo
			generatedAt string
			deposits    string
			debits      string
		)
		if err := rows.Scan(&info.RunID, &generatedAt, &deposits, &debits, &info.Transactions); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if info.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
			return nil, fmt.Errorf("corrupt generated_at %q: %w", generatedAt, err)
		}
		if info.TotalDeposits, err = decimal.NewFromString(deposits); err != nil {
			return nil, fmt.Errorf("corrupt total_deposits %q: %w", deposits, err)
		}
		if info.TotalDebits, err = decimal.NewFromString(debits); err != nil {
			return nil, fmt.Errorf("corrupt total_debits %q: %w", debits, err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}
