package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Journal implements the ports.TradeJournal interface using SQLite. Prices
// are stored as their exact decimal string representation.
type Journal struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite journal.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewJournal creates a new SQLite journal instance.
func NewJournal(cfg Config) (*Journal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite journal")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trades.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between the bot and ad-hoc queries.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, logger: cfg.Logger}
	if err := j.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize journal schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite journal ready", map[string]interface{}{"path": dbPath})
	return j, nil
}

func (j *Journal) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price TEXT NOT NULL,
		total_value TEXT NOT NULL,
		result TEXT NOT NULL,
		reason TEXT NULL,
		attempts INTEGER NOT NULL,
		executed_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_executed_at ON trades (symbol, executed_at);
	CREATE INDEX IF NOT EXISTS idx_trades_executed_at ON trades (executed_at);
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		j.logger.Info(context.Background(), "Closing SQLite journal")
		return j.db.Close()
	}
	return nil
}

// Record saves one trade record and returns its assigned ID.
func (j *Journal) Record(ctx context.Context, rec *domain.TradeRecord) (int64, error) {
	const query = `
	INSERT INTO trades (symbol, side, quantity, price, total_value, result, reason, attempts, executed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	executedAt := rec.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now().UTC()
	}

	result, err := j.db.ExecContext(ctx, query,
		rec.Symbol, string(rec.Side), rec.Quantity, rec.Price.String(), rec.TotalValue.String(),
		string(rec.Result), string(rec.Reason), rec.Attempts, executedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %w: %w", rec.Symbol, ports.ErrInsertFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", rec.Symbol, err)
	}
	rec.ID = id
	j.logger.Debug(ctx, "Trade recorded", map[string]interface{}{
		"tradeID": id,
		"symbol":  rec.Symbol,
		"result":  rec.Result,
	})
	return id, nil
}

// RecentBySymbol retrieves the most recent records for a symbol, newest first.
func (j *Journal) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error) {
	const query = `
	SELECT id, symbol, side, quantity, price, total_value, result, reason, attempts, executed_at
	FROM trades
	WHERE symbol = ?
	ORDER BY executed_at DESC
	LIMIT ?`

	if limit <= 0 {
		limit = 10
	}

	rows, err := j.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var records []*domain.TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row for symbol %s: %w", symbol, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows for symbol %s: %w", symbol, err)
	}
	return records, nil
}

// CountToday counts the records written since UTC midnight.
func (j *Journal) CountToday(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM trades WHERE executed_at >= ?`

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	var count int
	if err := j.db.QueryRowContext(ctx, query, midnight).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count today's trades: %w: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (*domain.TradeRecord, error) {
	var (
		rec        domain.TradeRecord
		side       string
		price      string
		totalValue string
		result     string
		reason     sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.Symbol, &side, &rec.Quantity, &price, &totalValue,
		&result, &reason, &rec.Attempts, &rec.ExecutedAt); err != nil {
		return nil, err
	}

	rec.Side = domain.OrderSide(side)
	rec.Result = domain.OutcomeResult(result)
	if reason.Valid {
		rec.Reason = domain.RejectReason(reason.String)
	}

	var err error
	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("could not parse stored price '%s': %w", price, err)
	}
	if rec.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
		return nil, fmt.Errorf("could not parse stored total value '%s': %w", totalValue, err)
	}
	return &rec, nil
}
