package ports

import (
	"context"

	"stockPilotBot/internal/domain"
)

// TradeJournal records the terminal outcome of every executed TradeRequest.
// Journal failures are reported to the caller but must never be allowed to
// fail the trade itself; the execution policy logs and continues.
type TradeJournal interface {
	// Record saves one trade record and returns its assigned ID.
	Record(ctx context.Context, rec *domain.TradeRecord) (int64, error)
	// RecentBySymbol retrieves the most recent records for a symbol, up to limit.
	RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error)
	// CountToday counts the records written today.
	CountToday(ctx context.Context) (int, error)
}
