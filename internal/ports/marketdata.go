package ports

import (
	"context"

	"stockPilotBot/internal/domain"
)

// MarketDataProvider supplies historical candles and descriptive data for
// indicator computation and watchlist scanning.
type MarketDataProvider interface {
	// GetMinuteBars retrieves up to limit most recent 1-minute bars.
	GetMinuteBars(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error)

	// GetDailyBars retrieves up to limit most recent daily bars.
	GetDailyBars(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error)

	// GetStockInfo retrieves the descriptive card for a symbol.
	GetStockInfo(ctx context.Context, symbol string) (*domain.StockInfo, error)
}
