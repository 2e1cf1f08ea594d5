package alpacaclient

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

// GetQuote retrieves the latest top-of-book quote together with the market
// session state. The session state rides along so callers pricing an order
// need exactly one call.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	op := "GetQuote"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	quote, err := c.md.GetLatestQuote(symbol, marketdata.GetLatestQuoteRequest{})
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	if quote == nil || (quote.AskPrice <= 0 && quote.BidPrice <= 0) {
		return nil, fmt.Errorf("%s: symbol %s: %w", op, symbol, ports.ErrQuoteUnavailable)
	}

	open, err := c.IsMarketOpen(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		Symbol:     symbol,
		AskPrice:   decimal.NewFromFloat(quote.AskPrice),
		BidPrice:   decimal.NewFromFloat(quote.BidPrice),
		MarketOpen: open,
		At:         quote.Timestamp,
	}, nil
}

// GetMinuteBars retrieves up to limit most recent 1-minute bars.
func (c *Client) GetMinuteBars(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
	return c.getBars(ctx, symbol, marketdata.OneMin, limit)
}

// GetDailyBars retrieves up to limit most recent daily bars.
func (c *Client) GetDailyBars(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
	return c.getBars(ctx, symbol, marketdata.OneDay, limit)
}

func (c *Client) getBars(ctx context.Context, symbol string, tf marketdata.TimeFrame, limit int) ([]*domain.Bar, error) {
	op := "GetBars"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bars, err := c.md.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  tf,
		TotalLimit: limit,
	})
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	out := make([]*domain.Bar, 0, len(bars))
	for _, b := range bars {
		out = append(out, &domain.Bar{
			Symbol:    symbol,
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return out, nil
}
