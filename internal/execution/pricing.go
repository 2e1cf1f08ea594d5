package execution

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

// MaxAttempts bounds the number of order submissions per TradeRequest.
// A third attempt is never made.
const MaxAttempts = 2

// Price aggression multipliers. Each retry escalates aggression to raise the
// fill probability while capping slippage at 1% beyond the quoted price.
var (
	buyAggressionFirst  = decimal.RequireFromString("1.005")
	buyAggressionFinal  = decimal.RequireFromString("1.01")
	sellAggressionFirst = decimal.RequireFromString("0.995")
	sellAggressionFinal = decimal.RequireFromString("0.99")
)

// AttemptPlan is the pricing strategy's verdict for one submission attempt.
type AttemptPlan struct {
	Type          domain.OrderType
	LimitPrice    decimal.Decimal // zero when Type is Market
	TimeInForce   domain.TimeInForce
	ExtendedHours bool
}

// PlanAttempt computes how to price the order for the given attempt number.
//
// Attempt 1 uses a market order while the regular session is open; when the
// market is closed it quotes a limit 0.5% through the spread with extended
// hours enabled. Attempt 2 (only reached when attempt 1 did not fill) quotes
// a limit 1% through the spread, extended hours enabled.
func PlanAttempt(side domain.OrderSide, quote *domain.Quote, attempt int) (AttemptPlan, error) {
	if quote == nil {
		return AttemptPlan{}, fmt.Errorf("quote required for pricing: %w", ports.ErrQuoteUnavailable)
	}
	if attempt < 1 || attempt > MaxAttempts {
		return AttemptPlan{}, fmt.Errorf("attempt %d out of range [1,%d]: %w", attempt, MaxAttempts, ports.ErrInvalidRequest)
	}

	if attempt == 1 && quote.MarketOpen {
		return AttemptPlan{
			Type:        domain.Market,
			TimeInForce: domain.GoodTillCanceled,
		}, nil
	}

	ref := quote.AskPrice
	mult := buyAggressionFirst
	if attempt == MaxAttempts {
		mult = buyAggressionFinal
	}
	if side == domain.Sell {
		ref = quote.BidPrice
		mult = sellAggressionFirst
		if attempt == MaxAttempts {
			mult = sellAggressionFinal
		}
	}
	if ref.LessThanOrEqual(decimal.Zero) {
		return AttemptPlan{}, fmt.Errorf("no usable %s quote for %s: %w", side, quote.Symbol, ports.ErrQuoteUnavailable)
	}

	return AttemptPlan{
		Type:          domain.Limit,
		LimitPrice:    ref.Mul(mult).Round(2),
		TimeInForce:   domain.Day,
		ExtendedHours: true,
	}, nil
}
