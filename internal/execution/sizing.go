package execution

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

// ComputeQuantity is the position sizing guard. It is a pure function of its
// inputs: no broker calls, no hidden state.
//
// For buys without an explicit quantity it sizes the order to the smaller of
// the per-symbol position cap (portfolioValue × maxFraction, less the value
// already held) and available buying power. For buys with an explicit
// quantity it validates the same two bounds. Sells are bounded by the held
// quantity.
//
// Returns ErrMaxPositionExceeded, ErrInsufficientFunds or
// ErrInsufficientPosition (wrapped with detail) when no valid quantity
// exists; a returned quantity is always a positive integer.
func ComputeQuantity(
	side domain.OrderSide,
	acct *domain.AccountSnapshot,
	pos *domain.PositionSnapshot,
	price decimal.Decimal,
	maxFraction decimal.Decimal,
	requested *int64,
) (int64, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("reference price must be positive, got %s: %w", price, ports.ErrInvalidRequest)
	}

	switch side {
	case domain.Sell:
		return sellQuantity(pos, requested)
	case domain.Buy:
		return buyQuantity(acct, pos, price, maxFraction, requested)
	default:
		return 0, fmt.Errorf("unknown order side %q: %w", side, ports.ErrInvalidRequest)
	}
}

func sellQuantity(pos *domain.PositionSnapshot, requested *int64) (int64, error) {
	held := int64(0)
	if pos != nil {
		held = pos.Quantity
	}
	if held <= 0 {
		return 0, fmt.Errorf("no shares held: %w", ports.ErrInsufficientPosition)
	}
	if requested == nil {
		return held, nil
	}
	if *requested <= 0 {
		return 0, fmt.Errorf("sell quantity must be positive, got %d: %w", *requested, ports.ErrInvalidRequest)
	}
	if *requested > held {
		return 0, fmt.Errorf("requested %d shares but only %d held: %w", *requested, held, ports.ErrInsufficientPosition)
	}
	return *requested, nil
}

func buyQuantity(
	acct *domain.AccountSnapshot,
	pos *domain.PositionSnapshot,
	price decimal.Decimal,
	maxFraction decimal.Decimal,
	requested *int64,
) (int64, error) {
	if acct == nil {
		return 0, fmt.Errorf("account snapshot required for buy sizing: %w", ports.ErrInvalidRequest)
	}

	maxTradeValue := acct.PortfolioValue.Mul(maxFraction)
	positionValue := decimal.Zero
	if pos != nil {
		positionValue = pos.MarketValue
	}
	// Value still available under the per-symbol cap.
	capRemaining := maxTradeValue.Sub(positionValue)

	if requested != nil {
		if *requested <= 0 {
			return 0, fmt.Errorf("buy quantity must be positive, got %d: %w", *requested, ports.ErrInvalidRequest)
		}
		orderValue := price.Mul(decimal.NewFromInt(*requested))
		if orderValue.GreaterThan(acct.BuyingPower) {
			return 0, fmt.Errorf("order value %s exceeds buying power %s: %w",
				orderValue.StringFixed(2), acct.BuyingPower.StringFixed(2), ports.ErrInsufficientFunds)
		}
		if orderValue.GreaterThan(capRemaining) {
			return 0, fmt.Errorf("order value %s exceeds remaining position cap %s: %w",
				orderValue.StringFixed(2), capRemaining.StringFixed(2), ports.ErrMaxPositionExceeded)
		}
		return *requested, nil
	}

	byCap := capRemaining.Div(price).IntPart()
	byPower := acct.BuyingPower.Div(price).IntPart()
	qty := byCap
	if byPower < qty {
		qty = byPower
	}
	if qty <= 0 {
		return 0, fmt.Errorf("position cap %s leaves no room at price %s (held value %s): %w",
			maxTradeValue.StringFixed(2), price.StringFixed(2), positionValue.StringFixed(2), ports.ErrMaxPositionExceeded)
	}
	return qty, nil
}
