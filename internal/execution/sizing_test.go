package execution

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func i64(v int64) *int64 { return &v }

func TestComputeQuantity_BuyAutoSized(t *testing.T) {
	acct := &domain.AccountSnapshot{
		Cash:           dec("50000"),
		BuyingPower:    dec("50000"),
		PortfolioValue: dec("100000"),
	}

	// 10% of 100k is 10k; at $200 that is 50 shares and buying power allows 250.
	qty, err := ComputeQuantity(domain.Buy, acct, nil, dec("200"), dec("0.10"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50), qty)
}

func TestComputeQuantity_BuyBoundedByBuyingPower(t *testing.T) {
	acct := &domain.AccountSnapshot{
		Cash:           dec("1000"),
		BuyingPower:    dec("1000"),
		PortfolioValue: dec("100000"),
	}

	// Cap allows 10k / 200 = 50 shares, but buying power only covers 5.
	qty, err := ComputeQuantity(domain.Buy, acct, nil, dec("200"), dec("0.10"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)
}

func TestComputeQuantity_BuyExistingPositionReducesCap(t *testing.T) {
	acct := &domain.AccountSnapshot{
		BuyingPower:    dec("50000"),
		PortfolioValue: dec("100000"),
	}
	pos := &domain.PositionSnapshot{
		Symbol:      "AAPL",
		Quantity:    30,
		MarketValue: dec("6000"),
	}

	// Cap is 10k, 6k already held, so 4k remains: 20 shares at $200.
	qty, err := ComputeQuantity(domain.Buy, acct, pos, dec("200"), dec("0.10"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), qty)
}

func TestComputeQuantity_BuyAtCap(t *testing.T) {
	acct := &domain.AccountSnapshot{
		BuyingPower:    dec("50000"),
		PortfolioValue: dec("100000"),
	}
	pos := &domain.PositionSnapshot{
		Symbol:      "AAPL",
		Quantity:    50,
		MarketValue: dec("10000"),
	}

	_, err := ComputeQuantity(domain.Buy, acct, pos, dec("200"), dec("0.10"), nil)
	assert.ErrorIs(t, err, ports.ErrMaxPositionExceeded)
}

func TestComputeQuantity_BuyExplicitExceedsBuyingPower(t *testing.T) {
	acct := &domain.AccountSnapshot{
		BuyingPower:    dec("1000"),
		PortfolioValue: dec("100000"),
	}

	_, err := ComputeQuantity(domain.Buy, acct, nil, dec("200"), dec("0.10"), i64(10))
	assert.ErrorIs(t, err, ports.ErrInsufficientFunds)
}

func TestComputeQuantity_BuyExplicitExceedsCap(t *testing.T) {
	acct := &domain.AccountSnapshot{
		BuyingPower:    dec("50000"),
		PortfolioValue: dec("100000"),
	}

	// 60 shares at $200 is 12k, over the 10k per-symbol cap despite ample funds.
	_, err := ComputeQuantity(domain.Buy, acct, nil, dec("200"), dec("0.10"), i64(60))
	assert.ErrorIs(t, err, ports.ErrMaxPositionExceeded)
}

func TestComputeQuantity_BuyExplicitWithinBounds(t *testing.T) {
	acct := &domain.AccountSnapshot{
		BuyingPower:    dec("50000"),
		PortfolioValue: dec("100000"),
	}

	qty, err := ComputeQuantity(domain.Buy, acct, nil, dec("200"), dec("0.10"), i64(25))
	require.NoError(t, err)
	assert.Equal(t, int64(25), qty)
}

func TestComputeQuantity_SellFullPosition(t *testing.T) {
	pos := &domain.PositionSnapshot{Symbol: "AAPL", Quantity: 40}

	qty, err := ComputeQuantity(domain.Sell, nil, pos, dec("200"), dec("0.10"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(40), qty)
}

func TestComputeQuantity_SellPartial(t *testing.T) {
	pos := &domain.PositionSnapshot{Symbol: "AAPL", Quantity: 40}

	qty, err := ComputeQuantity(domain.Sell, nil, pos, dec("200"), dec("0.10"), i64(15))
	require.NoError(t, err)
	assert.Equal(t, int64(15), qty)
}

func TestComputeQuantity_SellMoreThanHeld(t *testing.T) {
	pos := &domain.PositionSnapshot{Symbol: "AAPL", Quantity: 40}

	_, err := ComputeQuantity(domain.Sell, nil, pos, dec("200"), dec("0.10"), i64(41))
	assert.ErrorIs(t, err, ports.ErrInsufficientPosition)
}

func TestComputeQuantity_SellNoPosition(t *testing.T) {
	_, err := ComputeQuantity(domain.Sell, nil, nil, dec("200"), dec("0.10"), i64(1))
	assert.ErrorIs(t, err, ports.ErrInsufficientPosition)
}

func TestComputeQuantity_NonPositivePrice(t *testing.T) {
	acct := &domain.AccountSnapshot{BuyingPower: dec("1000"), PortfolioValue: dec("1000")}

	_, err := ComputeQuantity(domain.Buy, acct, nil, decimal.Zero, dec("0.10"), nil)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}
