package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockPilotBot/internal/domain"
)

type mockProvider struct {
	GetMinuteBarsFunc func(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error)
	GetDailyBarsFunc  func(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error)
	GetStockInfoFunc  func(ctx context.Context, symbol string) (*domain.StockInfo, error)
}

func (m *mockProvider) GetMinuteBars(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
	return m.GetMinuteBarsFunc(ctx, symbol, limit)
}

func (m *mockProvider) GetDailyBars(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
	if m.GetDailyBarsFunc != nil {
		return m.GetDailyBarsFunc(ctx, symbol, limit)
	}
	return nil, nil
}

func (m *mockProvider) GetStockInfo(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	if m.GetStockInfoFunc != nil {
		return m.GetStockInfoFunc(ctx, symbol)
	}
	return nil, nil
}

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func defaultConfig() Config {
	return Config{
		RSIPeriod:        14,
		RSIOverbought:    70,
		RSIOversold:      30,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		BarLimit:         100,
	}
}

func risingBars(n int) []*domain.Bar {
	now := time.Now()
	bars := make([]*domain.Bar, n)
	for i := range bars {
		bars[i] = &domain.Bar{
			Symbol:    "AAPL",
			Timestamp: now.Add(time.Duration(i-n) * time.Minute),
			Close:     100 + float64(i)*0.5,
			Volume:    1000 + uint64(i),
		}
	}
	return bars
}

func TestService_Indicators(t *testing.T) {
	var requestedLimit int
	provider := &mockProvider{
		GetMinuteBarsFunc: func(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
			requestedLimit = limit
			return risingBars(100), nil
		},
	}

	svc, err := NewService(provider, nopLogger{}, defaultConfig())
	require.NoError(t, err)

	set, err := svc.Indicators(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", set.Symbol)
	assert.Equal(t, 100, requestedLimit)
	assert.InDelta(t, 149.5, set.Price, 0.0001) // close of the latest bar
	assert.Equal(t, uint64(1099), set.Volume)
	// Monotonically rising closes pin RSI at the top and push MACD positive.
	assert.InDelta(t, 100, set.RSI, 0.0001)
	assert.Greater(t, set.MACD, 0.0)
	assert.InDelta(t, set.MACD-set.MACDSignal, set.MACDHist, 1e-9)
}

func TestService_Indicators_ProviderError(t *testing.T) {
	provider := &mockProvider{
		GetMinuteBarsFunc: func(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
			return nil, errors.New("feed down")
		},
	}

	svc, err := NewService(provider, nopLogger{}, defaultConfig())
	require.NoError(t, err)

	_, err = svc.Indicators(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestService_Indicators_InsufficientBars(t *testing.T) {
	provider := &mockProvider{
		GetMinuteBarsFunc: func(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
			return risingBars(10), nil
		},
	}

	svc, err := NewService(provider, nopLogger{}, defaultConfig())
	require.NoError(t, err)

	_, err = svc.Indicators(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestNewService_RaisesBarLimitToIndicatorNeeds(t *testing.T) {
	var requestedLimit int
	provider := &mockProvider{
		GetMinuteBarsFunc: func(ctx context.Context, symbol string, limit int) ([]*domain.Bar, error) {
			requestedLimit = limit
			return risingBars(limit), nil
		},
	}

	cfg := defaultConfig()
	cfg.BarLimit = 5 // below what MACD(12,26,9) needs
	svc, err := NewService(provider, nopLogger{}, cfg)
	require.NoError(t, err)

	_, err = svc.Indicators(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 35, requestedLimit)
}

func TestNewService_Validation(t *testing.T) {
	provider := &mockProvider{}

	_, err := NewService(nil, nopLogger{}, defaultConfig())
	assert.Error(t, err)

	bad := defaultConfig()
	bad.MACDSlowPeriod = 10 // slower than fast
	_, err = NewService(provider, nopLogger{}, bad)
	assert.Error(t, err)
}
