package discordbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockPilotBot/internal/app"
	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/watchlist"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockService struct {
	ExecuteTradeFunc func(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome
	AnalyzeFunc      func(ctx context.Context, symbol string) (*app.Analysis, error)
	PositionFunc     func(ctx context.Context, symbol string) (*domain.PositionSnapshot, error)
	HistoryFunc      func(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error)
	TradesTodayFunc  func(ctx context.Context) (int, error)
	ScanFunc         func(ctx context.Context, limit int) ([]watchlist.Entry, error)

	lastRequest *domain.TradeRequest
}

func (m *mockService) ExecuteTrade(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome {
	m.lastRequest = &req
	if m.ExecuteTradeFunc != nil {
		return m.ExecuteTradeFunc(ctx, req)
	}
	return domain.OrderOutcome{Result: domain.OutcomeFilled, Symbol: req.Symbol, Side: req.Side}
}

func (m *mockService) Analyze(ctx context.Context, symbol string) (*app.Analysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, symbol)
	}
	return &app.Analysis{
		Info:       &domain.StockInfo{Symbol: symbol, Name: symbol + " Inc.", Exchange: "NASDAQ", Tradable: true},
		Indicators: &domain.IndicatorSet{Symbol: symbol, Price: 200, RSI: 55},
		Sentiment:  "neutral",
		Decision:   "Hold - 5 - no edge",
	}, nil
}

func (m *mockService) Position(ctx context.Context, symbol string) (*domain.PositionSnapshot, error) {
	if m.PositionFunc != nil {
		return m.PositionFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockService) Positions(ctx context.Context) ([]*domain.PositionSnapshot, error) {
	return nil, nil
}

func (m *mockService) Account(ctx context.Context) (*domain.AccountSnapshot, error) {
	return &domain.AccountSnapshot{
		Cash:           decimal.NewFromInt(50000),
		BuyingPower:    decimal.NewFromInt(50000),
		PortfolioValue: decimal.NewFromInt(100000),
	}, nil
}

func (m *mockService) TopGainers(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockService) TopMomentum(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return m.TopGainers(ctx, limit)
}

func (m *mockService) TopBuyingPressure(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return m.TopGainers(ctx, limit)
}

func (m *mockService) TradesToday(ctx context.Context) (int, error) {
	if m.TradesTodayFunc != nil {
		return m.TradesTodayFunc(ctx)
	}
	return 2, nil
}

func (m *mockService) History(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, symbol, limit)
	}
	return nil, nil
}

func newTestBot(service *mockService) *Bot {
	return &Bot{
		service:   service,
		logger:    nopLogger{},
		cooldowns: newCooldownTracker(30 * time.Second),
		timeout:   time.Minute,
	}
}

func TestDispatch_HelpAndStart(t *testing.T) {
	b := newTestBot(&mockService{})

	for _, cmd := range []string{"!help", "!start"} {
		replies := b.dispatch(context.Background(), "user-1", cmd)
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0], "!trade <TICKER>")
	}
}

func TestDispatch_UnknownCommandStaysSilent(t *testing.T) {
	b := newTestBot(&mockService{})

	assert.Empty(t, b.dispatch(context.Background(), "user-1", "!weather"))
	assert.Empty(t, b.dispatch(context.Background(), "user-1", "!"))
}

func TestDispatch_BuyWithQuantity(t *testing.T) {
	svc := &mockService{}
	b := newTestBot(svc)

	replies := b.dispatch(context.Background(), "user-1", "!buy aapl 25")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "✅")

	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "AAPL", svc.lastRequest.Symbol)
	assert.Equal(t, domain.Buy, svc.lastRequest.Side)
	require.NotNil(t, svc.lastRequest.Quantity)
	assert.Equal(t, int64(25), *svc.lastRequest.Quantity)
}

func TestDispatch_SellWithoutQuantity(t *testing.T) {
	svc := &mockService{}
	b := newTestBot(svc)

	b.dispatch(context.Background(), "user-1", "!sell $TSLA")

	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "TSLA", svc.lastRequest.Symbol)
	assert.Equal(t, domain.Sell, svc.lastRequest.Side)
	assert.Nil(t, svc.lastRequest.Quantity)
}

func TestDispatch_BuyInvalidQuantity(t *testing.T) {
	svc := &mockService{}
	b := newTestBot(svc)

	replies := b.dispatch(context.Background(), "user-1", "!buy AAPL -5")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Invalid quantity")
	assert.Nil(t, svc.lastRequest)
}

func TestDispatch_BuyMissingTicker(t *testing.T) {
	b := newTestBot(&mockService{})

	replies := b.dispatch(context.Background(), "user-1", "!buy")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Missing ticker")
}

func TestDispatch_TradeCooldown(t *testing.T) {
	b := newTestBot(&mockService{})
	ctx := context.Background()

	first := b.dispatch(ctx, "user-1", "!trade AAPL")
	require.Len(t, first, 2)
	assert.Contains(t, first[1], "Trading Analysis for $AAPL")

	// Immediate second request from the same user hits the cooldown.
	second := b.dispatch(ctx, "user-1", "!trade AAPL")
	require.Len(t, second, 1)
	assert.Contains(t, second[0], "Please wait")

	// A different user is unaffected.
	other := b.dispatch(ctx, "user-2", "!trade AAPL")
	assert.Len(t, other, 2)
}

func TestDispatch_TradeFailureReleasesCooldown(t *testing.T) {
	svc := &mockService{
		AnalyzeFunc: func(ctx context.Context, symbol string) (*app.Analysis, error) {
			return nil, errors.New("no bars")
		},
	}
	b := newTestBot(svc)
	ctx := context.Background()

	replies := b.dispatch(ctx, "user-1", "!trade AAPL")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Error analyzing")

	// The failed attempt must not lock the user out.
	svc.AnalyzeFunc = nil
	replies = b.dispatch(ctx, "user-1", "!trade AAPL")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Trading Analysis")
}

func TestDispatch_PositionNotHeld(t *testing.T) {
	b := newTestBot(&mockService{})

	replies := b.dispatch(context.Background(), "user-1", "!position NVDA")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "No position found for NVDA")
}

func TestDispatch_Account(t *testing.T) {
	b := newTestBot(&mockService{})

	replies := b.dispatch(context.Background(), "user-1", "!account")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Account Information")
	assert.Contains(t, replies[0], "$50000.00")
	assert.Contains(t, replies[0], "Trades Today: 2")
}

func TestDispatch_Gainers(t *testing.T) {
	var gotLimit int
	svc := &mockService{
		ScanFunc: func(ctx context.Context, limit int) ([]watchlist.Entry, error) {
			gotLimit = limit
			return []watchlist.Entry{
				{Symbol: "NVDA", Price: 880.10, ChangePct: 4.2, Score: 4.2},
			}, nil
		},
	}
	b := newTestBot(svc)

	replies := b.dispatch(context.Background(), "user-1", "!gainers")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1], "Top Gainers")
	assert.Contains(t, replies[1], "$NVDA")
	assert.Equal(t, 0, gotLimit)

	replies = b.dispatch(context.Background(), "user-1", "!gainers 3")
	require.Len(t, replies, 2)
	assert.Equal(t, 3, gotLimit)
}

func TestDispatch_Gainers_InvalidCount(t *testing.T) {
	b := newTestBot(&mockService{})

	replies := b.dispatch(context.Background(), "user-1", "!gainers nope")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "positive number")
}

func TestFormatOutcome_PerReasonMessages(t *testing.T) {
	tests := []struct {
		name    string
		outcome domain.OrderOutcome
		want    string
	}{
		{
			name: "filled",
			outcome: domain.OrderOutcome{
				Result:         domain.OutcomeFilled,
				Symbol:         "AAPL",
				Side:           domain.Buy,
				FilledQuantity: 50,
				FilledPrice:    decimal.RequireFromString("200.10"),
				TotalValue:     decimal.RequireFromString("10005"),
			},
			want: "50 shares of AAPL at $200.10",
		},
		{
			name: "not filled",
			outcome: domain.OrderOutcome{
				Result:          domain.OutcomeNotFilled,
				Symbol:          "AAPL",
				Side:            domain.Buy,
				Attempts:        2,
				LastQuotedPrice: decimal.RequireFromString("202.00"),
			},
			want: "did not fill after 2 attempts",
		},
		{
			name: "wash trade",
			outcome: domain.OrderOutcome{
				Result: domain.OutcomeRejected,
				Symbol: "AAPL",
				Side:   domain.Buy,
				Reason: domain.ReasonWashTrade,
			},
			want: "wash trade",
		},
		{
			name: "insufficient funds",
			outcome: domain.OrderOutcome{
				Result: domain.OutcomeRejected,
				Symbol: "AAPL",
				Side:   domain.Buy,
				Reason: domain.ReasonInsufficientFunds,
			},
			want: "Insufficient buying power",
		},
		{
			name: "gateway failure",
			outcome: domain.OrderOutcome{
				Result: domain.OutcomeError,
				Symbol: "AAPL",
				Reason: domain.ReasonGatewayFailure,
			},
			want: "brokerage error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatOutcome(tt.outcome), tt.want)
		})
	}
}

func TestTruncate_LongMessages(t *testing.T) {
	long := make([]byte, 4000)
	for i := range long {
		long[i] = 'x'
	}

	out := truncate(string(long))
	assert.Len(t, out, maxMessageLen)
	assert.True(t, len(out) <= maxMessageLen)
}

func TestCooldownTracker_ClaimAndRelease(t *testing.T) {
	c := newCooldownTracker(30 * time.Second)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	_, ok := c.Claim("u1")
	assert.True(t, ok)

	remaining, ok := c.Claim("u1")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, remaining)

	// After the interval passes, the user may claim again.
	current = current.Add(31 * time.Second)
	_, ok = c.Claim("u1")
	assert.True(t, ok)

	// Release lets the user retry immediately.
	c.Release("u1")
	_, ok = c.Claim("u1")
	assert.True(t, ok)
}
