package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
	"stockPilotBot/internal/watchlist"
)

// --- Mocks ---

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockExecutor struct {
	lastRequest domain.TradeRequest
	outcome     domain.OrderOutcome
}

func (m *mockExecutor) ExecuteTrade(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome {
	m.lastRequest = req
	return m.outcome
}

type mockAdvisor struct {
	SentimentFunc func(ctx context.Context, query string) (string, error)
	DecisionFunc  func(ctx context.Context, symbol string, ind *domain.IndicatorSet, sentiment string) (string, error)
}

func (m *mockAdvisor) AnalyzeSentiment(ctx context.Context, query string) (string, error) {
	if m.SentimentFunc != nil {
		return m.SentimentFunc(ctx, query)
	}
	return "neutral", nil
}

func (m *mockAdvisor) TradingDecision(ctx context.Context, symbol string, ind *domain.IndicatorSet, sentiment string) (string, error) {
	if m.DecisionFunc != nil {
		return m.DecisionFunc(ctx, symbol, ind, sentiment)
	}
	return "Hold - 5 - no edge", nil
}

type mockMarket struct {
	IndicatorsFunc func(ctx context.Context, symbol string) (*domain.IndicatorSet, error)
	StockInfoFunc  func(ctx context.Context, symbol string) (*domain.StockInfo, error)
}

func (m *mockMarket) Indicators(ctx context.Context, symbol string) (*domain.IndicatorSet, error) {
	if m.IndicatorsFunc != nil {
		return m.IndicatorsFunc(ctx, symbol)
	}
	return &domain.IndicatorSet{Symbol: symbol, Price: 200, RSI: 55}, nil
}

func (m *mockMarket) StockInfo(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	if m.StockInfoFunc != nil {
		return m.StockInfoFunc(ctx, symbol)
	}
	return &domain.StockInfo{Symbol: symbol, Name: symbol + " Inc.", Tradable: true}, nil
}

type mockScanner struct {
	entries []watchlist.Entry
	err     error
}

func (m *mockScanner) TopGainers(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return m.entries, m.err
}
func (m *mockScanner) TopMomentum(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return m.entries, m.err
}
func (m *mockScanner) TopBuyingPressure(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return m.entries, m.err
}

type mockBroker struct {
	account   *domain.AccountSnapshot
	position  *domain.PositionSnapshot
	positions []*domain.PositionSnapshot
}

func (m *mockBroker) GetAccount(ctx context.Context) (*domain.AccountSnapshot, error) {
	return m.account, nil
}

func (m *mockBroker) GetPosition(ctx context.Context, symbol string) (*domain.PositionSnapshot, error) {
	return m.position, nil
}

func (m *mockBroker) ListPositions(ctx context.Context) ([]*domain.PositionSnapshot, error) {
	return m.positions, nil
}

func (m *mockBroker) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return nil, errors.New("not used")
}

func (m *mockBroker) IsMarketOpen(ctx context.Context) (bool, error) { return true, nil }

func (m *mockBroker) SubmitOrder(ctx context.Context, req ports.OrderRequest) (*ports.OrderResponse, error) {
	return nil, errors.New("not used")
}

func (m *mockBroker) GetOrderStatus(ctx context.Context, orderID string) (*ports.OrderResponse, error) {
	return nil, errors.New("not used")
}

func (m *mockBroker) CancelOrder(ctx context.Context, orderID string) error { return nil }

type mockJournal struct {
	records []*domain.TradeRecord
}

func (m *mockJournal) Record(ctx context.Context, rec *domain.TradeRecord) (int64, error) {
	m.records = append(m.records, rec)
	return int64(len(m.records)), nil
}

func (m *mockJournal) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error) {
	return m.records, nil
}

func (m *mockJournal) CountToday(ctx context.Context) (int, error) { return len(m.records), nil }

// --- Helpers ---

type serviceDeps struct {
	broker   *mockBroker
	executor *mockExecutor
	advisor  *mockAdvisor
	market   *mockMarket
	scanner  *mockScanner
	journal  *mockJournal
}

func newTestService(t *testing.T) (*AssistantService, *serviceDeps) {
	t.Helper()
	deps := &serviceDeps{
		broker:   &mockBroker{},
		executor: &mockExecutor{},
		advisor:  &mockAdvisor{},
		market:   &mockMarket{},
		scanner:  &mockScanner{},
		journal:  &mockJournal{},
	}
	svc, err := NewAssistantService(nopLogger{}, deps.broker, deps.executor, deps.advisor, deps.market, deps.scanner, deps.journal)
	require.NoError(t, err)
	return svc, deps
}

// --- Tests ---

func TestNewAssistantService_RequiresDependencies(t *testing.T) {
	_, err := NewAssistantService(nil, nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestExecuteTrade_DelegatesToExecutor(t *testing.T) {
	svc, deps := newTestService(t)
	deps.executor.outcome = domain.OrderOutcome{
		Result:         domain.OutcomeFilled,
		Symbol:         "AAPL",
		FilledQuantity: 10,
	}

	qty := int64(10)
	out := svc.ExecuteTrade(context.Background(), domain.TradeRequest{Symbol: "AAPL", Side: domain.Buy, Quantity: &qty})

	assert.Equal(t, domain.OutcomeFilled, out.Result)
	assert.Equal(t, "AAPL", deps.executor.lastRequest.Symbol)
	assert.Equal(t, domain.Buy, deps.executor.lastRequest.Side)
}

func TestAnalyze_FullPath(t *testing.T) {
	svc, deps := newTestService(t)
	deps.advisor.SentimentFunc = func(ctx context.Context, query string) (string, error) {
		return "bullish", nil
	}
	deps.advisor.DecisionFunc = func(ctx context.Context, symbol string, ind *domain.IndicatorSet, sentiment string) (string, error) {
		assert.Equal(t, "bullish", sentiment)
		return "Buy - 8 - strong momentum", nil
	}

	analysis, err := svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL Inc.", analysis.Info.Name)
	assert.Equal(t, 55.0, analysis.Indicators.RSI)
	assert.Equal(t, "bullish", analysis.Sentiment)
	assert.Equal(t, "Buy - 8 - strong momentum", analysis.Decision)
}

func TestAnalyze_DegradesWhenAdvisorRateLimited(t *testing.T) {
	svc, deps := newTestService(t)
	deps.advisor.SentimentFunc = func(ctx context.Context, query string) (string, error) {
		return "", ports.ErrRateLimited
	}

	analysis, err := svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	// Indicators survive even when the advisor is down.
	assert.NotNil(t, analysis.Indicators)
	assert.Contains(t, analysis.Sentiment, "unavailable")
	assert.Empty(t, analysis.Decision)
}

func TestAnalyze_IndicatorFailureIsFatal(t *testing.T) {
	svc, deps := newTestService(t)
	deps.market.IndicatorsFunc = func(ctx context.Context, symbol string) (*domain.IndicatorSet, error) {
		return nil, errors.New("no bars")
	}

	_, err := svc.Analyze(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestAccountAndPositions_PassThrough(t *testing.T) {
	svc, deps := newTestService(t)
	deps.broker.account = &domain.AccountSnapshot{Cash: decimal.NewFromInt(50000)}
	deps.broker.positions = []*domain.PositionSnapshot{{Symbol: "AAPL", Quantity: 10}}

	acct, err := svc.Account(context.Background())
	require.NoError(t, err)
	assert.True(t, acct.Cash.Equal(decimal.NewFromInt(50000)))

	positions, err := svc.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "AAPL", positions[0].Symbol)
}

func TestWatchlist_PassThrough(t *testing.T) {
	svc, deps := newTestService(t)
	deps.scanner.entries = []watchlist.Entry{{Symbol: "NVDA", Score: 12.3}}

	for _, fn := range []func(context.Context, int) ([]watchlist.Entry, error){
		svc.TopGainers, svc.TopMomentum, svc.TopBuyingPressure,
	} {
		entries, err := fn(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "NVDA", entries[0].Symbol)
	}
}

func TestHistory_NilJournal(t *testing.T) {
	deps := &serviceDeps{
		broker:   &mockBroker{},
		executor: &mockExecutor{},
		advisor:  &mockAdvisor{},
		market:   &mockMarket{},
		scanner:  &mockScanner{},
	}
	svc, err := NewAssistantService(nopLogger{}, deps.broker, deps.executor, deps.advisor, deps.market, deps.scanner, nil)
	require.NoError(t, err)

	records, err := svc.History(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	assert.Nil(t, records)

	count, err := svc.TradesToday(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTradesToday_CountsJournaledRecords(t *testing.T) {
	svc, deps := newTestService(t)
	deps.journal.records = []*domain.TradeRecord{{Symbol: "AAPL"}, {Symbol: "TSLA"}}

	count, err := svc.TradesToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
