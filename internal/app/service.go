package app

import (
	"context"
	"fmt"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
	"stockPilotBot/internal/watchlist"
)

// TradeExecutor runs one trade request through to a terminal outcome.
type TradeExecutor interface {
	ExecuteTrade(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome
}

// IndicatorSource computes the technical indicator set for a symbol.
type IndicatorSource interface {
	Indicators(ctx context.Context, symbol string) (*domain.IndicatorSet, error)
	StockInfo(ctx context.Context, symbol string) (*domain.StockInfo, error)
}

// WatchlistScanner ranks symbols by market statistics.
type WatchlistScanner interface {
	TopGainers(ctx context.Context, limit int) ([]watchlist.Entry, error)
	TopMomentum(ctx context.Context, limit int) ([]watchlist.Entry, error)
	TopBuyingPressure(ctx context.Context, limit int) ([]watchlist.Entry, error)
}

// Analysis is the full AI read on one symbol.
type Analysis struct {
	Info       *domain.StockInfo
	Indicators *domain.IndicatorSet
	Sentiment  string
	Decision   string
}

// AssistantService orchestrates trading, analysis and watchlist operations on
// behalf of the chat layer.
type AssistantService struct {
	logger    ports.Logger
	broker    ports.BrokerClient
	executor  TradeExecutor
	advisor   ports.Advisor
	market    IndicatorSource
	watchlist WatchlistScanner
	journal   ports.TradeJournal
}

// NewAssistantService creates the application service. The journal may be
// nil; everything else is required.
func NewAssistantService(
	logger ports.Logger,
	broker ports.BrokerClient,
	executor TradeExecutor,
	advisor ports.Advisor,
	market IndicatorSource,
	scanner WatchlistScanner,
	journal ports.TradeJournal,
) (*AssistantService, error) {
	if logger == nil || broker == nil || executor == nil || advisor == nil || market == nil || scanner == nil {
		return nil, fmt.Errorf("missing required dependencies for AssistantService")
	}
	return &AssistantService{
		logger:    logger,
		broker:    broker,
		executor:  executor,
		advisor:   advisor,
		market:    market,
		watchlist: scanner,
		journal:   journal,
	}, nil
}

// ExecuteTrade runs one trade request through the execution policy.
func (s *AssistantService) ExecuteTrade(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome {
	s.logger.Info(ctx, "executing trade request", map[string]interface{}{
		"symbol": req.Symbol,
		"side":   req.Side,
	})
	return s.executor.ExecuteTrade(ctx, req)
}

// Analyze builds the full AI read on a symbol: descriptive info, technical
// indicators, advisor sentiment and a trading recommendation. Advisor
// failures degrade the analysis rather than failing it outright: a rate-limited
// advisor yields indicators with an explanatory note.
func (s *AssistantService) Analyze(ctx context.Context, symbol string) (*Analysis, error) {
	info, err := s.market.StockInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching stock info for %s: %w", symbol, err)
	}

	ind, err := s.market.Indicators(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("computing indicators for %s: %w", symbol, err)
	}

	analysis := &Analysis{Info: info, Indicators: ind}

	sentiment, err := s.advisor.AnalyzeSentiment(ctx, fmt.Sprintf("%s stock outlook", symbol))
	if err != nil {
		s.logger.Warn(ctx, "sentiment unavailable, continuing with indicators only", map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		})
		analysis.Sentiment = "Sentiment unavailable right now."
		return analysis, nil
	}
	analysis.Sentiment = sentiment

	decision, err := s.advisor.TradingDecision(ctx, symbol, ind, sentiment)
	if err != nil {
		s.logger.Warn(ctx, "trading decision unavailable", map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return analysis, nil
	}
	analysis.Decision = decision
	return analysis, nil
}

// Sentiment returns the advisor's read on a free-form query.
func (s *AssistantService) Sentiment(ctx context.Context, query string) (string, error) {
	return s.advisor.AnalyzeSentiment(ctx, query)
}

// Account retrieves the current account state.
func (s *AssistantService) Account(ctx context.Context) (*domain.AccountSnapshot, error) {
	return s.broker.GetAccount(ctx)
}

// Position retrieves the open position for a symbol; nil when none is held.
func (s *AssistantService) Position(ctx context.Context, symbol string) (*domain.PositionSnapshot, error) {
	return s.broker.GetPosition(ctx, symbol)
}

// Positions retrieves all open positions.
func (s *AssistantService) Positions(ctx context.Context) ([]*domain.PositionSnapshot, error) {
	return s.broker.ListPositions(ctx)
}

// TopGainers ranks the universe by daily percent change.
func (s *AssistantService) TopGainers(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return s.watchlist.TopGainers(ctx, limit)
}

// TopMomentum ranks the universe by combined price and volume momentum.
func (s *AssistantService) TopMomentum(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return s.watchlist.TopMomentum(ctx, limit)
}

// TopBuyingPressure ranks the universe by signs of sustained buying.
func (s *AssistantService) TopBuyingPressure(ctx context.Context, limit int) ([]watchlist.Entry, error) {
	return s.watchlist.TopBuyingPressure(ctx, limit)
}

// TradesToday reports how many trades were journaled since UTC midnight.
// Returns zero when no journal is configured.
func (s *AssistantService) TradesToday(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	return s.journal.CountToday(ctx)
}

// History retrieves the most recent journaled trades for a symbol.
func (s *AssistantService) History(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.RecentBySymbol(ctx, symbol, limit)
}
