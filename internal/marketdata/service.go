package marketdata

import (
	"context"
	"fmt"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/marketdata/indicators"
	"stockPilotBot/internal/ports"
)

// Config selects indicator parameters and how much history to fetch.
type Config struct {
	RSIPeriod        int
	RSIOverbought    float64
	RSIOversold      float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
	// BarLimit is how many 1-minute bars to request for indicator computation.
	BarLimit int
}

// Service computes technical indicators from the market data feed.
type Service struct {
	provider ports.MarketDataProvider
	logger   ports.Logger
	cfg      Config

	rsi  *indicators.RSI
	macd *indicators.MACD
}

// NewService creates a market data service.
func NewService(provider ports.MarketDataProvider, logger ports.Logger, cfg Config) (*Service, error) {
	if provider == nil || logger == nil {
		return nil, fmt.Errorf("provider and logger are required for market data service")
	}
	if cfg.RSIPeriod <= 0 || cfg.MACDFastPeriod <= 0 || cfg.MACDSlowPeriod <= cfg.MACDFastPeriod || cfg.MACDSignalPeriod <= 0 {
		return nil, fmt.Errorf("invalid indicator periods: RSI %d, MACD(%d,%d,%d)",
			cfg.RSIPeriod, cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod)
	}

	rsi := indicators.NewRSI(indicators.RSIConfig{
		Period:     cfg.RSIPeriod,
		Overbought: cfg.RSIOverbought,
		Oversold:   cfg.RSIOversold,
	})
	macd := indicators.NewMACD(indicators.MACDConfig{
		FastPeriod:   cfg.MACDFastPeriod,
		SlowPeriod:   cfg.MACDSlowPeriod,
		SignalPeriod: cfg.MACDSignalPeriod,
	})

	if cfg.BarLimit < macd.RequiredDataPoints() {
		cfg.BarLimit = macd.RequiredDataPoints()
	}
	if cfg.BarLimit < rsi.RequiredDataPoints() {
		cfg.BarLimit = rsi.RequiredDataPoints()
	}

	return &Service{
		provider: provider,
		logger:   logger,
		cfg:      cfg,
		rsi:      rsi,
		macd:     macd,
	}, nil
}

// Indicators fetches recent minute bars for the symbol and computes the full
// indicator set from them.
func (s *Service) Indicators(ctx context.Context, symbol string) (*domain.IndicatorSet, error) {
	bars, err := s.provider.GetMinuteBars(ctx, symbol, s.cfg.BarLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars returned for %s: %w", symbol, ports.ErrQuoteUnavailable)
	}

	last := bars[len(bars)-1]
	set := &domain.IndicatorSet{
		Symbol: symbol,
		Price:  last.Close,
		Volume: last.Volume,
	}

	rsiVal, err := s.rsi.Calculate(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("computing RSI for %s: %w", symbol, err)
	}
	set.RSI = rsiVal

	macdVal, err := s.macd.CalculateAll(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("computing MACD for %s: %w", symbol, err)
	}
	set.MACD = macdVal.MACD
	set.MACDSignal = macdVal.Signal
	set.MACDHist = macdVal.Histogram

	s.logger.Debug(ctx, "computed indicators", map[string]interface{}{
		"symbol": symbol,
		"price":  set.Price,
		"rsi":    set.RSI,
		"macd":   set.MACD,
	})
	return set, nil
}

// StockInfo passes through to the provider.
func (s *Service) StockInfo(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	return s.provider.GetStockInfo(ctx, symbol)
}
