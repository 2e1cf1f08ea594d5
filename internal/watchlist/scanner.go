package watchlist

import (
	"context"
	"fmt"
	"sort"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

// Entry is one scored symbol in a scan result.
type Entry struct {
	Symbol    string
	Price     float64
	ChangePct float64 // percent change over the lookback
	Score     float64
}

// Config bounds a scan.
type Config struct {
	// Universe is the symbol set to scan. Empty means DefaultUniverse.
	Universe []string
	// ScanLimit caps how many symbols are scanned per request.
	ScanLimit int
	// TopN is how many entries a scan returns.
	TopN int
}

// Scanner ranks symbols by daily-bar statistics. Symbols whose data cannot be
// fetched are skipped rather than failing the whole scan.
type Scanner struct {
	provider ports.MarketDataProvider
	logger   ports.Logger
	cfg      Config
}

// NewScanner creates a watchlist scanner.
func NewScanner(provider ports.MarketDataProvider, logger ports.Logger, cfg Config) (*Scanner, error) {
	if provider == nil || logger == nil {
		return nil, fmt.Errorf("provider and logger are required for watchlist scanner")
	}
	if len(cfg.Universe) == 0 {
		cfg.Universe = DefaultUniverse
	}
	if cfg.ScanLimit <= 0 || cfg.ScanLimit > len(cfg.Universe) {
		cfg.ScanLimit = len(cfg.Universe)
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	return &Scanner{provider: provider, logger: logger, cfg: cfg}, nil
}

// barsNeeded is how much daily history the scoring formulas require: 20 days
// of volume baseline plus the trend lookback.
const barsNeeded = 30

// TopGainers ranks by percent change from the previous close. A limit of
// zero or less falls back to the configured TopN.
func (s *Scanner) TopGainers(ctx context.Context, limit int) ([]Entry, error) {
	return s.scan(ctx, limit, func(bars []*domain.Bar) (Entry, bool) {
		last, prev := bars[len(bars)-1], bars[len(bars)-2]
		if prev.Close <= 0 {
			return Entry{}, false
		}
		change := (last.Close - prev.Close) / prev.Close * 100
		return Entry{
			Symbol:    last.Symbol,
			Price:     last.Close,
			ChangePct: change,
			Score:     change,
		}, true
	})
}

// TopMomentum ranks by a blend of price change and volume expansion:
// 0.7 x change% + 30 x (volumeRatio - 1), where volumeRatio compares the
// latest volume against its 20-day average.
func (s *Scanner) TopMomentum(ctx context.Context, limit int) ([]Entry, error) {
	return s.scan(ctx, limit, func(bars []*domain.Bar) (Entry, bool) {
		last, prev := bars[len(bars)-1], bars[len(bars)-2]
		if prev.Close <= 0 {
			return Entry{}, false
		}
		change := (last.Close - prev.Close) / prev.Close * 100
		volRatio := volumeRatio(bars, 20)
		return Entry{
			Symbol:    last.Symbol,
			Price:     last.Close,
			ChangePct: change,
			Score:     0.7*change + 30*(volRatio-1),
		}, true
	})
}

// TopBuyingPressure ranks by where the close sits in the day's range,
// volume surge and short-term trend:
// 50 x closePosition + 30 x (volumeRatio - 1) + 0.2 x trend%.
func (s *Scanner) TopBuyingPressure(ctx context.Context, limit int) ([]Entry, error) {
	return s.scan(ctx, limit, func(bars []*domain.Bar) (Entry, bool) {
		last, prev := bars[len(bars)-1], bars[len(bars)-2]
		if prev.Close <= 0 {
			return Entry{}, false
		}
		change := (last.Close - prev.Close) / prev.Close * 100

		// Close near the high of the day's range signals buyers in control.
		closePos := 0.5
		if spread := last.High - last.Low; spread > 0 {
			closePos = (last.Close - last.Low) / spread
		}

		volRatio := volumeRatio(bars, 20)

		// Trend over the last 5 sessions.
		trend := 0.0
		if len(bars) >= 6 {
			base := bars[len(bars)-6].Close
			if base > 0 {
				trend = (last.Close - base) / base * 100
			}
		}

		return Entry{
			Symbol:    last.Symbol,
			Price:     last.Close,
			ChangePct: change,
			Score:     50*closePos + 30*(volRatio-1) + 0.2*trend,
		}, true
	})
}

// volumeRatio compares the latest bar's volume to the average of the lookback
// bars before it. Returns 1 when no baseline exists.
func volumeRatio(bars []*domain.Bar, lookback int) float64 {
	if len(bars) < 2 {
		return 1
	}
	start := len(bars) - 1 - lookback
	if start < 0 {
		start = 0
	}
	baseline := bars[start : len(bars)-1]
	var sum float64
	for _, b := range baseline {
		sum += float64(b.Volume)
	}
	avg := sum / float64(len(baseline))
	if avg <= 0 {
		return 1
	}
	return float64(bars[len(bars)-1].Volume) / avg
}

type scoreFunc func(bars []*domain.Bar) (Entry, bool)

// maxTopN caps caller-supplied result limits.
const maxTopN = 25

func (s *Scanner) scan(ctx context.Context, limit int, score scoreFunc) ([]Entry, error) {
	if limit <= 0 {
		limit = s.cfg.TopN
	}
	if limit > maxTopN {
		limit = maxTopN
	}
	symbols := s.cfg.Universe[:s.cfg.ScanLimit]
	entries := make([]Entry, 0, len(symbols))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}
		bars, err := s.provider.GetDailyBars(ctx, symbol, barsNeeded)
		if err != nil {
			s.logger.Warn(ctx, "skipping symbol in scan", map[string]interface{}{
				"symbol": symbol,
				"error":  err.Error(),
			})
			continue
		}
		if len(bars) < 2 {
			continue
		}
		if entry, ok := score(bars); ok {
			if entry.Symbol == "" {
				entry.Symbol = symbol
			}
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no scannable symbols: %w", ports.ErrQuoteUnavailable)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
