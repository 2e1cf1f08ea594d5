package indicators

import (
	"context"
	"fmt"

	"stockPilotBot/internal/domain"
)

// MACDConfig holds the three periods of the MACD indicator.
type MACDConfig struct {
	FastPeriod   int // typically 12
	SlowPeriod   int // typically 26
	SignalPeriod int // typically 9
}

// MACDValue bundles the three MACD outputs for one point in time.
type MACDValue struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD implements Moving Average Convergence Divergence.
type MACD struct {
	config MACDConfig
}

// NewMACD creates a new MACD indicator instance.
func NewMACD(config MACDConfig) *MACD {
	return &MACD{config: config}
}

func (m *MACD) Name() string { return "MACD" }

// RequiredDataPoints returns the minimum number of bars needed for a stable
// signal line.
func (m *MACD) RequiredDataPoints() int {
	return m.config.SlowPeriod + m.config.SignalPeriod
}

// Calculate computes the MACD line only, satisfying the Indicator interface.
// Use CalculateAll when the signal line and histogram are also needed.
func (m *MACD) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	v, err := m.CalculateAll(ctx, bars)
	if err != nil {
		return 0, err
	}
	return v.MACD, nil
}

// CalculateAll computes the MACD line (fast EMA minus slow EMA), the signal
// line (EMA of the MACD line) and the histogram for the latest bar.
func (m *MACD) CalculateAll(ctx context.Context, bars []*domain.Bar) (MACDValue, error) {
	if m.config.FastPeriod >= m.config.SlowPeriod {
		return MACDValue{}, fmt.Errorf("fast period %d must be shorter than slow period %d",
			m.config.FastPeriod, m.config.SlowPeriod)
	}
	if len(bars) < m.RequiredDataPoints() {
		return MACDValue{}, fmt.Errorf("not enough data (%d) to calculate MACD(%d,%d,%d), need %d",
			len(bars), m.config.FastPeriod, m.config.SlowPeriod, m.config.SignalPeriod, m.RequiredDataPoints())
	}

	prices := closes(bars)
	fast := emaSeries(prices, m.config.FastPeriod)
	slow := emaSeries(prices, m.config.SlowPeriod)

	// The MACD line is only defined once the slow EMA exists.
	macdLine := make([]float64, 0, len(prices)-m.config.SlowPeriod+1)
	for i := m.config.SlowPeriod - 1; i < len(prices); i++ {
		macdLine = append(macdLine, fast[i]-slow[i])
	}

	signal := emaSeries(macdLine, m.config.SignalPeriod)

	macd := macdLine[len(macdLine)-1]
	sig := signal[len(signal)-1]
	return MACDValue{
		MACD:      macd,
		Signal:    sig,
		Histogram: macd - sig,
	}, nil
}
