package indicators

import (
	"context"

	"stockPilotBot/internal/domain"
)

// Indicator is a technical indicator computed over a chronological series of
// price bars (oldest first).
type Indicator interface {
	// Calculate computes the indicator value for the given bars.
	Calculate(ctx context.Context, bars []*domain.Bar) (float64, error)

	// RequiredDataPoints returns the minimum number of bars needed.
	RequiredDataPoints() int

	// Name returns the name of the indicator.
	Name() string
}

// closes extracts the close series from bars.
func closes(bars []*domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// emaSeries computes the exponential moving average of values for the given
// period. The first period values seed the average with an SMA; the returned
// series is aligned so that index i holds the EMA ending at values[i], with
// the first period-1 entries zero.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) < period || period <= 0 {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out[i] = ema
	}
	return out
}
