package indicators

import (
	"context"
	"fmt"

	"stockPilotBot/internal/domain"
)

// RSIConfig holds configuration for the RSI indicator.
type RSIConfig struct {
	Period     int
	Overbought float64
	Oversold   float64
}

// RSI implements the Relative Strength Index using Wilder's smoothing.
type RSI struct {
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance.
func NewRSI(config RSIConfig) *RSI {
	return &RSI{config: config}
}

func (r *RSI) Name() string { return "RSI" }

// RequiredDataPoints returns the minimum number of bars needed. One extra bar
// beyond the period is required for the first price change.
func (r *RSI) RequiredDataPoints() int {
	return r.config.Period + 1
}

// Calculate computes the RSI value over the full bar series.
func (r *RSI) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	period := r.config.Period
	if len(bars) <= period {
		return 0, fmt.Errorf("not enough data (%d) to calculate RSI for period %d", len(bars), period)
	}

	prices := closes(bars)
	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		if changes[i] > 0 {
			avgGain += changes[i]
		} else {
			avgLoss -= changes[i]
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing over the remainder of the series.
	for i := period; i < len(changes); i++ {
		gain, loss := 0.0, 0.0
		if changes[i] > 0 {
			gain = changes[i]
		} else {
			loss = -changes[i]
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil
		}
		return 100, nil
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	if rsi > 100 {
		rsi = 100
	} else if rsi < 0 {
		rsi = 0
	}
	return rsi, nil
}

// IsOverbought checks if the RSI value indicates an overbought condition.
func (r *RSI) IsOverbought(value float64) bool {
	return value >= r.config.Overbought
}

// IsOversold checks if the RSI value indicates an oversold condition.
func (r *RSI) IsOversold(value float64) bool {
	return value <= r.config.Oversold
}
