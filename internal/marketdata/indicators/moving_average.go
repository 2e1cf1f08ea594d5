package indicators

import (
	"context"
	"fmt"

	"stockPilotBot/internal/domain"
)

// MovingAverageType defines the type of moving average.
type MovingAverageType string

const (
	SimpleMovingAverage      MovingAverageType = "SMA"
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators.
type MovingAverageConfig struct {
	Period int
	Type   MovingAverageType
}

// MovingAverage implements both SMA and EMA over bar closes.
type MovingAverage struct {
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance.
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{config: config}
}

func (m *MovingAverage) Name() string { return string(m.config.Type) }

func (m *MovingAverage) RequiredDataPoints() int { return m.config.Period }

// Calculate computes the moving average value based on the configured type.
func (m *MovingAverage) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	if len(bars) < m.config.Period || m.config.Period <= 0 {
		return 0, fmt.Errorf("not enough data (%d) to calculate %s for period %d",
			len(bars), m.config.Type, m.config.Period)
	}

	prices := closes(bars)
	switch m.config.Type {
	case SimpleMovingAverage:
		total := 0.0
		for i := len(prices) - m.config.Period; i < len(prices); i++ {
			total += prices[i]
		}
		return total / float64(m.config.Period), nil
	case ExponentialMovingAverage:
		series := emaSeries(prices, m.config.Period)
		return series[len(series)-1], nil
	default:
		return 0, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}
