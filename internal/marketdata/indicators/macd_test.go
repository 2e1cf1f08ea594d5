package indicators

import (
	"context"
	"math"
	"testing"
)

func linearBars(start, step float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = start + step*float64(i)
	}
	return values
}

func TestMACD_CalculateAll(t *testing.T) {
	cfg := MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
	macd := NewMACD(cfg)
	ctx := context.Background()

	t.Run("flat prices give zero everywhere", func(t *testing.T) {
		bars := barsFromCloses(linearBars(100, 0, 60)...)
		v, err := macd.CalculateAll(ctx, bars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.MACD != 0 || v.Signal != 0 || v.Histogram != 0 {
			t.Errorf("expected all-zero MACD for flat series, got %+v", v)
		}
	})

	t.Run("rising prices give positive MACD", func(t *testing.T) {
		bars := barsFromCloses(linearBars(100, 1, 60)...)
		v, err := macd.CalculateAll(ctx, bars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.MACD <= 0 {
			t.Errorf("expected positive MACD for rising series, got %v", v.MACD)
		}
		if math.Abs(v.Histogram-(v.MACD-v.Signal)) > 1e-9 {
			t.Errorf("histogram should equal MACD minus signal, got %+v", v)
		}
	})

	t.Run("falling prices give negative MACD", func(t *testing.T) {
		bars := barsFromCloses(linearBars(200, -1, 60)...)
		v, err := macd.CalculateAll(ctx, bars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.MACD >= 0 {
			t.Errorf("expected negative MACD for falling series, got %v", v.MACD)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		bars := barsFromCloses(linearBars(100, 1, 34)...) // need 26+9
		if _, err := macd.CalculateAll(ctx, bars); err == nil {
			t.Error("expected an error for insufficient data")
		}
	})

	t.Run("fast period must be shorter than slow", func(t *testing.T) {
		bad := NewMACD(MACDConfig{FastPeriod: 26, SlowPeriod: 12, SignalPeriod: 9})
		bars := barsFromCloses(linearBars(100, 1, 60)...)
		if _, err := bad.CalculateAll(ctx, bars); err == nil {
			t.Error("expected an error for inverted periods")
		}
	})
}

func TestMACD_RequiredDataPoints(t *testing.T) {
	macd := NewMACD(MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9})
	if got := macd.RequiredDataPoints(); got != 35 {
		t.Errorf("expected 35 required data points, got %d", got)
	}
}
