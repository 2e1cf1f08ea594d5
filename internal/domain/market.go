package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the broker account state at a point in time. It is read
// fresh at the start of each trade execution and never cached.
type AccountSnapshot struct {
	Cash           decimal.Decimal
	BuyingPower    decimal.Decimal
	PortfolioValue decimal.Decimal
}

// PositionSnapshot is the held position in a single symbol. Quantity is the
// absolute number of shares held (long only).
type PositionSnapshot struct {
	Symbol        string
	Quantity      int64
	AvgEntryPrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	MarketValue   decimal.Decimal
	UnrealizedPL  decimal.Decimal
}

// Quote is the current top-of-book for a symbol together with the market
// session state, fetched once per order attempt.
type Quote struct {
	Symbol     string
	AskPrice   decimal.Decimal
	BidPrice   decimal.Decimal
	MarketOpen bool
	At         time.Time
}

// Bar is a single OHLCV candle.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    uint64
}

// StockInfo is the descriptive card shown alongside an analysis.
type StockInfo struct {
	Symbol   string
	Name     string
	Exchange string
	Class    string
	Tradable bool
}

// IndicatorSet bundles the technical indicators computed for one symbol.
type IndicatorSet struct {
	Symbol     string
	Price      float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	Volume     uint64
}
