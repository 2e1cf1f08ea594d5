package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRequest is a user's intent to trade a symbol. It is immutable once
// created; a nil Quantity means "let the sizing guard decide" for buys and
// "sell the full position" for sells.
type TradeRequest struct {
	Symbol   string
	Side     OrderSide
	Quantity *int64 // requested share count, nil if unspecified
}

// OrderAttempt captures the parameters of a single order submission made on
// behalf of a TradeRequest.
type OrderAttempt struct {
	Number        int // 1-based attempt counter
	Quantity      int64
	Type          OrderType
	TimeInForce   TimeInForce
	LimitPrice    decimal.Decimal // zero for market orders
	ExtendedHours bool
	SubmittedAt   time.Time
}

// OutcomeResult tags the terminal result of a TradeRequest.
type OutcomeResult string

const (
	OutcomeFilled    OutcomeResult = "filled"
	OutcomeNotFilled OutcomeResult = "not_filled"
	OutcomeRejected  OutcomeResult = "rejected"
	OutcomeError     OutcomeResult = "error"
)

// RejectReason is the machine-distinguishable cause of a rejected or failed
// trade. The chat layer renders a message per reason; it never inspects
// free-form text to decide behaviour.
type RejectReason string

const (
	ReasonWashTrade            RejectReason = "WASH_TRADE"
	ReasonInsufficientFunds    RejectReason = "INSUFFICIENT_FUNDS"
	ReasonInsufficientPosition RejectReason = "INSUFFICIENT_POSITION"
	ReasonMaxPositionExceeded  RejectReason = "MAX_POSITION_EXCEEDED"
	ReasonOrderTimeout         RejectReason = "ORDER_TIMEOUT"
	ReasonBrokerRejected       RejectReason = "BROKER_REJECTED"
	ReasonGatewayFailure       RejectReason = "GATEWAY_FAILURE"
	ReasonInvalidRequest       RejectReason = "INVALID_REQUEST"
)

// OrderOutcome is the single terminal result of executing a TradeRequest.
// Exactly one outcome is produced per request; which fields are meaningful
// depends on Result.
type OrderOutcome struct {
	Result OutcomeResult
	Symbol string
	Side   OrderSide

	// Filled
	FilledPrice    decimal.Decimal
	FilledQuantity int64
	TotalValue     decimal.Decimal

	// NotFilled
	LastQuotedPrice decimal.Decimal

	// Rejected / Error
	Reason RejectReason
	Detail string
	Hint   string // human-readable remediation, empty when not applicable

	Attempts int // order submissions actually made
}

// TradeRecord is the journal row written for every terminal OrderOutcome.
type TradeRecord struct {
	ID         int64
	Symbol     string
	Side       OrderSide
	Quantity   int64
	Price      decimal.Decimal
	TotalValue decimal.Decimal
	Result     OutcomeResult
	Reason     RejectReason
	Attempts   int
	ExecutedAt time.Time
}
