package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
)

// OrderRequest carries everything needed to submit one order to the broker.
type OrderRequest struct {
	Symbol        string
	Quantity      int64
	Side          domain.OrderSide
	Type          domain.OrderType
	TimeInForce   domain.TimeInForce
	LimitPrice    *decimal.Decimal // nil for market orders
	ExtendedHours bool
	ClientOrderID string // caller-supplied idempotency key
}

// OrderResponse represents the essential details of an order as reported by
// the broker, either at submission or on a later status check.
type OrderResponse struct {
	OrderID        string
	ClientOrderID  string
	Symbol         string
	Status         domain.OrderStatus
	FilledQuantity int64
	FilledAvgPrice decimal.Decimal // zero until (partially) filled
	SubmittedAt    time.Time
}

// BrokerClient defines the interface to the brokerage gateway. This
// abstraction decouples the execution policy from any specific broker; the
// policy only ever sees these operations and the standard error taxonomy.
type BrokerClient interface {
	// GetAccount retrieves the current account state.
	GetAccount(ctx context.Context) (*domain.AccountSnapshot, error)

	// GetPosition retrieves the open position for a symbol.
	// Returns nil, nil when no position is held.
	GetPosition(ctx context.Context, symbol string) (*domain.PositionSnapshot, error)

	// ListPositions retrieves all open positions.
	ListPositions(ctx context.Context) ([]*domain.PositionSnapshot, error)

	// GetQuote retrieves the latest top-of-book quote for a symbol together
	// with the current market session state.
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)

	// IsMarketOpen reports whether the regular trading session is open.
	IsMarketOpen(ctx context.Context) (bool, error)

	// SubmitOrder places exactly one order and returns its identifiers.
	SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)

	// GetOrderStatus queries the current state of a previously submitted order.
	GetOrderStatus(ctx context.Context, orderID string) (*OrderResponse, error)

	// CancelOrder cancels an open order by its broker ID.
	CancelOrder(ctx context.Context, orderID string) error
}
