package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// IsValid reports whether the side is one of the known constants.
func (s OrderSide) IsValid() bool {
	return s == Buy || s == Sell
}

// OrderType represents the execution type of an order.
type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
)

// TimeInForce controls how long an order remains working at the broker.
type TimeInForce string

const (
	GoodTillCanceled TimeInForce = "GTC"
	Day              TimeInForce = "DAY"
)

// OrderStatus is the broker-reported lifecycle state of a submitted order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusAccepted        OrderStatus = "accepted"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// IsTerminal reports whether the status can no longer change.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusRejected
}
