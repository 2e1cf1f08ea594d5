package alpacaclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

const (
	// Base URLs
	baseURLPaper = "https://paper-api.alpaca.markets"
	baseURLLive  = "https://api.alpaca.markets"
)

// Client implements the ports.BrokerClient and ports.MarketDataProvider
// interfaces using the Alpaca trade and market data APIs. The underlying SDK
// does not take a context, so cancellation is honoured at call boundaries.
type Client struct {
	trading *alpaca.Client
	md      *marketdata.Client
	logger  ports.Logger
}

// Config holds configuration specific to the Alpaca client adapter.
type Config struct {
	APIKey    string
	SecretKey string
	// BaseURL overrides the trading endpoint; empty selects the paper API.
	BaseURL string
	Logger  ports.Logger
}

// New creates a new Alpaca client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Alpaca client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("alpaca API key and secret are required: %w", ports.ErrConfigurationError)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = baseURLPaper
	}

	trading := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.SecretKey,
		BaseURL:   baseURL,
	})
	md := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.SecretKey,
	})
	cfg.Logger.Info(context.Background(), "Alpaca client configured", map[string]interface{}{
		"baseURL": baseURL,
		"paper":   baseURL == baseURLPaper,
	})

	return &Client{trading: trading, md: md, logger: cfg.Logger}, nil
}

// handleError translates Alpaca API errors into the standard ports errors.
// It is the only place in the codebase that inspects broker error text;
// everything above dispatches on the wrapped sentinel with errors.Is.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) {
		fields["statusCode"] = apiErr.StatusCode
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		msg := strings.ToLower(apiErr.Message)
		var mappedErr error
		switch {
		case strings.Contains(msg, "wash trade"):
			mappedErr = ports.ErrWashTrade
		case strings.Contains(msg, "insufficient buying power") || strings.Contains(msg, "insufficient balance"):
			mappedErr = ports.ErrInsufficientFunds
		case strings.Contains(msg, "insufficient qty") || strings.Contains(msg, "insufficient quantity"):
			mappedErr = ports.ErrInsufficientPosition
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			mappedErr = ports.ErrAuthenticationFailed
		case apiErr.StatusCode == 404:
			mappedErr = ports.ErrNotFound
		case apiErr.StatusCode == 422:
			mappedErr = ports.ErrInvalidRequest
		case apiErr.StatusCode == 429:
			mappedErr = ports.ErrRateLimited
		case apiErr.StatusCode >= 500:
			mappedErr = ports.ErrBrokerUnavailable
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// isNotFound reports whether the error is an HTTP 404 from the API.
func isNotFound(err error) bool {
	var apiErr *alpaca.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// GetAccount retrieves the current account state.
func (c *Client) GetAccount(ctx context.Context) (*domain.AccountSnapshot, error) {
	op := "GetAccount"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	acct, err := c.trading.GetAccount()
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	return &domain.AccountSnapshot{
		Cash:           acct.Cash,
		BuyingPower:    acct.BuyingPower,
		PortfolioValue: acct.PortfolioValue,
	}, nil
}

// GetPosition retrieves the open position for a symbol. A missing position is
// a normal answer, not an error: it returns nil, nil.
func (c *Client) GetPosition(ctx context.Context, symbol string) (*domain.PositionSnapshot, error) {
	op := "GetPosition"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	pos, err := c.trading.GetPosition(symbol)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, c.handleError(ctx, err, op)
	}
	return translatePosition(pos), nil
}

// ListPositions retrieves all open positions.
func (c *Client) ListPositions(ctx context.Context) ([]*domain.PositionSnapshot, error) {
	op := "ListPositions"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	positions, err := c.trading.GetPositions()
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	out := make([]*domain.PositionSnapshot, 0, len(positions))
	for i := range positions {
		out = append(out, translatePosition(&positions[i]))
	}
	return out, nil
}

// IsMarketOpen reports whether the regular trading session is open.
func (c *Client) IsMarketOpen(ctx context.Context) (bool, error) {
	op := "IsMarketOpen"
	if err := ctx.Err(); err != nil {
		return false, c.handleError(ctx, err, op)
	}

	clock, err := c.trading.GetClock()
	if err != nil {
		return false, c.handleError(ctx, err, op)
	}
	return clock.IsOpen, nil
}

// SubmitOrder places exactly one order.
func (c *Client) SubmitOrder(ctx context.Context, req ports.OrderRequest) (*ports.OrderResponse, error) {
	op := "SubmitOrder"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	qty := decimal.NewFromInt(req.Quantity)
	placeReq := alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &qty,
		Side:          translateSide(req.Side),
		Type:          translateType(req.Type),
		TimeInForce:   translateTIF(req.TimeInForce),
		LimitPrice:    req.LimitPrice,
		ExtendedHours: req.ExtendedHours,
		ClientOrderID: req.ClientOrderID,
	}

	order, err := c.trading.PlaceOrder(placeReq)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	c.logger.Debug(ctx, op+" accepted", map[string]interface{}{
		"orderID": order.ID,
		"symbol":  order.Symbol,
		"status":  order.Status,
	})
	return translateOrder(order), nil
}

// GetOrderStatus queries the current state of a submitted order.
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*ports.OrderResponse, error) {
	op := "GetOrderStatus"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	order, err := c.trading.GetOrder(orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: order %s: %w", op, orderID, ports.ErrOrderNotFound)
		}
		return nil, c.handleError(ctx, err, op)
	}
	return translateOrder(order), nil
}

// CancelOrder cancels an open order by its broker ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	op := "CancelOrder"
	if err := ctx.Err(); err != nil {
		return c.handleError(ctx, err, op)
	}

	if err := c.trading.CancelOrder(orderID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: order %s: %w", op, orderID, ports.ErrOrderNotFound)
		}
		return c.handleError(ctx, err, op)
	}
	return nil
}

// GetStockInfo retrieves the asset card for a symbol.
func (c *Client) GetStockInfo(ctx context.Context, symbol string) (*domain.StockInfo, error) {
	op := "GetStockInfo"
	if err := ctx.Err(); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	asset, err := c.trading.GetAsset(symbol)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: symbol %s: %w", op, symbol, ports.ErrNotFound)
		}
		return nil, c.handleError(ctx, err, op)
	}
	return &domain.StockInfo{
		Symbol:   asset.Symbol,
		Name:     asset.Name,
		Exchange: asset.Exchange,
		Class:    string(asset.Class),
		Tradable: asset.Tradable,
	}, nil
}

// --- Translation helpers ---

func translateSide(side domain.OrderSide) alpaca.Side {
	if side == domain.Sell {
		return alpaca.Sell
	}
	return alpaca.Buy
}

func translateType(t domain.OrderType) alpaca.OrderType {
	if t == domain.Limit {
		return alpaca.Limit
	}
	return alpaca.Market
}

func translateTIF(tif domain.TimeInForce) alpaca.TimeInForce {
	if tif == domain.Day {
		return alpaca.Day
	}
	return alpaca.GTC
}

func translateStatus(status string) domain.OrderStatus {
	switch status {
	case "new":
		return domain.OrderStatusNew
	case "accepted", "pending_new":
		return domain.OrderStatusAccepted
	case "partially_filled":
		return domain.OrderStatusPartiallyFilled
	case "filled":
		return domain.OrderStatusFilled
	case "canceled", "pending_cancel", "expired", "done_for_day":
		return domain.OrderStatusCanceled
	case "rejected":
		return domain.OrderStatusRejected
	default:
		return domain.OrderStatusAccepted
	}
}

func translateOrder(order *alpaca.Order) *ports.OrderResponse {
	resp := &ports.OrderResponse{
		OrderID:        order.ID,
		ClientOrderID:  order.ClientOrderID,
		Symbol:         order.Symbol,
		Status:         translateStatus(string(order.Status)),
		FilledQuantity: order.FilledQty.IntPart(),
		SubmittedAt:    order.SubmittedAt,
	}
	if order.FilledAvgPrice != nil {
		resp.FilledAvgPrice = *order.FilledAvgPrice
	}
	return resp
}

func translatePosition(pos *alpaca.Position) *domain.PositionSnapshot {
	snap := &domain.PositionSnapshot{
		Symbol:        pos.Symbol,
		Quantity:      pos.Qty.IntPart(),
		AvgEntryPrice: pos.AvgEntryPrice,
	}
	if pos.CurrentPrice != nil {
		snap.CurrentPrice = *pos.CurrentPrice
	}
	if pos.MarketValue != nil {
		snap.MarketValue = *pos.MarketValue
	}
	if pos.UnrealizedPL != nil {
		snap.UnrealizedPL = *pos.UnrealizedPL
	}
	return snap
}
