package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

// Config holds the execution policy's tunables. Escalation multipliers are
// fixed constants in the pricing strategy; only sizing and wait intervals are
// configurable.
type Config struct {
	// MaxPositionFraction caps any one symbol at this fraction of portfolio
	// value (e.g. 0.10).
	MaxPositionFraction decimal.Decimal
	// PollWaitOpen is how long to wait after submission before the single
	// status check while the regular session is open.
	PollWaitOpen time.Duration
	// PollWaitClosed is the same wait during extended hours, where fills are
	// slower.
	PollWaitClosed time.Duration
}

// Policy converts a TradeRequest into at most MaxAttempts broker order
// submissions and exactly one terminal OrderOutcome. It holds no mutable
// state between requests; concurrent requests are independent.
type Policy struct {
	broker  ports.BrokerClient
	journal ports.TradeJournal // optional, best-effort
	logger  ports.Logger
	cfg     Config

	// Injected for tests; defaults wait on a timer honouring ctx.
	wait func(ctx context.Context, d time.Duration) error
	now  func() time.Time
}

// NewPolicy creates an execution policy. The journal may be nil.
func NewPolicy(broker ports.BrokerClient, journal ports.TradeJournal, logger ports.Logger, cfg Config) (*Policy, error) {
	if broker == nil || logger == nil {
		return nil, fmt.Errorf("broker and logger are required for execution policy")
	}
	if cfg.MaxPositionFraction.LessThanOrEqual(decimal.Zero) || cfg.MaxPositionFraction.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("MaxPositionFraction must be in (0, 1], got %s", cfg.MaxPositionFraction)
	}
	if cfg.PollWaitOpen <= 0 || cfg.PollWaitClosed <= 0 {
		return nil, fmt.Errorf("poll wait durations must be positive")
	}
	return &Policy{
		broker:  broker,
		journal: journal,
		logger:  logger,
		cfg:     cfg,
		wait:    waitCtx,
		now:     time.Now,
	}, nil
}

func waitCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExecuteTrade runs the full state machine for one TradeRequest:
// Sizing → Pricing → Submitted → Polling → {Filled, Escalate, Aborted}.
// All failures are returned as outcome values; nothing is thrown past this
// boundary.
func (p *Policy) ExecuteTrade(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome {
	op := "ExecuteTrade"

	if req.Symbol == "" || !req.Side.IsValid() || (req.Quantity != nil && *req.Quantity <= 0) {
		return p.finish(ctx, domain.OrderOutcome{
			Result: domain.OutcomeRejected,
			Symbol: req.Symbol,
			Side:   req.Side,
			Reason: domain.ReasonInvalidRequest,
			Detail: "request must carry a symbol, a valid side and a positive quantity if any",
		})
	}

	// --- Sizing ---
	acct, err := p.broker.GetAccount(ctx)
	if err != nil {
		return p.finish(ctx, p.gatewayOutcome(req, err, "fetching account"))
	}
	pos, err := p.broker.GetPosition(ctx, req.Symbol)
	if err != nil {
		return p.finish(ctx, p.gatewayOutcome(req, err, "fetching position"))
	}
	quote, err := p.broker.GetQuote(ctx, req.Symbol)
	if err != nil {
		return p.finish(ctx, p.gatewayOutcome(req, err, "fetching quote"))
	}

	refPrice := quote.AskPrice
	if req.Side == domain.Sell {
		refPrice = quote.BidPrice
	}

	qty, err := ComputeQuantity(req.Side, acct, pos, refPrice, p.cfg.MaxPositionFraction, req.Quantity)
	if err != nil {
		return p.finish(ctx, p.sizingOutcome(req, err))
	}

	p.logger.Info(ctx, op+": sized order", map[string]interface{}{
		"symbol":   req.Symbol,
		"side":     req.Side,
		"quantity": qty,
		"refPrice": refPrice.String(),
	})

	// --- Attempt cycles: Pricing → Submitted → Polling ---
	lastQuoted := refPrice
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			// Escalate re-enters Pricing with a fresh quote.
			quote, err = p.broker.GetQuote(ctx, req.Symbol)
			if err != nil {
				return p.finish(ctx, p.gatewayOutcome(req, err, "refreshing quote"))
			}
		}

		plan, err := PlanAttempt(req.Side, quote, attempt)
		if err != nil {
			return p.finish(ctx, p.gatewayOutcome(req, err, "pricing attempt"))
		}
		if plan.Type == domain.Limit {
			lastQuoted = plan.LimitPrice
		}

		orderReq := ports.OrderRequest{
			Symbol:        req.Symbol,
			Quantity:      qty,
			Side:          req.Side,
			Type:          plan.Type,
			TimeInForce:   plan.TimeInForce,
			ExtendedHours: plan.ExtendedHours,
			ClientOrderID: uuid.NewString(),
		}
		if plan.Type == domain.Limit {
			lp := plan.LimitPrice
			orderReq.LimitPrice = &lp
		}

		p.logger.Info(ctx, op+": submitting order", map[string]interface{}{
			"symbol":        req.Symbol,
			"side":          req.Side,
			"attempt":       attempt,
			"type":          plan.Type,
			"limitPrice":    plan.LimitPrice.String(),
			"extendedHours": plan.ExtendedHours,
		})

		submitted, err := p.broker.SubmitOrder(ctx, orderReq)
		if err != nil {
			out := p.submitFailureOutcome(req, err)
			out.Attempts = attempt
			return p.finish(ctx, out)
		}

		// --- Polling: one bounded wait, one status check ---
		waitFor := p.cfg.PollWaitClosed
		if quote.MarketOpen {
			waitFor = p.cfg.PollWaitOpen
		}
		if err := p.wait(ctx, waitFor); err != nil {
			p.cancelQuiet(ctx, submitted.OrderID, attempt)
			out := p.gatewayOutcome(req, fmt.Errorf("wait interrupted: %w: %v", ports.ErrContextCanceled, err), "polling")
			out.Attempts = attempt
			return p.finish(ctx, out)
		}

		status, err := p.broker.GetOrderStatus(ctx, submitted.OrderID)
		if err != nil {
			p.cancelQuiet(ctx, submitted.OrderID, attempt)
			out := p.gatewayOutcome(req, err, "checking order status")
			out.Attempts = attempt
			return p.finish(ctx, out)
		}

		switch status.Status {
		case domain.OrderStatusFilled:
			total := status.FilledAvgPrice.Mul(decimal.NewFromInt(status.FilledQuantity))
			return p.finish(ctx, domain.OrderOutcome{
				Result:         domain.OutcomeFilled,
				Symbol:         req.Symbol,
				Side:           req.Side,
				FilledPrice:    status.FilledAvgPrice,
				FilledQuantity: status.FilledQuantity,
				TotalValue:     total,
				Attempts:       attempt,
			})
		case domain.OrderStatusRejected:
			return p.finish(ctx, domain.OrderOutcome{
				Result:   domain.OutcomeRejected,
				Symbol:   req.Symbol,
				Side:     req.Side,
				Reason:   domain.ReasonBrokerRejected,
				Detail:   fmt.Sprintf("broker rejected order %s", submitted.OrderID),
				Attempts: attempt,
			})
		default:
			// Not filled yet: cancel before any further submission so at most
			// one order is ever outstanding per request.
			p.cancelQuiet(ctx, submitted.OrderID, attempt)
			if attempt < MaxAttempts {
				p.logger.Info(ctx, op+": escalating to next attempt", map[string]interface{}{
					"symbol":  req.Symbol,
					"orderID": submitted.OrderID,
					"attempt": attempt,
				})
				continue
			}
			return p.finish(ctx, domain.OrderOutcome{
				Result:          domain.OutcomeNotFilled,
				Symbol:          req.Symbol,
				Side:            req.Side,
				Reason:          domain.ReasonOrderTimeout,
				LastQuotedPrice: lastQuoted,
				Detail:          fmt.Sprintf("no fill after %d attempts", MaxAttempts),
				Hint:            "The order did not fill at the quoted prices. Try again later or with a fresh command.",
				Attempts:        attempt,
			})
		}
	}

	// Unreachable: every loop path returns.
	return p.finish(ctx, domain.OrderOutcome{
		Result: domain.OutcomeError,
		Symbol: req.Symbol,
		Side:   req.Side,
		Reason: domain.ReasonGatewayFailure,
		Detail: "execution loop exited without outcome",
	})
}

// cancelQuiet cancels an order, tolerating "already gone" answers the same
// way a late fill or races with the broker would present them.
func (p *Policy) cancelQuiet(ctx context.Context, orderID string, attempt int) {
	if err := p.broker.CancelOrder(ctx, orderID); err != nil {
		if errors.Is(err, ports.ErrOrderNotFound) {
			p.logger.Warn(ctx, "cancel: order not found, likely already filled or cancelled", map[string]interface{}{"orderID": orderID, "attempt": attempt})
			return
		}
		p.logger.Error(ctx, err, "cancel: failed to cancel order", map[string]interface{}{"orderID": orderID, "attempt": attempt})
	}
}

// sizingOutcome maps sizing-guard errors onto Rejected outcomes with
// remediation hints. Sizing failures never reach the broker.
func (p *Policy) sizingOutcome(req domain.TradeRequest, err error) domain.OrderOutcome {
	out := domain.OrderOutcome{
		Result: domain.OutcomeRejected,
		Symbol: req.Symbol,
		Side:   req.Side,
		Detail: err.Error(),
	}
	switch {
	case errors.Is(err, ports.ErrInsufficientPosition):
		out.Reason = domain.ReasonInsufficientPosition
		out.Hint = "You can only sell shares you hold. Check !position for your current holding."
	case errors.Is(err, ports.ErrInsufficientFunds):
		out.Reason = domain.ReasonInsufficientFunds
		out.Hint = "Reduce the quantity or free up buying power before retrying."
	case errors.Is(err, ports.ErrMaxPositionExceeded):
		out.Reason = domain.ReasonMaxPositionExceeded
		out.Hint = "This symbol is already at its maximum portfolio allocation."
	default:
		out.Reason = domain.ReasonInvalidRequest
	}
	return out
}

// submitFailureOutcome classifies a submission error from the gateway. The
// broker adapter has already mapped raw errors onto the standard taxonomy, so
// this dispatches on tags, never on message text.
func (p *Policy) submitFailureOutcome(req domain.TradeRequest, err error) domain.OrderOutcome {
	out := domain.OrderOutcome{
		Symbol: req.Symbol,
		Side:   req.Side,
		Detail: err.Error(),
	}
	switch {
	case errors.Is(err, ports.ErrWashTrade):
		out.Result = domain.OutcomeRejected
		out.Reason = domain.ReasonWashTrade
		out.Hint = "The broker flagged offsetting buy/sell activity in this symbol. Wait for open orders on the other side to resolve, then retry."
	case errors.Is(err, ports.ErrInsufficientFunds):
		out.Result = domain.OutcomeRejected
		out.Reason = domain.ReasonInsufficientFunds
		out.Hint = "Reduce the quantity or free up buying power before retrying."
	default:
		out.Result = domain.OutcomeError
		out.Reason = domain.ReasonGatewayFailure
	}
	return out
}

func (p *Policy) gatewayOutcome(req domain.TradeRequest, err error, during string) domain.OrderOutcome {
	return domain.OrderOutcome{
		Result: domain.OutcomeError,
		Symbol: req.Symbol,
		Side:   req.Side,
		Reason: domain.ReasonGatewayFailure,
		Detail: fmt.Sprintf("%s: %v", during, err),
	}
}

// finish journals the terminal outcome (best-effort) and returns it. Exactly
// one terminal outcome passes through here per request.
func (p *Policy) finish(ctx context.Context, out domain.OrderOutcome) domain.OrderOutcome {
	if p.journal == nil {
		return out
	}
	rec := &domain.TradeRecord{
		Symbol:     out.Symbol,
		Side:       out.Side,
		Quantity:   out.FilledQuantity,
		Price:      out.FilledPrice,
		TotalValue: out.TotalValue,
		Result:     out.Result,
		Reason:     out.Reason,
		Attempts:   out.Attempts,
		ExecutedAt: p.now().UTC(),
	}
	if _, err := p.journal.Record(ctx, rec); err != nil {
		p.logger.Error(ctx, err, "failed to journal trade outcome", map[string]interface{}{"symbol": out.Symbol, "result": out.Result})
	}
	return out
}
