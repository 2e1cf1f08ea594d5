package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these standard errors so
// the core can dispatch on errors.Is instead of matching message text.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Broker Gateway Errors
	ErrBrokerUnavailable    = errors.New("broker API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the broker")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("broker authentication failed (check API keys)")
	ErrInsufficientFunds    = errors.New("insufficient buying power for order")
	ErrInsufficientPosition = errors.New("position too small for requested sell")
	ErrMaxPositionExceeded  = errors.New("order would exceed maximum position size")
	ErrWashTrade            = errors.New("order rejected as a potential wash trade")
	ErrOrderNotFound        = errors.New("order not found at the broker")
	ErrPositionNotFound     = errors.New("position not found at the broker")
	ErrOrderPlacementFailed = errors.New("failed to place order")
	ErrOrderCancelFailed    = errors.New("failed to cancel order")
	ErrQuoteUnavailable     = errors.New("no quote available for symbol")

	// Advisor (LLM) Errors
	ErrAdvisorUnavailable = errors.New("advisor service is unavailable")
	ErrAdvisorFatal       = errors.New("advisor request failed and is not retryable")

	// Journal Errors
	ErrQueryFailed  = errors.New("journal query failed")
	ErrInsertFailed = errors.New("journal insert failed")
)
