package ports

import (
	"context"

	"stockPilotBot/internal/domain"
)

// Advisor generates market commentary from an LLM. Implementations own their
// rate limiting and retry policy; callers see at most one of the standard
// errors (ErrRateLimited after retries are exhausted, ErrAdvisorUnavailable,
// ErrAdvisorFatal).
type Advisor interface {
	// AnalyzeSentiment returns a short sentiment read for a free-form query.
	AnalyzeSentiment(ctx context.Context, query string) (string, error)

	// TradingDecision returns a Buy/Sell/Hold recommendation with confidence
	// and reasoning, based on the supplied indicators and sentiment.
	TradingDecision(ctx context.Context, symbol string, ind *domain.IndicatorSet, sentiment string) (string, error)
}
