package geminiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jpillora/backoff"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
)

const (
	defaultModel       = "gemini-1.5-pro"
	defaultTemperature = 0.7
	defaultMaxRetries  = 5
	defaultMinInterval = 2 * time.Second
)

// Config holds configuration specific to the Gemini advisor adapter.
type Config struct {
	APIKey string
	// Model overrides the generative model name; empty selects the default.
	Model       string
	Temperature float32
	// MinInterval is the minimum spacing between API calls.
	MinInterval time.Duration
	// MaxRetries bounds retry attempts on rate-limit and server errors.
	MaxRetries int
	Logger     ports.Logger
}

// Client implements the ports.Advisor interface using the Gemini API.
type Client struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	limiter    *rateLimiter
	logger     ports.Logger
	maxRetries int

	// Injected for tests; production calls the real model.
	generate func(ctx context.Context, prompt string) (string, error)
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a new Gemini advisor adapter.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Gemini client")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", ports.ErrConfigurationError)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	minInterval := cfg.MinInterval
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)

	c := &Client{
		client:     client,
		model:      model,
		limiter:    newRateLimiter(minInterval),
		logger:     cfg.Logger,
		maxRetries: maxRetries,
		sleep:      sleepCtx,
	}
	c.generate = c.generateContent

	cfg.Logger.Info(ctx, "Gemini advisor configured", map[string]interface{}{
		"model":       modelName,
		"minInterval": minInterval.String(),
	})
	return c, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// AnalyzeSentiment returns a short sentiment read for a free-form query.
func (c *Client) AnalyzeSentiment(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(`Analyze the market sentiment for: %s

Please provide a structured analysis covering:
1. Overall market sentiment (bullish/bearish/neutral)
2. Key factors influencing the sentiment
3. Potential market impact

Keep the response concise and focused on actionable insights.`, query)

	return c.invoke(ctx, "AnalyzeSentiment", prompt)
}

// TradingDecision returns a Buy/Sell/Hold recommendation with confidence and
// reasoning based on the supplied indicators and sentiment.
func (c *Client) TradingDecision(ctx context.Context, symbol string, ind *domain.IndicatorSet, sentiment string) (string, error) {
	if ind == nil {
		return "", fmt.Errorf("indicator set is required: %w", ports.ErrInvalidRequest)
	}

	prompt := fmt.Sprintf(`Analyze %s for trading decision based on:

Technical Indicators:
Price: $%.2f
RSI: %.2f
MACD: %.4f (signal %.4f, histogram %.4f)
Volume: %d

Market Sentiment:
%s

Provide:
1. Trading recommendation (Buy/Sell/Hold)
2. Confidence level (1-10)
3. Key reasons for decision
4. Risk factors to consider

Keep the analysis focused and actionable.`,
		symbol, ind.Price, ind.RSI, ind.MACD, ind.MACDSignal, ind.MACDHist, ind.Volume, sentiment)

	return c.invoke(ctx, "TradingDecision", prompt)
}

// invoke runs one prompt through the rate limiter and retry loop. Rate-limit
// and server errors back off exponentially with jitter; anything else is
// fatal immediately.
func (c *Client) invoke(ctx context.Context, op, prompt string) (string, error) {
	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    32 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s interrupted: %w: %w", op, ports.ErrContextCanceled, err)
		}

		text, err := c.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}

		retryable, classified := classify(err)
		if !retryable {
			c.logger.Error(ctx, err, op+" failed", map[string]interface{}{"attempt": attempt + 1})
			return "", fmt.Errorf("%s failed: %w: %w", op, classified, err)
		}

		lastErr = fmt.Errorf("%w: %w", classified, err)
		delay := b.Duration()
		c.logger.Warn(ctx, op+" retrying after transient advisor error", map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   err.Error(),
		})
		if err := c.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%s interrupted: %w: %w", op, ports.ErrContextCanceled, err)
		}
	}

	return "", fmt.Errorf("%s failed after %d attempts: %w", op, c.maxRetries, lastErr)
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return extractText(resp)
}

// classify maps an API error onto the advisor error taxonomy and reports
// whether it is worth retrying.
func classify(err error) (retryable bool, classified error) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return true, ports.ErrRateLimited
		case apiErr.Code >= 500:
			return true, ports.ErrAdvisorUnavailable
		default:
			return false, ports.ErrAdvisorFatal
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, ports.ErrAdvisorUnavailable
	}
	if errors.Is(err, context.Canceled) {
		return false, ports.ErrContextCanceled
	}
	return false, ports.ErrAdvisorFatal
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty advisor response: %w", ports.ErrAdvisorUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("advisor returned no text: %w", ports.ErrAdvisorUnavailable)
	}
	return out, nil
}
