// Command trade_once submits a single trade through the execution policy
// without starting the Discord bot. Useful for smoke-testing the paper
// trading pipeline from the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockPilotBot/config"
	"stockPilotBot/internal/adapters/alpacaclient"
	"stockPilotBot/internal/adapters/logger"
	"stockPilotBot/internal/adapters/sqlite"
	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/execution"
)

func main() {
	symbol := flag.String("symbol", "", "ticker symbol to trade (required)")
	side := flag.String("side", "buy", "order side: buy or sell")
	qty := flag.Int64("qty", 0, "share quantity; 0 sizes the order automatically")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall execution timeout")
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}

	orderSide := domain.OrderSide(strings.ToUpper(*side))
	if !orderSide.IsValid() {
		log.Fatalf("invalid side %q: must be buy or sell", *side)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	journal, err := sqlite.NewJournal(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("Failed to initialize trade journal: %v", err)
	}
	defer journal.Close()

	broker, err := alpacaclient.New(alpacaclient.Config{
		APIKey:    cfg.AlpacaAPIKey,
		SecretKey: cfg.AlpacaSecretKey,
		BaseURL:   cfg.AlpacaBaseURL,
		Logger:    appLogger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Alpaca client: %v", err)
	}

	policy, err := execution.NewPolicy(broker, journal, appLogger, execution.Config{
		MaxPositionFraction: decimal.NewFromFloat(cfg.MaxPositionSize),
		PollWaitOpen:        cfg.PollWaitOpen,
		PollWaitClosed:      cfg.PollWaitClosed,
	})
	if err != nil {
		log.Fatalf("Failed to initialize execution policy: %v", err)
	}

	req := domain.TradeRequest{Symbol: strings.ToUpper(*symbol), Side: orderSide}
	if *qty > 0 {
		req.Quantity = qty
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	outcome := policy.ExecuteTrade(ctx, req)

	fmt.Printf("Result:   %s\n", outcome.Result)
	switch outcome.Result {
	case domain.OutcomeFilled:
		fmt.Printf("Filled:   %d shares of %s at $%s (total $%s)\n",
			outcome.FilledQuantity, outcome.Symbol,
			outcome.FilledPrice.StringFixed(2), outcome.TotalValue.StringFixed(2))
	case domain.OutcomeNotFilled:
		fmt.Printf("Attempts: %d\n", outcome.Attempts)
		fmt.Printf("Last quoted: $%s\n", outcome.LastQuotedPrice.StringFixed(2))
	default:
		fmt.Printf("Reason:   %s\n", outcome.Reason)
		if outcome.Detail != "" {
			fmt.Printf("Detail:   %s\n", outcome.Detail)
		}
	}
	if outcome.Hint != "" {
		fmt.Printf("Hint:     %s\n", outcome.Hint)
	}

	if outcome.Result == domain.OutcomeError {
		os.Exit(1)
	}
}
