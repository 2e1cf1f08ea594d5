package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"stockPilotBot/config"
	"stockPilotBot/internal/adapters/alpacaclient"
	"stockPilotBot/internal/adapters/discordbot"
	"stockPilotBot/internal/adapters/geminiclient"
	"stockPilotBot/internal/adapters/logger"
	"stockPilotBot/internal/adapters/sqlite"
	"stockPilotBot/internal/app"
	"stockPilotBot/internal/execution"
	"stockPilotBot/internal/marketdata"
	"stockPilotBot/internal/watchlist"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Trade Journal (Database Adapter)
	journal, err := sqlite.NewJournal(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade journal")
		log.Fatalf("FATAL: Failed to initialize trade journal: %v", err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing trade journal")
		}
	}()

	// 4. Initialize Alpaca Client (Broker + Market Data Adapter)
	broker, err := alpacaclient.New(alpacaclient.Config{
		APIKey:    cfg.AlpacaAPIKey,
		SecretKey: cfg.AlpacaSecretKey,
		BaseURL:   cfg.AlpacaBaseURL,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Alpaca client")
		log.Fatalf("FATAL: Failed to initialize Alpaca client: %v", err)
	}

	// 5. Initialize Gemini Advisor
	advisor, err := geminiclient.New(ctx, geminiclient.Config{
		APIKey:      cfg.GoogleAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: float32(cfg.LLMTemperature),
		MinInterval: cfg.LLMMinInterval,
		MaxRetries:  cfg.LLMMaxRetries,
		Logger:      appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Gemini advisor")
		log.Fatalf("FATAL: Failed to initialize Gemini advisor: %v", err)
	}
	defer func() {
		if err := advisor.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing Gemini advisor")
		}
	}()

	// 6. Initialize Execution Policy
	policy, err := execution.NewPolicy(broker, journal, appLogger, execution.Config{
		MaxPositionFraction: decimal.NewFromFloat(cfg.MaxPositionSize),
		PollWaitOpen:        cfg.PollWaitOpen,
		PollWaitClosed:      cfg.PollWaitClosed,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize execution policy")
		log.Fatalf("FATAL: Failed to initialize execution policy: %v", err)
	}

	// 7. Initialize Market Data Service and Watchlist Scanner
	market, err := marketdata.NewService(broker, appLogger, marketdata.Config{
		RSIPeriod:        cfg.RSIPeriod,
		RSIOverbought:    cfg.RSIOverbought,
		RSIOversold:      cfg.RSIOversold,
		MACDFastPeriod:   cfg.MACDFastPeriod,
		MACDSlowPeriod:   cfg.MACDSlowPeriod,
		MACDSignalPeriod: cfg.MACDSignalPeriod,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize market data service")
		log.Fatalf("FATAL: Failed to initialize market data service: %v", err)
	}

	scanner, err := watchlist.NewScanner(broker, appLogger, watchlist.Config{
		ScanLimit: cfg.WatchlistScanLimit,
		TopN:      cfg.WatchlistTopN,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize watchlist scanner")
		log.Fatalf("FATAL: Failed to initialize watchlist scanner: %v", err)
	}

	// 8. Initialize Application Service
	assistant, err := app.NewAssistantService(appLogger, broker, policy, advisor, market, scanner, journal)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize assistant service")
		log.Fatalf("FATAL: Failed to initialize assistant service: %v", err)
	}

	// 9. Initialize and Start the Discord Bot
	bot, err := discordbot.New(discordbot.Config{
		Token:         cfg.DiscordToken,
		TradeCooldown: cfg.TradeCooldown,
		Logger:        appLogger,
	}, assistant)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Discord bot")
		log.Fatalf("FATAL: Failed to initialize Discord bot: %v", err)
	}
	if err := bot.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to connect to Discord")
		log.Fatalf("FATAL: Failed to connect to Discord: %v", err)
	}

	// Run until interrupted.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{"signal": sig.String()})

	if err := bot.Stop(); err != nil {
		appLogger.Error(ctx, err, "Error disconnecting Discord bot")
	}
	appLogger.Info(ctx, "Application finished gracefully.")
}
