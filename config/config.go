package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stockPilotBot/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Discord
	DiscordToken string

	// Alpaca API
	AlpacaAPIKey    string
	AlpacaSecretKey string
	AlpacaBaseURL   string // empty selects the paper trading endpoint

	// Gemini API
	GoogleAPIKey   string
	GeminiModel    string
	LLMMinInterval time.Duration // minimum spacing between LLM calls
	LLMMaxRetries  int
	LLMTemperature float64

	// Execution
	MaxPositionSize float64       // per-symbol cap as a fraction of portfolio value
	PollWaitOpen    time.Duration // order status poll delay during regular hours
	PollWaitClosed  time.Duration // order status poll delay during extended hours
	TradeCooldown   time.Duration // per-user spacing between !trade analyses

	// Indicators
	RSIPeriod        int
	RSIOverbought    float64
	RSIOversold      float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int

	// Watchlist
	WatchlistScanLimit int
	WatchlistTopN      int

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Discord
	cfg.DiscordToken = getEnv("DISCORD_TOKEN", "")
	if cfg.DiscordToken == "" {
		errs = append(errs, "DISCORD_TOKEN must be set")
	}

	// Alpaca API
	cfg.AlpacaAPIKey = getEnv("ALPACA_API_KEY", "")
	cfg.AlpacaSecretKey = getEnv("ALPACA_SECRET_KEY", "")
	cfg.AlpacaBaseURL = getEnv("ALPACA_BASE_URL", "")
	if cfg.AlpacaAPIKey == "" {
		errs = append(errs, "ALPACA_API_KEY must be set")
	}
	if cfg.AlpacaSecretKey == "" {
		errs = append(errs, "ALPACA_SECRET_KEY must be set")
	}

	// Gemini API
	cfg.GoogleAPIKey = getEnv("GOOGLE_API_KEY", "")
	if cfg.GoogleAPIKey == "" {
		errs = append(errs, "GOOGLE_API_KEY must be set")
	}
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "gemini-1.5-pro")

	llmIntervalSeconds := getEnvAsFloat("LLM_MIN_INTERVAL_SECONDS", 2.0)
	if llmIntervalSeconds < 0 {
		errs = append(errs, "LLM_MIN_INTERVAL_SECONDS cannot be negative")
	}
	cfg.LLMMinInterval = time.Duration(llmIntervalSeconds * float64(time.Second))

	cfg.LLMMaxRetries = getEnvAsInt("LLM_MAX_RETRIES", 5)
	if cfg.LLMMaxRetries <= 0 {
		errs = append(errs, "LLM_MAX_RETRIES must be positive")
	}
	cfg.LLMTemperature = getEnvAsFloat("LLM_TEMPERATURE", 0.7)

	// Execution
	cfg.MaxPositionSize, err = getEnvAsFloatRequired("MAX_POSITION_SIZE", 0.10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITION_SIZE: %v", err))
	} else if cfg.MaxPositionSize <= 0 || cfg.MaxPositionSize > 1.0 {
		errs = append(errs, "MAX_POSITION_SIZE must be between 0.0 (exclusive) and 1.0 (inclusive)")
	}

	pollOpenSeconds := getEnvAsInt("POLL_WAIT_OPEN_SECONDS", 2)
	if pollOpenSeconds <= 0 {
		errs = append(errs, "POLL_WAIT_OPEN_SECONDS must be positive")
	}
	cfg.PollWaitOpen = time.Duration(pollOpenSeconds) * time.Second

	pollClosedSeconds := getEnvAsInt("POLL_WAIT_CLOSED_SECONDS", 5)
	if pollClosedSeconds <= 0 {
		errs = append(errs, "POLL_WAIT_CLOSED_SECONDS must be positive")
	}
	cfg.PollWaitClosed = time.Duration(pollClosedSeconds) * time.Second

	cooldownSeconds := getEnvAsInt("TRADE_COOLDOWN_SECONDS", 30)
	if cooldownSeconds < 0 {
		errs = append(errs, "TRADE_COOLDOWN_SECONDS cannot be negative")
	}
	cfg.TradeCooldown = time.Duration(cooldownSeconds) * time.Second

	// Indicators (using defaults if not set)
	cfg.RSIPeriod = getEnvAsInt("RSI_PERIOD", 14)
	cfg.RSIOverbought = getEnvAsFloat("RSI_OVERBOUGHT", 70.0)
	cfg.RSIOversold = getEnvAsFloat("RSI_OVERSOLD", 30.0)
	cfg.MACDFastPeriod = getEnvAsInt("MACD_FAST_PERIOD", 12)
	cfg.MACDSlowPeriod = getEnvAsInt("MACD_SLOW_PERIOD", 26)
	cfg.MACDSignalPeriod = getEnvAsInt("MACD_SIGNAL_PERIOD", 9)

	if cfg.RSIPeriod <= 0 || cfg.MACDFastPeriod <= 0 || cfg.MACDSignalPeriod <= 0 {
		errs = append(errs, "indicator periods (RSI, MACD) must be positive")
	}
	if cfg.MACDFastPeriod >= cfg.MACDSlowPeriod {
		errs = append(errs, "MACD_FAST_PERIOD must be less than MACD_SLOW_PERIOD")
	}
	if cfg.RSIOverbought <= cfg.RSIOversold || cfg.RSIOverbought > 100 || cfg.RSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}

	// Watchlist
	cfg.WatchlistScanLimit = getEnvAsInt("WATCHLIST_SCAN_LIMIT", 50)
	if cfg.WatchlistScanLimit <= 0 {
		errs = append(errs, "WATCHLIST_SCAN_LIMIT must be positive")
	}
	cfg.WatchlistTopN = getEnvAsInt("WATCHLIST_TOP_N", 5)
	if cfg.WatchlistTopN <= 0 {
		errs = append(errs, "WATCHLIST_TOP_N must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/trades.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
