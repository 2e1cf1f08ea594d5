package discordbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"stockPilotBot/internal/app"
	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/ports"
	"stockPilotBot/internal/watchlist"
)

const commandPrefix = "!"

// Service is the application surface the chat layer drives.
type Service interface {
	ExecuteTrade(ctx context.Context, req domain.TradeRequest) domain.OrderOutcome
	Analyze(ctx context.Context, symbol string) (*app.Analysis, error)
	Position(ctx context.Context, symbol string) (*domain.PositionSnapshot, error)
	Positions(ctx context.Context) ([]*domain.PositionSnapshot, error)
	Account(ctx context.Context) (*domain.AccountSnapshot, error)
	TopGainers(ctx context.Context, limit int) ([]watchlist.Entry, error)
	TopMomentum(ctx context.Context, limit int) ([]watchlist.Entry, error)
	TopBuyingPressure(ctx context.Context, limit int) ([]watchlist.Entry, error)
	TradesToday(ctx context.Context) (int, error)
	History(ctx context.Context, symbol string, limit int) ([]*domain.TradeRecord, error)
}

// Config holds configuration for the Discord bot adapter.
type Config struct {
	Token string
	// TradeCooldown is the per-user spacing between !trade analyses.
	TradeCooldown time.Duration
	// CommandTimeout bounds each command's downstream calls.
	CommandTimeout time.Duration
	Logger         ports.Logger
}

// Bot bridges Discord messages to the application service.
type Bot struct {
	session   *discordgo.Session
	service   Service
	logger    ports.Logger
	cooldowns *cooldownTracker
	timeout   time.Duration
}

// New creates the Discord bot. Start must be called to open the gateway.
func New(cfg Config, service Service) (*Bot, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Discord bot")
	}
	if service == nil {
		return nil, fmt.Errorf("service is required for Discord bot")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord token is required: %w", ports.ErrConfigurationError)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	cooldown := cfg.TradeCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	b := &Bot{
		session:   session,
		service:   service,
		logger:    cfg.Logger,
		cooldowns: newCooldownTracker(cooldown),
		timeout:   timeout,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w: %w", ports.ErrConnectionFailed, err)
	}
	b.logger.Info(ctx, "Discord bot connected")
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	b.logger.Info(context.Background(), "Discord bot disconnecting")
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	ctx := context.Background()
	b.logger.Info(ctx, "Logged in", map[string]interface{}{"user": r.User.Username})
	if err := s.UpdateGameStatus(0, "!help for commands"); err != nil {
		b.logger.Warn(ctx, "failed to set presence", map[string]interface{}{"error": err.Error()})
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own and other bots' messages.
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, commandPrefix) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	for _, reply := range b.dispatch(ctx, m.Author.ID, m.Content) {
		if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
			b.logger.Error(ctx, err, "failed to send message", map[string]interface{}{
				"channelID": m.ChannelID,
			})
		}
	}
}

// dispatch parses one command line and returns the replies to send, in order.
// It is separated from the gateway handler so routing is testable without a
// live session.
func (b *Bot) dispatch(ctx context.Context, userID, content string) []string {
	fields := strings.Fields(strings.TrimPrefix(content, commandPrefix))
	if len(fields) == 0 {
		return nil
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "start", "help":
		return []string{helpMessage}
	case "trade":
		return b.handleTrade(ctx, userID, args)
	case "buy":
		return b.handleOrder(ctx, domain.Buy, args)
	case "sell":
		return b.handleOrder(ctx, domain.Sell, args)
	case "position":
		return b.handlePosition(ctx, args)
	case "account":
		return b.handleAccount(ctx)
	case "history":
		return b.handleHistory(ctx, args)
	case "gainers":
		return b.handleScan(ctx, "Today's Top Gainers 📈", args, b.service.TopGainers)
	case "momentum":
		return b.handleScan(ctx, "Today's Top Momentum Stocks 🚀", args, b.service.TopMomentum)
	case "buyers":
		return b.handleScan(ctx, "Stocks with Strong Buying Activity 💪", args, b.service.TopBuyingPressure)
	default:
		// Unknown prefix commands stay silent so the bot coexists with others.
		return nil
	}
}

func (b *Bot) handleTrade(ctx context.Context, userID string, args []string) []string {
	if len(args) < 1 {
		return []string{"❌ Missing ticker. Usage: `!trade <TICKER>`"}
	}
	symbol := normalizeSymbol(args[0])

	if remaining, ok := b.cooldowns.Claim(userID); !ok {
		return []string{fmt.Sprintf("⏳ Please wait %d seconds before requesting another trade analysis.",
			int(remaining.Seconds())+1)}
	}

	ack := fmt.Sprintf("🔄 Analyzing %s... Please wait.", symbol)

	analysis, err := b.service.Analyze(ctx, symbol)
	if err != nil {
		// Failed analyses do not consume the cooldown.
		b.cooldowns.Release(userID)
		b.logger.Error(ctx, err, "analysis failed", map[string]interface{}{"symbol": symbol})
		return []string{ack, fmt.Sprintf("❌ Error analyzing %s. Check the ticker and try again.", symbol)}
	}
	return []string{ack, formatAnalysis(symbol, analysis)}
}

func (b *Bot) handleOrder(ctx context.Context, side domain.OrderSide, args []string) []string {
	if len(args) < 1 {
		return []string{fmt.Sprintf("❌ Missing ticker. Usage: `!%s <TICKER> [QUANTITY]`",
			strings.ToLower(string(side)))}
	}
	req := domain.TradeRequest{
		Symbol: normalizeSymbol(args[0]),
		Side:   side,
	}
	if len(args) >= 2 {
		qty, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || qty <= 0 {
			return []string{"❌ Invalid quantity. Use a positive whole number of shares."}
		}
		req.Quantity = &qty
	}

	outcome := b.service.ExecuteTrade(ctx, req)
	return []string{formatOutcome(outcome)}
}

func (b *Bot) handlePosition(ctx context.Context, args []string) []string {
	if len(args) < 1 {
		return []string{"❌ Missing ticker. Usage: `!position <TICKER>`"}
	}
	symbol := normalizeSymbol(args[0])

	pos, err := b.service.Position(ctx, symbol)
	if err != nil {
		b.logger.Error(ctx, err, "position lookup failed", map[string]interface{}{"symbol": symbol})
		return []string{fmt.Sprintf("❌ Error fetching position for %s.", symbol)}
	}
	return []string{formatPosition(symbol, pos)}
}

func (b *Bot) handleAccount(ctx context.Context) []string {
	acct, err := b.service.Account(ctx)
	if err != nil {
		b.logger.Error(ctx, err, "account lookup failed")
		return []string{"❌ Error fetching account info."}
	}
	positions, err := b.service.Positions(ctx)
	if err != nil {
		b.logger.Warn(ctx, "position list unavailable for account summary", map[string]interface{}{
			"error": err.Error(),
		})
	}
	trades, err := b.service.TradesToday(ctx)
	if err != nil {
		b.logger.Warn(ctx, "trade count unavailable for account summary", map[string]interface{}{
			"error": err.Error(),
		})
		trades = -1
	}
	return []string{formatAccount(acct, len(positions), trades)}
}

func (b *Bot) handleHistory(ctx context.Context, args []string) []string {
	if len(args) < 1 {
		return []string{"❌ Missing ticker. Usage: `!history <TICKER>`"}
	}
	symbol := normalizeSymbol(args[0])

	records, err := b.service.History(ctx, symbol, 10)
	if err != nil {
		b.logger.Error(ctx, err, "history lookup failed", map[string]interface{}{"symbol": symbol})
		return []string{fmt.Sprintf("❌ Error fetching trade history for %s.", symbol)}
	}
	return []string{formatHistory(symbol, records)}
}

func (b *Bot) handleScan(ctx context.Context, title string, args []string, scan func(context.Context, int) ([]watchlist.Entry, error)) []string {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return []string{"❌ Count must be a positive number."}
		}
		limit = n
	}
	ack := "🔍 Scanning market... Please wait."

	entries, err := scan(ctx, limit)
	if err != nil {
		b.logger.Error(ctx, err, "watchlist scan failed", map[string]interface{}{"title": title})
		return []string{ack, "❌ Market scan failed. Try again in a moment."}
	}
	return []string{ack, formatWatchlist(title, entries)}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "$"))
}
