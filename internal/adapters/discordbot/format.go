package discordbot

import (
	"fmt"
	"strings"

	"stockPilotBot/internal/app"
	"stockPilotBot/internal/domain"
	"stockPilotBot/internal/watchlist"
)

// maxMessageLen keeps replies comfortably inside Discord's 2000 character
// message limit, leaving headroom for mention prefixes.
const maxMessageLen = 1500

// truncate shortens s to maxMessageLen, marking the cut.
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen-3] + "..."
}

// formatOutcome renders a terminal trade outcome. The wording dispatches on
// the structured reason, never on error message text.
func formatOutcome(out domain.OrderOutcome) string {
	switch out.Result {
	case domain.OutcomeFilled:
		return fmt.Sprintf("✅ %s order filled: %d shares of %s at $%s (total $%s)",
			out.Side, out.FilledQuantity, out.Symbol,
			out.FilledPrice.StringFixed(2), out.TotalValue.StringFixed(2))

	case domain.OutcomeNotFilled:
		msg := fmt.Sprintf("⏳ %s order for %s did not fill after %d attempts (last quoted $%s).",
			out.Side, out.Symbol, out.Attempts, out.LastQuotedPrice.StringFixed(2))
		if out.Hint != "" {
			msg += " " + out.Hint
		}
		return msg

	case domain.OutcomeRejected:
		return "❌ " + rejectMessage(out)

	default:
		return fmt.Sprintf("❌ Trade failed for %s: a brokerage error occurred. Please try again shortly.", out.Symbol)
	}
}

func rejectMessage(out domain.OrderOutcome) string {
	var msg string
	switch out.Reason {
	case domain.ReasonWashTrade:
		msg = fmt.Sprintf("Order rejected: the broker flagged a potential wash trade in %s.", out.Symbol)
	case domain.ReasonInsufficientFunds:
		msg = fmt.Sprintf("Insufficient buying power for this %s order in %s.", strings.ToLower(string(out.Side)), out.Symbol)
	case domain.ReasonInsufficientPosition:
		msg = fmt.Sprintf("You do not hold enough shares of %s to sell.", out.Symbol)
	case domain.ReasonMaxPositionExceeded:
		msg = fmt.Sprintf("This order would push %s past its maximum portfolio allocation.", out.Symbol)
	case domain.ReasonBrokerRejected:
		msg = fmt.Sprintf("The broker rejected the %s order in %s.", strings.ToLower(string(out.Side)), out.Symbol)
	case domain.ReasonInvalidRequest:
		msg = "Invalid trade request. Check the ticker and quantity."
	default:
		msg = fmt.Sprintf("Order for %s could not be placed.", out.Symbol)
	}
	if out.Hint != "" {
		msg += " " + out.Hint
	}
	return msg
}

func formatAnalysis(symbol string, analysis *app.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 **Trading Analysis for $%s**\n\n", symbol)

	if analysis.Decision != "" {
		sb.WriteString(analysis.Decision)
		sb.WriteString("\n\n")
	}

	ind := analysis.Indicators
	sb.WriteString("📊 **Technical Indicators**\n")
	fmt.Fprintf(&sb, "   • Price: $%.2f\n", ind.Price)
	fmt.Fprintf(&sb, "   • RSI: %.2f\n", ind.RSI)
	fmt.Fprintf(&sb, "   • MACD: %.4f (signal %.4f)\n", ind.MACD, ind.MACDSignal)
	fmt.Fprintf(&sb, "   • Volume: %d\n", ind.Volume)

	if analysis.Sentiment != "" {
		fmt.Fprintf(&sb, "\n📰 **Sentiment**\n%s\n", analysis.Sentiment)
	}

	if info := analysis.Info; info != nil {
		sb.WriteString("\n📈 **Stock Information**\n")
		fmt.Fprintf(&sb, "   • Name: %s\n", info.Name)
		fmt.Fprintf(&sb, "   • Exchange: %s\n", info.Exchange)
		fmt.Fprintf(&sb, "   • Tradable: %t\n", info.Tradable)
	}

	return truncate(sb.String())
}

func formatPosition(symbol string, pos *domain.PositionSnapshot) string {
	if pos == nil {
		return fmt.Sprintf("No position found for %s", symbol)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **Position in %s**\n", pos.Symbol)
	fmt.Fprintf(&sb, "   • Quantity: %d shares\n", pos.Quantity)
	fmt.Fprintf(&sb, "   • Average Entry: $%s\n", pos.AvgEntryPrice.StringFixed(2))
	fmt.Fprintf(&sb, "   • Current Price: $%s\n", pos.CurrentPrice.StringFixed(2))
	fmt.Fprintf(&sb, "   • Market Value: $%s\n", pos.MarketValue.StringFixed(2))
	fmt.Fprintf(&sb, "   • Unrealized P/L: $%s\n", pos.UnrealizedPL.StringFixed(2))
	return sb.String()
}

// formatAccount renders the account summary. A negative tradesToday means
// the count was unavailable and the line is omitted.
func formatAccount(acct *domain.AccountSnapshot, positionCount, tradesToday int) string {
	var sb strings.Builder
	sb.WriteString("💰 **Account Information**\n")
	fmt.Fprintf(&sb, "   • Cash: $%s\n", acct.Cash.StringFixed(2))
	fmt.Fprintf(&sb, "   • Buying Power: $%s\n", acct.BuyingPower.StringFixed(2))
	fmt.Fprintf(&sb, "   • Portfolio Value: $%s\n", acct.PortfolioValue.StringFixed(2))
	fmt.Fprintf(&sb, "   • Open Positions: %d\n", positionCount)
	if tradesToday >= 0 {
		fmt.Fprintf(&sb, "   • Trades Today: %d\n", tradesToday)
	}
	return sb.String()
}

func formatWatchlist(title string, entries []watchlist.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **%s**\n\n", title)
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. $%s\n", i+1, e.Symbol)
		fmt.Fprintf(&sb, "   • Change: %.2f%%\n", e.ChangePct)
		fmt.Fprintf(&sb, "   • Price: $%.2f\n", e.Price)
		fmt.Fprintf(&sb, "   • Score: %.2f\n\n", e.Score)
	}
	return truncate(sb.String())
}

func formatHistory(symbol string, records []*domain.TradeRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("No recorded trades for %s yet.", symbol)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 **Recent trades for %s**\n", symbol)
	for _, rec := range records {
		fmt.Fprintf(&sb, "   • %s %s %d @ $%s | %s\n",
			rec.ExecutedAt.Format("Jan 02 15:04"), rec.Side, rec.Quantity,
			rec.Price.StringFixed(2), rec.Result)
	}
	return truncate(sb.String())
}

const helpMessage = "👋 Hey there! Want to trade today? 🚀\n" +
	"**Use these commands to get started:**\n" +
	"🔹 `!trade <TICKER>` → Get AI insights on a stock (30s cooldown)\n" +
	"🔹 `!buy <TICKER> [QUANTITY]` → Buy shares\n" +
	"🔹 `!sell <TICKER> [QUANTITY]` → Sell shares\n" +
	"🔹 `!position <TICKER>` → Check your position\n" +
	"🔹 `!account` → View account info\n" +
	"🔹 `!history <TICKER>` → View your recent trades\n" +
	"🔹 `!gainers [count]` → View top gaining stocks\n" +
	"🔹 `!momentum [count]` → View high momentum stocks\n" +
	"🔹 `!buyers [count]` → View stocks with strong buying activity\n" +
	"🔹 `!help` → See all commands"
