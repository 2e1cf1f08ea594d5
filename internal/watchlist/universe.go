package watchlist

// DefaultUniverse is the set of liquid large-cap symbols scanned by the
// watchlist commands. Kept small enough to scan within API rate limits.
var DefaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AMD", "INTC",
	"NFLX", "CRM", "ORCL", "ADBE", "AVGO", "QCOM", "TXN", "MU", "PLTR",
	"JPM", "BAC", "WFC", "GS", "MS", "V", "MA", "AXP", "PYPL", "COIN",
	"UNH", "JNJ", "PFE", "LLY", "MRK", "ABBV", "XOM", "CVX", "COP",
	"WMT", "COST", "HD", "MCD", "NKE", "SBUX", "DIS", "UBER", "ABNB",
	"BA", "CAT", "GE", "F",
}
