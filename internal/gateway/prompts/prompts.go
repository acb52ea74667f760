// Package prompts builds the operation prompts sent to the generation
// endpoint. Builders are pure: given identical inputs they produce
// identical specs, and they never perform I/O. Each prompt embeds the
// exact JSON shape the response must take so the coercion stage has a
// fixed target.
package prompts

import (
	"fmt"
	"strings"

	"github.com/cryptopulse/cryptopulse/internal/models"
)

// Spec is a fully rendered prompt plus the per-call endpoint options.
type Spec struct {
	Text string
	// System is a standing instruction for the whole conversation;
	// only the chat operation sets it.
	System string
	// UseSearch enables the endpoint's live-data grounding tool.
	UseSearch bool
	// Schema, when non-nil, asks the endpoint for strict JSON of the
	// given shape.
	Schema *Schema
}

// Schema is a minimal structural hint understood by the endpoint.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
}

// The two locale directives. Exactly one appears in any rendered
// prompt; tests rely on the literal text.
const (
	directiveEnglish = "Answer in English language."
	directiveRussian = "Answer in Russian language."
)

// LangDirective returns the directive for lang, defaulting to English.
func LangDirective(lang models.Language) string {
	if lang == models.LangRussian {
		return directiveRussian
	}
	return directiveEnglish
}

// OverviewBasket is the fixed asset basket of the market overview.
var OverviewBasket = []string{
	"Bitcoin (BTC)",
	"Ethereum (ETH)",
	"Solana (SOL)",
	"Binance Coin (BNB)",
	"Ripple (XRP)",
}

// HistoryPoints is the number of price points requested per coin search.
const HistoryPoints = 7

// MarketOverview asks for live quotes for the fixed basket.
func MarketOverview() Spec {
	text := fmt.Sprintf(`Find the current real-time price (in USD) and 24h percentage change for:
%s.

Return the data strictly in this JSON format (no markdown code blocks, just raw JSON):
[
  {
    "symbol": "BTC",
    "name": "Bitcoin",
    "price": "$64,230",
    "change24h": "+2.4%%",
    "trend": "up"
  }
]

Rules:
- "trend" must be "up", "down", or "neutral" based on the sign of the change.
- Use the search tool to get the absolute latest data.`,
		strings.Join(OverviewBasket, ", "))
	return Spec{Text: text, UseSearch: true}
}

// CoinSearch asks for a profile of a single asset with a 7-day history.
func CoinSearch(query string, lang models.Language) Spec {
	text := fmt.Sprintf(`Find detailed information about the cryptocurrency %q.
1. Current Price (USD).
2. 24h Change (%%).
3. Market Cap.
4. Short description (1 sentence). %s
5. Price history for the LAST %d DAYS (closing price each day).

Use the search tool to find real data.

Return strictly in this JSON format:
{
  "symbol": "BTC",
  "name": "Bitcoin",
  "price": "$65,000",
  "change24h": "+2%%",
  "trend": "up",
  "marketCap": "$1.2T",
  "description": "Bitcoin is the first decentralized cryptocurrency...",
  "history": [
    {"date": "Day 1", "price": 60000},
    {"date": "Day 2", "price": 61000}
  ]
}

The "history" array must contain exactly %d entries in chronological order.`,
		query, LangDirective(lang), HistoryPoints, HistoryPoints)
	return Spec{Text: text, UseSearch: true}
}

// Sentiment asks for the fear-and-greed report with top headlines.
func Sentiment(lang models.Language) Spec {
	text := fmt.Sprintf(`Analyze the current crypto market sentiment based on today's news.
1. Provide a "Fear & Greed" score from 0 (Extreme Fear) to 100 (Extreme Greed).
2. Write a 2-sentence summary about the market state. %s
3. List 3 top trending news headlines with their source.

Use the search tool to find the latest news.

Return the result strictly in this JSON format:
{
  "score": 75,
  "summary": "The market is growing...",
  "topNews": [
    {"title": "...", "url": "...", "source": "..."}
  ]
}`, LangDirective(lang))
	return Spec{Text: text, UseSearch: true}
}

// WalletAnalysis asks for a best-effort forensic profile. The fallback
// instruction keeps the response shape stable when the address is not
// publicly known.
func WalletAnalysis(address string, lang models.Language) Spec {
	text := fmt.Sprintf(`Conduct a forensic analysis of this cryptocurrency wallet address: %q.
Use the search tool to find this address on block explorers (Etherscan, BscScan, Solscan, etc.).

Determine:
1. Which network is it likely on?
2. Estimate current balance if visible in search snippets (or state "Unknown").
3. Is it an active wallet?
4. Are there any known tags (e.g., "Binance Hot Wallet", "Hacker", "Inactive")?

%s

Return strictly in this JSON format:
{
  "address": %q,
  "network": "Ethereum (ERC20)",
  "balance": "$4,230.50 / 1.2 ETH",
  "activityLevel": "High",
  "riskScore": 20,
  "tags": ["Whale", "DeFi User"],
  "aiSummary": "This wallet has been active recently..."
}

If no info is found, return a generic analysis based on the address format structure.`,
		address, LangDirective(lang), address)
	return Spec{Text: text, UseSearch: true}
}

// InvestmentPlan asks for a layered allocation summing to the budget.
func InvestmentPlan(budget float64, lang models.Language) Spec {
	text := fmt.Sprintf(`You are a senior crypto portfolio manager. The user has a budget of $%.2f.
Analyze the CURRENT market conditions using the search tool (look for "best crypto to buy now", "whale accumulation coins", "market sentiment").

Create a diversified portfolio allocation plan for this budget.
1. Mix: Include a safe layer (BTC/ETH), a growth layer (Top Altcoins like SOL, BNB), and maybe a small risk layer if market sentiment allows.
2. Calculate the exact USD amount for each coin so that the amounts sum to the budget.
3. Provide a specific reason for each choice based on CURRENT news/tech.
4. Assign a hex color for each coin for a chart.

%s

Return strictly in this JSON format:
{
  "totalBudget": %.2f,
  "strategySummary": "Given the current bullish sentiment...",
  "allocations": [
    {
      "coin": "Bitcoin (BTC)",
      "amount": 500,
      "percentage": 50,
      "reason": "Safe haven asset, strong support at 60k.",
      "riskLevel": "Low",
      "color": "#F7931A"
    }
  ]
}`, budget, LangDirective(lang), budget)
	return Spec{Text: text, UseSearch: true}
}

// TelegramPost asks for a channel post. A non-empty contextBlock is
// embedded verbatim and disables the search tool for the call, so live
// results cannot contradict the supplied data.
func TelegramPost(topic string, tone models.Tone, lang models.Language, contextBlock string) Spec {
	var b strings.Builder
	fmt.Fprintf(&b, `Write a HIGHLY ENGAGING Telegram post about: %q.
Tone: %s.
%s

Structure requirements:
1. Headline: Use ALL CAPS for key words and emojis. Make it 'clickbaity' but truthful.
2. Body: Short sentences, bullet points.
3. Key Data: If relevant, use bold text for prices (e.g., **$65,000**).
4. Call to Action: Encourage users to react or subscribe.`,
		topic, tone, LangDirective(lang))

	useSearch := contextBlock == ""
	if useSearch {
		b.WriteString("\n\nUse the search tool to find the latest info on this topic to make it accurate.")
	} else {
		b.WriteString("\n\nUse this REAL-TIME MARKET DATA as the basis for the post:\n")
		b.WriteString(contextBlock)
	}

	b.WriteString("\n\nReturn JSON with 'content' (string) and 'hashtags' (array of strings).")

	return Spec{
		Text:      b.String(),
		UseSearch: useSearch,
		Schema: &Schema{
			Type: "object",
			Properties: map[string]*Schema{
				"content":  {Type: "string"},
				"hashtags": {Type: "array", Items: &Schema{Type: "string"}},
			},
		},
	}
}

// ChartImage describes the image to render for a topic. Consumed by
// the image model, so no JSON shape is requested.
func ChartImage(topic string) Spec {
	text := fmt.Sprintf(`A professional, high-tech cryptocurrency trading chart for %q.
Dark theme, neon green and red candles, technical indicators lines (RSI, MACD).
The chart should look like a professional TradingView screenshot.
No text overlay, just the chart interface.
Aspect ratio 16:9.`, topic)
	return Spec{Text: text}
}

// AdvisorSystem is the standing instruction for the advisor chat.
func AdvisorSystem(lang models.Language) string {
	return fmt.Sprintf(`You are an elite Crypto Investment Advisor and On-Chain Analyst.
Your goal is to give specific, data-driven advice.
%s

Key behaviors:
1. WHALE ANALYSIS: Always try to find info about "whale accumulation", "large wallet inflows", or "exchange outflows" using the search tool.
2. SPECIFICITY: Don't just say "DYOR". Say "Solana looks good because X, Y, Z, buy zone: $130-140".
3. TIMEFRAMES: Specify if the trade is Short-term (Scalp), Mid-term (Swing), or Long-term (HODL).
4. RISKS: Always mention the risk level (Low, Medium, High).
5. Use bold text for Coin Names and Prices.

Format the output nicely with bullet points.`, LangDirective(lang))
}

// ChatTurn wraps one advisor turn. History replay is the transport's
// concern; the spec here only carries the new message and the standing
// system instruction.
func ChatTurn(message string, lang models.Language) Spec {
	return Spec{
		Text:      message,
		System:    AdvisorSystem(lang),
		UseSearch: true,
	}
}
