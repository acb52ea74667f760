package gateway

import (
	"context"

	"github.com/cryptopulse/cryptopulse/internal/models"
)

// Client defines the operations the generation backend must support.
// Implementations return raw typed errors; substituting fallback
// values is the service layer's job, so callers can choose per
// operation whether a failure is surfaced or swallowed.
type Client interface {
	// FetchMarketOverview returns live quotes for the fixed asset basket.
	FetchMarketOverview(ctx context.Context) ([]models.MarketQuote, error)

	// SearchCoin looks up a single asset by free-text query, including a
	// 7-day price history for charting.
	SearchCoin(ctx context.Context, query string, lang models.Language) (*models.CoinProfile, error)

	// FetchSentiment returns the current fear-and-greed report.
	FetchSentiment(ctx context.Context, lang models.Language) (*models.SentimentReport, error)

	// AnalyzeWallet produces a best-effort forensic profile of an address.
	AnalyzeWallet(ctx context.Context, address string, lang models.Language) (*models.WalletAnalysis, error)

	// GenerateInvestmentPlan splits a positive budget into layered
	// allocations.
	GenerateInvestmentPlan(ctx context.Context, budget float64, lang models.Language) (*models.InvestmentPlan, error)

	// GenerateTelegramPost writes a channel post. A non-empty
	// req.Context block suppresses live-data grounding for the call.
	// The image, when requested, is produced by a separate call via
	// GenerateChartImage; composition happens in the service layer.
	GenerateTelegramPost(ctx context.Context, req PostRequest) (*models.GeneratedPost, error)

	// GenerateChartImage renders a stylized chart for the topic and
	// returns it as a data URI, or "" when the backend produced none.
	GenerateChartImage(ctx context.Context, topic string) (string, error)

	// Advise runs one turn of the investment-advisor chat. The prior
	// log is caller-owned and replayed in full on every call; the
	// gateway keeps no conversation state.
	Advise(ctx context.Context, history []models.ChatMessage, message string, lang models.Language) (string, error)
}

// PostRequest carries the telegram-post generation knobs.
type PostRequest struct {
	Topic   string          `json:"topic"`
	Tone    models.Tone     `json:"tone"`
	Lang    models.Language `json:"lang"`
	Context string          `json:"context,omitempty"`
}
