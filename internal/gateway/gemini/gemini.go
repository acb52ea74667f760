package gemini

import (
	"context"
	"fmt"

	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/gateway/prompts"
	"github.com/cryptopulse/cryptopulse/internal/models"
)

// compile-time interface check
var _ gateway.Client = (*Gateway)(nil)

// FetchMarketOverview implements gateway.Client.
func (g *Gateway) FetchMarketOverview(ctx context.Context) ([]models.MarketQuote, error) {
	const op = "market_overview"

	text, err := g.invokeText(ctx, op, prompts.MarketOverview())
	if err != nil {
		return nil, err
	}

	quotes, err := gateway.Coerce[[]models.MarketQuote](op, text)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		gateway.FixTrend(&quotes[i])
	}
	return quotes, nil
}

// SearchCoin implements gateway.Client.
func (g *Gateway) SearchCoin(ctx context.Context, query string, lang models.Language) (*models.CoinProfile, error) {
	const op = "coin_search"

	text, err := g.invokeText(ctx, op, prompts.CoinSearch(query, lang))
	if err != nil {
		return nil, err
	}

	profile, err := gateway.Coerce[models.CoinProfile](op, text)
	if err != nil {
		return nil, err
	}
	gateway.FixTrend(&profile.MarketQuote)
	return &profile, nil
}

// FetchSentiment implements gateway.Client.
func (g *Gateway) FetchSentiment(ctx context.Context, lang models.Language) (*models.SentimentReport, error) {
	const op = "sentiment"

	text, err := g.invokeText(ctx, op, prompts.Sentiment(lang))
	if err != nil {
		return nil, err
	}

	report, err := gateway.Coerce[models.SentimentReport](op, text)
	if err != nil {
		return nil, err
	}
	report.Score = gateway.ClampScore(report.Score)
	if report.TopNews == nil {
		report.TopNews = []models.NewsItem{}
	}
	return &report, nil
}

// AnalyzeWallet implements gateway.Client.
func (g *Gateway) AnalyzeWallet(ctx context.Context, address string, lang models.Language) (*models.WalletAnalysis, error) {
	const op = "wallet_analysis"

	text, err := g.invokeText(ctx, op, prompts.WalletAnalysis(address, lang))
	if err != nil {
		return nil, err
	}

	analysis, err := gateway.Coerce[models.WalletAnalysis](op, text)
	if err != nil {
		return nil, err
	}
	if analysis.Address == "" {
		analysis.Address = address
	}
	analysis.RiskScore = gateway.ClampScore(analysis.RiskScore)
	gateway.FixActivity(&analysis)
	return &analysis, nil
}

// GenerateInvestmentPlan implements gateway.Client.
func (g *Gateway) GenerateInvestmentPlan(ctx context.Context, budget float64, lang models.Language) (*models.InvestmentPlan, error) {
	const op = "investment_plan"

	if budget <= 0 {
		return nil, fmt.Errorf("gateway: %s: budget must be positive, got %v", op, budget)
	}

	text, err := g.invokeText(ctx, op, prompts.InvestmentPlan(budget, lang))
	if err != nil {
		return nil, err
	}

	plan, err := gateway.Coerce[models.InvestmentPlan](op, text)
	if err != nil {
		return nil, err
	}
	for i := range plan.Allocations {
		plan.Allocations[i].Percentage = gateway.ClampPercent(plan.Allocations[i].Percentage)
	}
	return &plan, nil
}

// GenerateTelegramPost implements gateway.Client. The call runs with a
// strict JSON response schema; when req.Context is supplied the search
// tool is disabled so grounded results cannot contradict it.
func (g *Gateway) GenerateTelegramPost(ctx context.Context, req gateway.PostRequest) (*models.GeneratedPost, error) {
	const op = "telegram_post"

	text, err := g.invokeText(ctx, op, prompts.TelegramPost(req.Topic, req.Tone, req.Lang, req.Context))
	if err != nil {
		return nil, err
	}

	post, err := gateway.Coerce[models.GeneratedPost](op, text)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GenerateChartImage implements gateway.Client. A distinct image model
// is used; the first inline image part wins. No image in the response
// is not an error.
func (g *Gateway) GenerateChartImage(ctx context.Context, topic string) (string, error) {
	const op = "chart_image"

	spec := prompts.ChartImage(topic)
	resp, err := g.invoke(ctx, op, g.cfg.ImageModel, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: spec.Text}}}},
	})
	if err != nil {
		return "", err
	}
	return firstInlineImage(resp), nil
}

// Advise implements gateway.Client. The gateway is stateless across
// turns: the caller-held log is replayed as the contents prefix on
// every call, and the advisor system instruction is re-attached.
func (g *Gateway) Advise(ctx context.Context, history []models.ChatMessage, message string, lang models.Language) (string, error) {
	const op = "chat_turn"

	spec := prompts.ChatTurn(message, lang)

	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Role == models.RoleModel {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: spec.Text}}})

	req := generateRequest{
		Contents:          contents,
		SystemInstruction: &content{Parts: []part{{Text: spec.System}}},
		Tools:             []tool{{GoogleSearch: &struct{}{}}},
	}

	resp, err := g.invoke(ctx, op, g.cfg.TextModel, req)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}
