// Package openai implements the gateway.Client interface on top of the
// OpenAI chat completions API. It has no live-data grounding tool, so
// answers come from model knowledge only; prompts are shared with the
// Gemini backend.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/cryptopulse/cryptopulse/internal/credential"
	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/gateway/prompts"
	"github.com/cryptopulse/cryptopulse/internal/models"
)

const systemPrompt = "You are a professional cryptocurrency analyst. " +
	"Always return results strictly in the JSON format requested by the user, " +
	"with no markdown code blocks."

var _ gateway.Client = (*Gateway)(nil)

// Gateway adapts chat completions to the gateway contract.
type Gateway struct {
	resolver *credential.Resolver
	model    string
	// newClient is swapped in tests.
	newClient func(key string) completionAPI
}

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
	CreateImage(ctx context.Context, req goopenai.ImageRequest) (goopenai.ImageResponse, error)
}

// New creates an OpenAI-backed gateway.
func New(resolver *credential.Resolver, model string) *Gateway {
	if model == "" {
		model = goopenai.GPT4o
	}
	return &Gateway{
		resolver: resolver,
		model:    model,
		newClient: func(key string) completionAPI {
			return goopenai.NewClient(key)
		},
	}
}

// complete resolves the credential, runs one chat completion and
// returns the raw text. Failures map into the gateway error taxonomy.
func (g *Gateway) complete(ctx context.Context, op string, spec prompts.Spec, history []models.ChatMessage) (string, error) {
	key, err := g.resolver.Resolve()
	if err != nil {
		return "", err
	}
	client := g.newClient(key)

	system := spec.System
	if system == "" {
		system = systemPrompt
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		role := goopenai.ChatMessageRoleUser
		if m.Role == models.RoleModel {
			role = goopenai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: spec.Text,
	})

	req := goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: 0.3,
	}
	if spec.Schema != nil {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapAPIError(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// FetchMarketOverview implements gateway.Client.
func (g *Gateway) FetchMarketOverview(ctx context.Context) ([]models.MarketQuote, error) {
	const op = "market_overview"
	text, err := g.complete(ctx, op, prompts.MarketOverview(), nil)
	if err != nil {
		return nil, err
	}
	return gateway.Coerce[[]models.MarketQuote](op, text)
}

// SearchCoin implements gateway.Client.
func (g *Gateway) SearchCoin(ctx context.Context, query string, lang models.Language) (*models.CoinProfile, error) {
	const op = "coin_search"
	text, err := g.complete(ctx, op, prompts.CoinSearch(query, lang), nil)
	if err != nil {
		return nil, err
	}
	profile, err := gateway.Coerce[models.CoinProfile](op, text)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchSentiment implements gateway.Client.
func (g *Gateway) FetchSentiment(ctx context.Context, lang models.Language) (*models.SentimentReport, error) {
	const op = "sentiment"
	text, err := g.complete(ctx, op, prompts.Sentiment(lang), nil)
	if err != nil {
		return nil, err
	}
	report, err := gateway.Coerce[models.SentimentReport](op, text)
	if err != nil {
		return nil, err
	}
	report.Score = gateway.ClampScore(report.Score)
	return &report, nil
}

// AnalyzeWallet implements gateway.Client.
func (g *Gateway) AnalyzeWallet(ctx context.Context, address string, lang models.Language) (*models.WalletAnalysis, error) {
	const op = "wallet_analysis"
	text, err := g.complete(ctx, op, prompts.WalletAnalysis(address, lang), nil)
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
	text, err := g.complete(ctx, op, prompts.InvestmentPlan(budget, lang), nil)
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

// GenerateTelegramPost implements gateway.Client.
func (g *Gateway) GenerateTelegramPost(ctx context.Context, req gateway.PostRequest) (*models.GeneratedPost, error) {
	const op = "telegram_post"
	text, err := g.complete(ctx, op, prompts.TelegramPost(req.Topic, req.Tone, req.Lang, req.Context), nil)
	if err != nil {
		return nil, err
	}
	post, err := gateway.Coerce[models.GeneratedPost](op, text)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GenerateChartImage implements gateway.Client using the image API.
func (g *Gateway) GenerateChartImage(ctx context.Context, topic string) (string, error) {
	const op = "chart_image"
	key, err := g.resolver.Resolve()
	if err != nil {
		return "", err
	}
	client := g.newClient(key)

	resp, err := client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompts.ChartImage(topic).Text,
		Model:          goopenai.CreateImageModelDallE3,
		Size:           goopenai.CreateImageSize1792x1024,
		ResponseFormat: goopenai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return "", mapAPIError(op, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", nil
	}
	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

// Advise implements gateway.Client.
func (g *Gateway) Advise(ctx context.Context, history []models.ChatMessage, message string, lang models.Language) (string, error) {
	const op = "chat_turn"
	return g.complete(ctx, op, prompts.ChatTurn(message, lang), history)
}
