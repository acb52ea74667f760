// Package service orchestrates gateway operations for the dashboard:
// it applies the per-operation fallback policy, runs the startup
// fan-out, and composes the two-step post pipeline.
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/models"
)

// SnapshotCache caches the startup snapshot for a short TTL. A nil
// cache disables caching.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, lang models.Language) (*models.MarketSnapshot, bool)
	SetSnapshot(ctx context.Context, lang models.Language, snap *models.MarketSnapshot)
}

// ContextProvider supplies a live market-data block used to ground a
// generated post without the search tool. A nil provider disables it.
type ContextProvider interface {
	MarketContext(ctx context.Context) (string, error)
}

// Publisher pushes a finished post to an external channel. A nil
// publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, post *models.GeneratedPost) error
}

// Dashboard wires the gateway to its callers.
type Dashboard struct {
	gw        gateway.Client
	cache     SnapshotCache
	market    ContextProvider
	publisher Publisher
	log       *logrus.Entry
}

// New creates a Dashboard. cache, market and publisher are optional.
func New(gw gateway.Client, cache SnapshotCache, market ContextProvider, publisher Publisher, log *logrus.Logger) *Dashboard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dashboard{
		gw:        gw,
		cache:     cache,
		market:    market,
		publisher: publisher,
		log:       log.WithField("component", "dashboard"),
	}
}

// recover applies the operation's failure policy. Transport and
// coercion failures are interchangeable here; anything else — a
// missing credential above all — always surfaces.
func (d *Dashboard) recover(op string, err error, policy Policy) (swallow bool, out error) {
	if err == nil {
		return false, nil
	}
	if policy == ReturnFallback && gateway.IsFailure(err) {
		d.log.WithField("op", op).WithError(err).Warn("operation failed, returning fallback")
		return true, nil
	}
	return false, err
}

// Overview returns the market overview board. Policy: ReturnFallback,
// default is an empty sequence.
func (d *Dashboard) Overview(ctx context.Context) ([]models.MarketQuote, error) {
	quotes, err := d.gw.FetchMarketOverview(ctx)
	if swallow, err := d.recover("market_overview", err, ReturnFallback); err != nil {
		return nil, err
	} else if swallow {
		return []models.MarketQuote{}, nil
	}
	if quotes == nil {
		quotes = []models.MarketQuote{}
	}
	return quotes, nil
}

// Coin looks up one asset. Policy: ReturnFallback, default is an
// explicit nil profile.
func (d *Dashboard) Coin(ctx context.Context, query string, lang models.Language) (*models.CoinProfile, error) {
	profile, err := d.gw.SearchCoin(ctx, query, lang)
	if swallow, err := d.recover("coin_search", err, ReturnFallback); err != nil {
		return nil, err
	} else if swallow {
		return nil, nil
	}
	return profile, nil
}

// Sentiment returns the fear-and-greed report. Policy: ReturnFallback,
// default is the neutral report.
func (d *Dashboard) Sentiment(ctx context.Context, lang models.Language) (*models.SentimentReport, error) {
	report, err := d.gw.FetchSentiment(ctx, lang)
	if swallow, err := d.recover("sentiment", err, ReturnFallback); err != nil {
		return nil, err
	} else if swallow {
		return fallbackSentiment(lang), nil
	}
	return report, nil
}

// Wallet analyzes an address. Policy: ReturnFallback, default is the
// synthetic low-confidence record.
func (d *Dashboard) Wallet(ctx context.Context, address string, lang models.Language) (*models.WalletAnalysis, error) {
	analysis, err := d.gw.AnalyzeWallet(ctx, address, lang)
	if swallow, err := d.recover("wallet_analysis", err, ReturnFallback); err != nil {
		return nil, err
	} else if swallow {
		return fallbackWallet(address, lang), nil
	}
	return analysis, nil
}

// Plan builds an investment plan. Policy: ReturnFallback, default is
// an explicit nil plan. A non-positive budget is a caller error and
// surfaces regardless.
func (d *Dashboard) Plan(ctx context.Context, budget float64, lang models.Language) (*models.InvestmentPlan, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("plan: budget must be positive, got %v", budget)
	}
	plan, err := d.gw.GenerateInvestmentPlan(ctx, budget, lang)
	if swallow, err := d.recover("investment_plan", err, ReturnFallback); err != nil {
		return nil, err
	} else if swallow {
		return nil, nil
	}
	return plan, nil
}

// PostInput carries the post pipeline parameters.
type PostInput struct {
	Topic        string          `json:"topic"`
	Tone         models.Tone     `json:"tone"`
	Lang         models.Language `json:"lang"`
	IncludeImage bool            `json:"includeImage"`
	// UseLiveContext grounds the post on the live ticker block from
	// the context provider instead of the search tool.
	UseLiveContext bool `json:"useLiveContext"`
	// Context overrides the provider-supplied block when non-empty.
	Context string `json:"context,omitempty"`
	Publish bool   `json:"publish"`
}

// Post runs the two-step pipeline: generate text, then optionally the
// chart image. Policy: SurfaceError — this is the one operation whose
// failures reach the caller, so the UI can show a visible alert.
// Partial success is deliberate: a failed image still returns the
// post, just without one.
func (d *Dashboard) Post(ctx context.Context, in PostInput) (*models.GeneratedPost, error) {
	contextBlock := in.Context
	if contextBlock == "" && in.UseLiveContext && d.market != nil {
		block, err := d.market.MarketContext(ctx)
		if err != nil {
			// Degrade to search grounding rather than failing the post.
			d.log.WithError(err).Warn("live context unavailable, falling back to search grounding")
		} else {
			contextBlock = block
		}
	}

	post, err := d.gw.GenerateTelegramPost(ctx, gateway.PostRequest{
		Topic:   in.Topic,
		Tone:    in.Tone,
		Lang:    in.Lang,
		Context: contextBlock,
	})
	if err != nil {
		return nil, err
	}

	if in.IncludeImage {
		imageURL, err := d.gw.GenerateChartImage(ctx, in.Topic)
		if err != nil {
			d.log.WithError(err).Warn("image generation failed, returning post without image")
		} else if imageURL != "" {
			post.ImageURL = imageURL
		}
	}

	if in.Publish && d.publisher != nil {
		if err := d.publisher.Publish(ctx, post); err != nil {
			return nil, fmt.Errorf("publish post: %w", err)
		}
	}

	return post, nil
}

// Chat runs one advisor turn. Transport and coercion failures come
// back as a locale-appropriate "connection error" reply, not an error;
// a missing credential still surfaces.
func (d *Dashboard) Chat(ctx context.Context, history []models.ChatMessage, message string, lang models.Language) (string, error) {
	reply, err := d.gw.Advise(ctx, history, message, lang)
	if swallow, err := d.recover("chat_turn", err, ReturnFallback); err != nil {
		return "", err
	} else if swallow {
		return connectionErrorText(lang), nil
	}
	if reply == "" {
		reply = "N/A"
	}
	return reply, nil
}

// Snapshot performs the startup fan-out: market overview and sentiment
// run concurrently and are joined before the result is returned. Each
// leg resolves to its own fallback on failure, so the join never fails
// on upstream flakiness — only on a missing credential.
func (d *Dashboard) Snapshot(ctx context.Context, lang models.Language) (*models.MarketSnapshot, error) {
	if d.cache != nil {
		if snap, ok := d.cache.GetSnapshot(ctx, lang); ok {
			return snap, nil
		}
	}

	var (
		overview  []models.MarketQuote
		sentiment *models.SentimentReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = d.Overview(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sentiment, err = d.Sentiment(gctx, lang)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &models.MarketSnapshot{Overview: overview, Sentiment: *sentiment}
	if d.cache != nil {
		d.cache.SetSnapshot(ctx, lang, snap)
	}
	return snap, nil
}
