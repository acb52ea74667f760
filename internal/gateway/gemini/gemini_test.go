package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptopulse/cryptopulse/internal/credential"
	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/models"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc, cfg Config) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv(credential.EnvVar, "test-key")

	cfg.BaseURL = srv.URL
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = time.Millisecond
	}
	return New(credential.NewResolver(""), cfg, nil)
}

func writeTextReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	reply := generateResponse{
		Candidates: []candidate{{Content: content{
			Role:  "model",
			Parts: []part{{Text: text}},
		}}},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(reply))
}

func TestFetchMarketOverview(t *testing.T) {
	body := "```json\n" + `[
		{"symbol":"BTC","name":"Bitcoin","price":"$64,230","change24h":"+2.4%","trend":"up"},
		{"symbol":"ETH","name":"Ethereum","price":"$3,100","change24h":"-1.1%","trend":"sideways"}
	]` + "\n```"

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		writeTextReply(t, w, body)
	}, Config{})

	quotes, err := g.FetchMarketOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, models.TrendUp, quotes[0].Trend)
	// Out-of-enum trend is re-derived from the sign of the change.
	assert.Equal(t, models.TrendDown, quotes[1].Trend)
}

func TestFetchSentimentClampsScore(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeTextReply(t, w, `{"score":250,"summary":"Euphoric."}`)
	}, Config{})

	report, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Score)
	assert.NotNil(t, report.TopNews)
	assert.Empty(t, report.TopNews)
}

func TestAnalyzeWalletFixups(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeTextReply(t, w, `{
			"network":"Ethereum (ERC20)",
			"balance":"$10",
			"activityLevel":"hyperactive",
			"riskScore":-5,
			"tags":["Fresh Wallet"],
			"aiSummary":"New wallet."
		}`)
	}, Config{})

	analysis, err := g.AnalyzeWallet(context.Background(), "0xdeadbeef", models.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", analysis.Address)
	assert.Equal(t, 0, analysis.RiskScore)
	assert.Equal(t, models.ActivityLow, analysis.ActivityLevel)
}

func TestGenerateInvestmentPlanRejectsNonPositiveBudget(t *testing.T) {
	var calls atomic.Int32
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, Config{})

	_, err := g.GenerateInvestmentPlan(context.Background(), 0, models.LangEnglish)
	require.Error(t, err)
	_, err = g.GenerateInvestmentPlan(context.Background(), -100, models.LangRussian)
	require.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestGenerateTelegramPostRequestShape(t *testing.T) {
	var got generateRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		got = generateRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeTextReply(t, w, `{"content":"BTC is up.","hashtags":["#BTC"]}`)
	}, Config{})

	post, err := g.GenerateTelegramPost(context.Background(), gateway.PostRequest{
		Topic: "Bitcoin rally",
		Tone:  models.ToneProfessional,
		Lang:  models.LangEnglish,
	})
	require.NoError(t, err)
	assert.Equal(t, "BTC is up.", post.Content)

	// Without caller-supplied context the search tool is on and the
	// response is pinned to the JSON schema.
	require.Len(t, got.Tools, 1)
	assert.NotNil(t, got.Tools[0].GoogleSearch)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
	require.NotNil(t, got.GenerationConfig.ResponseSchema)

	_, err = g.GenerateTelegramPost(context.Background(), gateway.PostRequest{
		Topic:   "Bitcoin rally",
		Tone:    models.ToneProfessional,
		Lang:    models.LangEnglish,
		Context: "BTC-USDT: price $64,230, 24h change +2.4%",
	})
	require.NoError(t, err)
	assert.Empty(t, got.Tools, "a context block must disable the search tool")
}

func TestGenerateChartImage(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", r.URL.Path)
		reply := generateResponse{
			Candidates: []candidate{{Content: content{Parts: []part{
				{Text: "Here is your chart."},
				{InlineData: &inlineData{MIMEType: "image/png", Data: "aGVsbG8="}},
			}}}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	}, Config{})

	uri, err := g.GenerateChartImage(context.Background(), "Bitcoin rally")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", uri)
}

func TestGenerateChartImageNoImage(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeTextReply(t, w, "no image this time")
	}, Config{})

	uri, err := g.GenerateChartImage(context.Background(), "Bitcoin rally")
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestAdviseReplaysHistory(t *testing.T) {
	var got generateRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeTextReply(t, w, "Diversify first.")
	}, Config{})

	history := []models.ChatMessage{
		{Role: models.RoleUser, Text: "Is BTC a good buy?"},
		{Role: models.RoleModel, Text: "Depends on your horizon."},
	}
	reply, err := g.Advise(context.Background(), history, "What about ETH?", models.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Diversify first.", reply)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "Is BTC a good buy?", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "user", got.Contents[2].Role)
	assert.Contains(t, got.Contents[2].Parts[0].Text, "What about ETH?")
	require.NotNil(t, got.SystemInstruction)
	require.Len(t, got.Tools, 1)
}

func TestMissingCredentialShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	t.Setenv(credential.EnvVar, "")
	g := New(credential.NewResolver(""), Config{BaseURL: srv.URL, Timeout: time.Second}, nil)

	_, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	require.ErrorIs(t, err, credential.ErrMissing)
	assert.Zero(t, calls.Load(), "a missing key must fail before any network I/O")
}

func TestRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeTextReply(t, w, `{"score":40,"summary":"Cautious.","topNews":[]}`)
	}, Config{MaxRetries: 2})

	report, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, 40, report.Score)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNoRetryOnAuthRejection(t *testing.T) {
	var calls atomic.Int32
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`)
	}, Config{MaxRetries: 3})

	_, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	var te *gateway.TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Auth())
	assert.False(t, te.Retryable())
	assert.Contains(t, te.Error(), "API key not valid")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimitedSurfaces(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}, Config{MaxRetries: 0})

	_, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	var te *gateway.TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.RateLimited())
	assert.True(t, te.Retryable())
}

func TestMalformedPayloadIsCoercionError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeTextReply(t, w, "I cannot answer that in JSON, sorry.")
	}, Config{})

	_, err := g.FetchMarketOverview(context.Background())
	var ce *gateway.CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "market_overview", ce.Op)
	assert.True(t, gateway.IsFailure(err))
}
