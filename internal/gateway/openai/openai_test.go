package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptopulse/cryptopulse/internal/credential"
	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/models"
)

type fakeCompletionAPI struct {
	lastChat  goopenai.ChatCompletionRequest
	lastImage goopenai.ImageRequest
	chatText  string
	chatErr   error
	imageB64  string
	imageErr  error
}

func (f *fakeCompletionAPI) CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	f.lastChat = req
	if f.chatErr != nil {
		return goopenai.ChatCompletionResponse{}, f.chatErr
	}
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{{
			Message: goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: f.chatText},
		}},
	}, nil
}

func (f *fakeCompletionAPI) CreateImage(ctx context.Context, req goopenai.ImageRequest) (goopenai.ImageResponse, error) {
	f.lastImage = req
	if f.imageErr != nil {
		return goopenai.ImageResponse{}, f.imageErr
	}
	return goopenai.ImageResponse{Data: []goopenai.ImageResponseDataInner{{B64JSON: f.imageB64}}}, nil
}

func newTestGateway(t *testing.T, fake *fakeCompletionAPI) *Gateway {
	t.Helper()
	t.Setenv(credential.EnvVar, "test-key")
	g := New(credential.NewResolver(""), "")
	g.newClient = func(key string) completionAPI {
		assert.Equal(t, "test-key", key)
		return fake
	}
	return g
}

func TestFetchSentiment(t *testing.T) {
	fake := &fakeCompletionAPI{chatText: `{"score":130,"summary":"Euphoric.","topNews":[]}`}
	g := newTestGateway(t, fake)

	report, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Score)

	require.NotEmpty(t, fake.lastChat.Messages)
	assert.Equal(t, goopenai.ChatMessageRoleSystem, fake.lastChat.Messages[0].Role)
	assert.Equal(t, goopenai.GPT4o, fake.lastChat.Model)
}

func TestTelegramPostRequestsJSONFormat(t *testing.T) {
	fake := &fakeCompletionAPI{chatText: `{"content":"BTC is up.","hashtags":["#BTC"]}`}
	g := newTestGateway(t, fake)

	post, err := g.GenerateTelegramPost(context.Background(), gateway.PostRequest{
		Topic: "Bitcoin rally",
		Tone:  models.ToneHype,
		Lang:  models.LangEnglish,
	})
	require.NoError(t, err)
	assert.Equal(t, "BTC is up.", post.Content)

	require.NotNil(t, fake.lastChat.ResponseFormat)
	assert.Equal(t, goopenai.ChatCompletionResponseFormatTypeJSONObject, fake.lastChat.ResponseFormat.Type)
}

func TestAdviseMapsHistoryRoles(t *testing.T) {
	fake := &fakeCompletionAPI{chatText: "Diversify first."}
	g := newTestGateway(t, fake)

	history := []models.ChatMessage{
		{Role: models.RoleUser, Text: "Is BTC a buy?"},
		{Role: models.RoleModel, Text: "Depends on your horizon."},
	}
	reply, err := g.Advise(context.Background(), history, "What about ETH?", models.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Diversify first.", reply)

	msgs := fake.lastChat.Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, goopenai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, goopenai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, goopenai.ChatMessageRoleAssistant, msgs[2].Role)
	assert.Equal(t, goopenai.ChatMessageRoleUser, msgs[3].Role)
	assert.Contains(t, msgs[3].Content, "What about ETH?")
}

func TestGenerateChartImage(t *testing.T) {
	fake := &fakeCompletionAPI{imageB64: "aGVsbG8="}
	g := newTestGateway(t, fake)

	uri, err := g.GenerateChartImage(context.Background(), "Bitcoin rally")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", uri)
	assert.Equal(t, goopenai.CreateImageResponseFormatB64JSON, fake.lastImage.ResponseFormat)
}

func TestAPIErrorMapsToTransportError(t *testing.T) {
	fake := &fakeCompletionAPI{chatErr: &goopenai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "quota"}}
	g := newTestGateway(t, fake)

	_, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	var te *gateway.TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.RateLimited())
}

func TestPlainErrorMapsToTransportError(t *testing.T) {
	fake := &fakeCompletionAPI{chatErr: errors.New("connection refused")}
	g := newTestGateway(t, fake)

	_, err := g.FetchMarketOverview(context.Background())
	var te *gateway.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.True(t, te.Retryable())
}

func TestMissingCredentialShortCircuits(t *testing.T) {
	t.Setenv(credential.EnvVar, "")
	g := New(credential.NewResolver(""), "")
	g.newClient = func(key string) completionAPI {
		t.Fatal("client must not be constructed without a credential")
		return nil
	}

	_, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	assert.ErrorIs(t, err, credential.ErrMissing)
}

func TestMalformedReplyIsCoercionError(t *testing.T) {
	fake := &fakeCompletionAPI{chatText: "Sorry, I can only answer in prose."}
	g := newTestGateway(t, fake)

	_, err := g.FetchSentiment(context.Background(), models.LangEnglish)
	var ce *gateway.CoercionError
	require.ErrorAs(t, err, &ce)
}
