// Package gemini implements the gateway.Client interface against the
// Gemini generateContent REST API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/cryptopulse/cryptopulse/internal/credential"
	"github.com/cryptopulse/cryptopulse/internal/gateway"
	"github.com/cryptopulse/cryptopulse/internal/gateway/prompts"
	"github.com/cryptopulse/cryptopulse/internal/utils/request"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"

	// Per-call ceiling. All operations are user-interactive and must
	// not hang indefinitely.
	defaultTimeout = 30 * time.Second

	defaultMaxRetries = 2
	defaultRetryWait  = 500 * time.Millisecond
)

// Config holds the knobs for the Gemini backend.
type Config struct {
	BaseURL    string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// Gateway talks to the Gemini generateContent endpoint.
type Gateway struct {
	resolver *credential.Resolver
	http     *resty.Client
	cfg      Config
	log      *logrus.Entry
}

// New creates a Gemini gateway. Zero-value config fields fall back to
// defaults.
func New(resolver *credential.Resolver, cfg Config, log *logrus.Logger) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = defaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaultRetryWait
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	client := request.New(cfg.Timeout).
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(8 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			// Retry transient failures and throttling only. All
			// operations are read-only queries, so retries are safe.
			// Authorization rejections are final.
			code := r.StatusCode()
			return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
		})

	return &Gateway{
		resolver: resolver,
		http:     client,
		cfg:      cfg,
		log:      log.WithField("component", "gemini"),
	}
}

// Wire types for the generateContent API. Only the subset this
// application touches is modelled.

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *prompts.Schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// invoke issues exactly one logical generateContent call (transport
// retries excepted). The credential is resolved per call; a missing
// credential short-circuits before any network I/O.
func (g *Gateway) invoke(ctx context.Context, op, model string, req generateRequest) (*generateResponse, error) {
	key, err := g.resolver.Resolve()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", key).
		SetBody(req).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
	if err != nil {
		return nil, &gateway.TransportError{Op: op, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		msg := upstreamMessage(resp.Body())
		g.log.WithFields(logrus.Fields{
			"op":     op,
			"status": resp.StatusCode(),
		}).Warn("generation request rejected")
		return nil, &gateway.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("upstream: %s", msg),
		}
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &gateway.CoercionError{Op: op, Raw: string(resp.Body()), Err: err}
	}
	if out.Error != nil {
		return nil, &gateway.TransportError{
			Op:         op,
			StatusCode: out.Error.Code,
			Err:        fmt.Errorf("upstream: %s", out.Error.Message),
		}
	}
	return &out, nil
}

// invokeText runs a text-model call for a rendered prompt spec and
// returns the response text. Empty text is a valid result; downstream
// treats it as a coercion failure where a shape was expected.
func (g *Gateway) invokeText(ctx context.Context, op string, spec prompts.Spec) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: spec.Text}}}},
	}
	if spec.System != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: spec.System}}}
	}
	if spec.UseSearch {
		req.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	if spec.Schema != nil {
		req.GenerationConfig = &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   spec.Schema,
		}
	}

	resp, err := g.invoke(ctx, op, g.cfg.TextModel, req)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range resp.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// firstInlineImage scans response parts in order and returns the first
// inline image payload as a displayable data URI, or "" if none.
func firstInlineImage(resp *generateResponse) string {
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return fmt.Sprintf("data:%s;base64,%s", p.InlineData.MIMEType, p.InlineData.Data)
			}
		}
	}
	return ""
}

func upstreamMessage(body []byte) string {
	var e struct {
		Error apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
