package models

// Language selects the locale the model is asked to answer in.
type Language string

const (
	LangEnglish Language = "en"
	LangRussian Language = "ru"
)

// Valid reports whether l is one of the two supported locales.
func (l Language) Valid() bool {
	return l == LangEnglish || l == LangRussian
}

// Trend is the 24h price direction.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// ActivityLevel is reported by the model, not measured on-chain.
type ActivityLevel string

const (
	ActivityHigh   ActivityLevel = "High"
	ActivityMedium ActivityLevel = "Medium"
	ActivityLow    ActivityLevel = "Low"
)

// RiskLevel is the per-allocation risk bucket.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Tone controls the voice of a generated post.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneHype         Tone = "hype"
	ToneBearish      Tone = "bearish"
	ToneEducational  Tone = "educational"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// MarketQuote is a single asset row on the market overview board.
// Price and change are pre-formatted display strings produced by the
// model ("$64,230", "+2.4%"); no numeric parsing happens on this side.
type MarketQuote struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Change24h string `json:"change24h"`
	Trend     Trend  `json:"trend"`
	MarketCap string `json:"marketCap,omitempty"`
}

// PricePoint is one labelled point of a coin's 7-day history.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// CoinProfile extends MarketQuote with a description and a short
// chronological price history for charting. The 7-point length is a
// prompt-level request, not enforced here.
type CoinProfile struct {
	MarketQuote
	Description string       `json:"description"`
	History     []PricePoint `json:"history"`
}

// NewsItem is a headline attached to a sentiment report. URLs come
// straight from the model and may not resolve.
type NewsItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// SentimentReport is the fear-and-greed snapshot. Score is clamped to
// 0..100 during coercion. TopNews is ordered by relevance.
type SentimentReport struct {
	Score   int        `json:"score"`
	Summary string     `json:"summary"`
	TopNews []NewsItem `json:"topNews"`
}

// GeneratedPost is a channel-ready post. ImageURL, when present, is a
// base64 data URI. Hashtags may or may not carry a leading "#".
type GeneratedPost struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// AllocationItem is one slice of an investment plan. The amount and
// percentage pairing is advisory; they are not cross-validated.
type AllocationItem struct {
	Coin       string    `json:"coin"`
	Amount     float64   `json:"amount"`
	Percentage float64   `json:"percentage"`
	Reason     string    `json:"reason"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	Color      string    `json:"color"`
}

// InvestmentPlan is a budget split into layered allocations. The sum
// of allocation amounts should approximate TotalBudget but the model
// is trusted on that.
type InvestmentPlan struct {
	TotalBudget     float64          `json:"totalBudget"`
	StrategySummary string           `json:"strategySummary"`
	Allocations     []AllocationItem `json:"allocations"`
}

// WalletAnalysis is a best-effort forensic profile of an address.
type WalletAnalysis struct {
	Address       string        `json:"address"`
	Network       string        `json:"network"`
	Balance       string        `json:"balance"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	RiskScore     int           `json:"riskScore"`
	Tags          []string      `json:"tags"`
	AISummary     string        `json:"aiSummary"`
}

// ChatMessage is one turn of the advisor conversation. The log is
// owned by the caller and passed by value into each chat call; array
// order is conversation order.
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
}

// MarketSnapshot bundles the two reads performed at dashboard startup.
type MarketSnapshot struct {
	Overview  []MarketQuote   `json:"overview"`
	Sentiment SentimentReport `json:"sentiment"`
}
