package gateway

import (
	"encoding/json"
	"strings"

	"github.com/cryptopulse/cryptopulse/internal/models"
)

// Normalize strips the fence markers the model sometimes wraps JSON in
// and trims surrounding whitespace. It is idempotent: once the fences
// are gone a second pass changes nothing.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// Coerce normalizes raw model output and parses it into T. Failures
// come back as a CoercionError; nothing is thrown past this boundary.
func Coerce[T any](op, raw string) (T, error) {
	var v T
	cleaned := Normalize(raw)
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return v, &CoercionError{Op: op, Raw: cleaned, Err: err}
	}
	return v, nil
}

// ClampScore bounds a model-reported integer score to 0..100. The
// prompt requests the range but the model is not a structural
// guarantee, so out-of-range values are clamped rather than trusted.
func ClampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// ClampPercent bounds an allocation percentage to 0..100.
func ClampPercent(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

// FixTrend derives the trend from the sign of the change string when
// the model emitted something outside the enum.
func FixTrend(q *models.MarketQuote) {
	switch q.Trend {
	case models.TrendUp, models.TrendDown, models.TrendNeutral:
		return
	}
	switch {
	case strings.HasPrefix(q.Change24h, "-"):
		q.Trend = models.TrendDown
	case strings.HasPrefix(q.Change24h, "+"):
		q.Trend = models.TrendUp
	default:
		q.Trend = models.TrendNeutral
	}
}

// FixActivity maps unexpected activity values to Low, the conservative
// bucket.
func FixActivity(w *models.WalletAnalysis) {
	switch w.ActivityLevel {
	case models.ActivityHigh, models.ActivityMedium, models.ActivityLow:
	default:
		w.ActivityLevel = models.ActivityLow
	}
}
