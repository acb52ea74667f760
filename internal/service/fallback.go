package service

import (
	"github.com/cryptopulse/cryptopulse/internal/models"
)

// Policy states what an operation does when the gateway reports a
// transport or coercion failure. It is chosen explicitly per call site
// instead of being an implicit convention: callers branch UI behavior
// on which operations can produce a visible error.
type Policy int

const (
	// ReturnFallback swallows the failure and substitutes the
	// operation's default value.
	ReturnFallback Policy = iota
	// SurfaceError re-raises the failure to the caller.
	SurfaceError
)

// Locale-sensitive fallback literals. A missing credential is never
// masked by these; only transport and coercion failures are.

func noDataSummary(lang models.Language) string {
	if lang == models.LangRussian {
		return "Нет данных"
	}
	return "No data"
}

func connectionErrorText(lang models.Language) string {
	if lang == models.LangRussian {
		return "Ошибка соединения."
	}
	return "Connection error."
}

func walletFallbackSummary(lang models.Language) string {
	if lang == models.LangRussian {
		return "Не удалось получить публичные данные. Возможно, это новый кошелек."
	}
	return "Could not retrieve public data. Might be a fresh wallet."
}

// fallbackSentiment is the neutral default sentiment report.
func fallbackSentiment(lang models.Language) *models.SentimentReport {
	return &models.SentimentReport{
		Score:   50,
		Summary: noDataSummary(lang),
		TopNews: []models.NewsItem{},
	}
}

// fallbackWallet is the synthetic low-confidence record returned when
// an address cannot be analyzed.
func fallbackWallet(address string, lang models.Language) *models.WalletAnalysis {
	return &models.WalletAnalysis{
		Address:       address,
		Network:       "Unknown Network",
		Balance:       "Data Unavailable",
		ActivityLevel: models.ActivityLow,
		RiskScore:     50,
		Tags:          []string{"Unidentified"},
		AISummary:     walletFallbackSummary(lang),
	}
}
