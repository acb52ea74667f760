// Package market supplies live ticker data used to ground generated
// posts, so the model writes from real numbers instead of search
// results.
package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2"
)

// basket maps the overview assets to their Binance USDT pairs.
var basket = []struct {
	Name   string
	Symbol string
}{
	{"Bitcoin (BTC)", "BTCUSDT"},
	{"Ethereum (ETH)", "ETHUSDT"},
	{"Solana (SOL)", "SOLUSDT"},
	{"Binance Coin (BNB)", "BNBUSDT"},
	{"Ripple (XRP)", "XRPUSDT"},
}

// BinanceProvider reads 24h ticker stats from Binance. Public market
// endpoints need no API key.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a provider. Keys may be empty for public
// data.
func NewBinanceProvider(apiKey, secretKey string) *BinanceProvider {
	return &BinanceProvider{client: binance.NewClient(apiKey, secretKey)}
}

// MarketContext renders the basket's current prices and 24h changes
// into the context block consumed by the post prompt.
func (p *BinanceProvider) MarketContext(ctx context.Context) (string, error) {
	bySymbol := make(map[string]*binance.PriceChangeStats, len(basket))
	for _, asset := range basket {
		stats, err := p.client.NewListPriceChangeStatsService().Symbol(asset.Symbol).Do(ctx)
		if err != nil {
			return "", fmt.Errorf("market: fetch ticker stats for %s: %w", asset.Symbol, err)
		}
		if len(stats) > 0 {
			bySymbol[asset.Symbol] = stats[0]
		}
	}

	return renderContext(bySymbol), nil
}

// renderContext formats the collected stats into the prompt block.
func renderContext(bySymbol map[string]*binance.PriceChangeStats) string {
	var b strings.Builder
	b.WriteString("Live exchange data (Binance, last 24h):\n")
	for _, asset := range basket {
		s, ok := bySymbol[asset.Symbol]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: last price $%s, 24h change %s%%, 24h volume %s\n",
			asset.Name, s.LastPrice, s.PriceChangePercent, s.Volume)
	}
	return b.String()
}
