// Package market fetches token market data from DexScreener and caches
// it in redis. The data feeds the analyst prompt context and the token
// symbol shown in balance errors and pending orders.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/core/redis"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

const cacheKeyPrefix = "wave:token_market:"

type Client struct {
	host       string
	cacheTTL   time.Duration
	httpClient *http.Client
}

func NewClient(host string, cacheTTL time.Duration) *Client {
	if host == "" {
		host = "https://api.dexscreener.com"
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &Client{
		host:       host,
		cacheTTL:   cacheTTL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type txnCount struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type pairData struct {
	DexID     string `json:"dexId"`
	URL       string `json:"url"`
	PairAddr  string `json:"pairAddress"`
	BaseToken struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Symbol string `json:"symbol"`
	} `json:"quoteToken"`
	PriceUSD    string              `json:"priceUsd"`
	PriceNative string              `json:"priceNative"`
	Txns        map[string]txnCount `json:"txns"`
	Volume      map[string]float64  `json:"volume"`
	PriceChange map[string]float64  `json:"priceChange"`
	Liquidity   struct {
		USD   float64 `json:"usd"`
		Base  float64 `json:"base"`
		Quote float64 `json:"quote"`
	} `json:"liquidity"`
	FDV           float64 `json:"fdv"`
	MarketCap     float64 `json:"marketCap"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
}

// TokenMarket is the main pair's snapshot for one token, picked by
// highest 24h volume.
type TokenMarket struct {
	TokenAddress string   `json:"token_address"`
	Pair         pairData `json:"pair"`
}

func (m *TokenMarket) Symbol() string {
	return m.Pair.BaseToken.Symbol
}

// GetTokenMarket returns the cached snapshot, fetching from DexScreener
// on a miss.
func (c *Client) GetTokenMarket(ctx context.Context, tokenAddress string) (*TokenMarket, error) {
	key := cacheKeyPrefix + tokenAddress

	if redis.Enabled() {
		if cached, err := redis.Get(ctx, key); err == nil && cached != "" {
			var out TokenMarket
			if err := json.Unmarshal([]byte(cached), &out); err == nil {
				return &out, nil
			}
		}
	}

	out, err := c.fetch(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}

	if redis.Enabled() {
		if bydata, err := json.Marshal(out); err == nil {
			if err := redis.Set(ctx, key, string(bydata), c.cacheTTL); err != nil {
				logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Token": tokenAddress}).Warn("cache token market failed")
			}
		}
	}

	return out, nil
}

func (c *Client) fetch(ctx context.Context, tokenAddress string) (*TokenMarket, error) {
	reqURL := c.host + "/latest/dex/tokens/" + tokenAddress
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch market data: %s", resp.Status)
	}

	var out struct {
		Pairs []pairData `json:"pairs"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode market data: %w", err)
	}
	if len(out.Pairs) == 0 {
		return nil, fmt.Errorf("no trading pairs found")
	}

	pairs := out.Pairs
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Volume["h24"] > pairs[j].Volume["h24"]
	})

	return &TokenMarket{TokenAddress: tokenAddress, Pair: pairs[0]}, nil
}

// Context renders the snapshot as the market-data block injected into the
// analyst system prompt.
func (m *TokenMarket) Context() string {
	p := m.Pair
	var b strings.Builder

	fmt.Fprintf(&b, "Token:\n- Name: %s\n- Symbol: %s\n- Contract: %s\n\n", p.BaseToken.Name, p.BaseToken.Symbol, m.TokenAddress)

	fmt.Fprintf(&b, "Market data (DEX: %s):\n", strings.ToUpper(p.DexID))
	fmt.Fprintf(&b, "- Price: $%s / %s SOL\n", p.PriceUSD, p.PriceNative)
	fmt.Fprintf(&b, "- Transactions: 1h buys %d / sells %d, 6h buys %d / sells %d, 24h buys %d / sells %d\n",
		p.Txns["h1"].Buys, p.Txns["h1"].Sells, p.Txns["h6"].Buys, p.Txns["h6"].Sells, p.Txns["h24"].Buys, p.Txns["h24"].Sells)
	fmt.Fprintf(&b, "- Price change: 1h %g%%, 6h %g%%, 24h %g%%\n", p.PriceChange["h1"], p.PriceChange["h6"], p.PriceChange["h24"])
	fmt.Fprintf(&b, "- Volume: 1h $%g, 6h $%g, 24h $%g\n", p.Volume["h1"], p.Volume["h6"], p.Volume["h24"])
	fmt.Fprintf(&b, "- Liquidity: $%g (%g tokens / %g SOL)\n", p.Liquidity.USD, p.Liquidity.Base, p.Liquidity.Quote)
	fmt.Fprintf(&b, "- FDV: $%g\n- Market cap: $%g\n\n", p.FDV, p.MarketCap)

	fmt.Fprintf(&b, "Pair:\n- %s / %s\n- Pair address: %s\n- Created at: %d\n- URL: %s\n",
		p.BaseToken.Symbol, p.QuoteToken.Symbol, p.PairAddr, p.PairCreatedAt, p.URL)

	return b.String()
}
