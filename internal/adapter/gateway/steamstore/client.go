// Package steamstore resolves reference prices and display names from the
// Steam store API. Requests are paced to respect the store's rate limits
// and results are TTL-cached; concurrent lookups for the same entry
// collapse into one request.
package steamstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tontt4/steamsync/internal/adapter/gateway/httpx"
	"github.com/tontt4/steamsync/internal/domain/catalog"
	"github.com/tontt4/steamsync/internal/pkg/ttlcache"
)

// ErrInvalidRef is returned for a ref that never passes validation; no
// request is made for it.
var ErrInvalidRef = fmt.Errorf("steamstore: invalid catalog ref")

// countryCode maps a store currency to the cc query parameter.
var countryCode = map[string]string{
	"UAH": "ua", "RUB": "ru", "USD": "us", "EUR": "de", "KZT": "kz",
}

type Client struct {
	c      *httpx.Client
	prices *ttlcache.Cache[string, float64]
	names  *ttlcache.Cache[string, string]
	delay  time.Duration
	sf     singleflight.Group
	log    *slog.Logger
}

type Config struct {
	BaseURL  string
	CacheTTL time.Duration
	Delay    time.Duration // pacing before each outbound request
	Logger   *slog.Logger
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://store.steampowered.com"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		c:      httpx.NewWith(cfg.BaseURL, httpx.DefaultOptionsFromEnv()),
		prices: ttlcache.New[string, float64](cfg.CacheTTL),
		names:  ttlcache.New[string, string](cfg.CacheTTL),
		delay:  cfg.Delay,
		log:    cfg.Logger,
	}
}

// Price returns the current store price in major units of the requested
// currency. 0 with a nil error means the entry exists but carries no price
// (free or not sold in that region); that result is cached. A non-nil
// error means the fetch failed and nothing was cached, so a later retry
// is not poisoned.
func (cl *Client) Price(ctx context.Context, ref catalog.Ref, currency string) (float64, error) {
	if _, ok := catalog.ParseRef(ref.String()); !ok {
		return 0, ErrInvalidRef
	}

	key := "price_" + ref.String() + "_" + currency
	if p, ok := cl.prices.Get(key); ok {
		return p, nil
	}

	v, err, _ := cl.sf.Do(key, func() (any, error) {
		if p, ok := cl.prices.Get(key); ok {
			return p, nil
		}
		p, err := cl.fetchPrice(ctx, ref, currency)
		if err != nil {
			return 0.0, err
		}
		cl.prices.Set(key, p)
		return p, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (cl *Client) fetchPrice(ctx context.Context, ref catalog.Ref, currency string) (float64, error) {
	if err := cl.pace(ctx); err != nil {
		return 0, err
	}

	cc, ok := countryCode[currency]
	if !ok {
		cc = "ua"
	}

	var path string
	params := map[string]string{"cc": cc}
	if ref.Bundle {
		path = "/api/packagedetails"
		params["packageids"] = ref.ID
	} else {
		path = "/api/appdetails"
		params["appids"] = ref.ID
		params["filters"] = "price_overview"
	}

	ent, err := cl.fetchEntry(ctx, path, params, ref.ID)
	if err != nil {
		return 0, err
	}
	if !ent.Success {
		// entry is known to the store but has nothing sellable
		return 0, nil
	}

	var data struct {
		Price         *priceBlock `json:"price"`
		PriceOverview *priceBlock `json:"price_overview"`
	}
	if len(ent.Data) > 0 {
		// "data" is [] for entries without details; ignore parse failure
		// of that shape and treat it as priceless
		_ = json.Unmarshal(ent.Data, &data)
	}
	block := data.PriceOverview
	if ref.Bundle {
		block = data.Price
	}
	if block == nil || block.Final <= 0 {
		return 0, nil
	}
	return float64(block.Final) / 100.0, nil
}

// Name resolves the display name, best effort: a failed lookup yields a
// "Steam <id>" placeholder and is not cached.
func (cl *Client) Name(ctx context.Context, ref catalog.Ref) string {
	key := "name_" + ref.String()
	if n, ok := cl.names.Get(key); ok {
		return n
	}

	v, err, _ := cl.sf.Do(key, func() (any, error) {
		if n, ok := cl.names.Get(key); ok {
			return n, nil
		}
		n, err := cl.fetchName(ctx, ref)
		if err != nil {
			return "", err
		}
		cl.names.Set(key, n)
		return n, nil
	})
	if err != nil || v.(string) == "" {
		if err != nil {
			cl.log.Debug("steamstore: name lookup failed", "ref", ref.String(), "err", err)
		}
		return "Steam " + ref.String()
	}
	return v.(string)
}

func (cl *Client) fetchName(ctx context.Context, ref catalog.Ref) (string, error) {
	if err := cl.pace(ctx); err != nil {
		return "", err
	}

	path := "/api/appdetails"
	params := map[string]string{"filters": "basic", "appids": ref.ID}
	if ref.Bundle {
		path = "/api/packagedetails"
		params = map[string]string{"filters": "basic", "packageids": ref.ID}
	}

	ent, err := cl.fetchEntry(ctx, path, params, ref.ID)
	if err != nil {
		return "", err
	}
	if !ent.Success || len(ent.Data) == 0 {
		return "", nil
	}
	var data struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(ent.Data, &data)
	return data.Name, nil
}

type storeEntry struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type priceBlock struct {
	Final int64 `json:"final"` // minor units
}

func (cl *Client) fetchEntry(ctx context.Context, path string, params map[string]string, id string) (storeEntry, error) {
	var doc map[string]storeEntry
	if err := cl.c.GetJSON(ctx, path, params, &doc); err != nil {
		return storeEntry{}, err
	}
	ent, ok := doc[id]
	if !ok {
		return storeEntry{}, fmt.Errorf("steamstore: id %s missing from response", id)
	}
	return ent, nil
}

func (cl *Client) pace(ctx context.Context) error {
	if cl.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cl.delay):
		return nil
	}
}
