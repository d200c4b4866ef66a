// Package ratesuc resolves exchange rates with an availability-over-accuracy
// policy: cache, then primary source, then a currency-specific secondary
// source, then whatever stale value the cache still holds, then a static
// table. A lookup never fails and never returns a non-positive rate, so a
// pricing decision can never block on network failure.
package ratesuc

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tontt4/steamsync/internal/domain/rates"
	"github.com/tontt4/steamsync/internal/pkg/ttlcache"
)

type Provider struct {
	Primary   rates.PrimarySource
	Secondary map[string]rates.SecondarySource // keyed by currency code
	Cache     *ttlcache.Cache[string, rates.Rate]
	Fallback  map[string]float64
	Base      string // "USD"
	Logger    *slog.Logger

	sf singleflight.Group
}

func New(primary rates.PrimarySource, secondary []rates.SecondarySource, ttl time.Duration, log *slog.Logger) *Provider {
	sec := make(map[string]rates.SecondarySource, len(secondary))
	for _, s := range secondary {
		sec[s.Currency()] = s
	}
	return &Provider{
		Primary:   primary,
		Secondary: sec,
		Cache:     ttlcache.New[string, rates.Rate](ttl),
		Fallback:  rates.Fallback(),
		Base:      "USD",
		Logger:    log,
	}
}

func (p *Provider) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Rate returns units of currency per 1 USD. Always positive.
func (p *Provider) Rate(ctx context.Context, currency string) float64 {
	return p.Detail(ctx, currency).Value
}

// Detail is Rate plus provenance, for the stats surface.
func (p *Provider) Detail(ctx context.Context, currency string) rates.Rate {
	if currency == p.Base {
		return rates.Rate{Currency: currency, Value: 1.0, Source: rates.SourcePrimary}
	}

	if r, ok := p.fresh(currency); ok {
		return r
	}

	v, _, _ := p.sf.Do(currency, func() (any, error) {
		if r, ok := p.fresh(currency); ok {
			return r, nil
		}
		return p.resolve(ctx, currency), nil
	})
	return v.(rates.Rate)
}

// fresh reads the cache without purging: an expired rate must survive so
// the stale-is-better-than-wrong step can still serve it.
func (p *Provider) fresh(currency string) (rates.Rate, bool) {
	r, age, ok := p.Cache.GetStale(currency)
	if !ok || age >= p.Cache.TTL() || r.Value <= 0 {
		return rates.Rate{}, false
	}
	return r, true
}

func (p *Provider) resolve(ctx context.Context, currency string) rates.Rate {
	if all, err := p.Primary.FetchAll(ctx); err != nil {
		p.log().Warn("rates: primary source failed", "source", p.Primary.Name(), "err", err)
	} else {
		now := time.Now()
		var hit rates.Rate
		for cur, v := range all {
			r := rates.Rate{Currency: cur, Value: v, FetchedAt: now, Source: rates.SourcePrimary}
			p.Cache.Set(cur, r)
			if cur == currency {
				hit = r
			}
		}
		if hit.Value > 0 {
			return hit
		}
		p.log().Warn("rates: currency missing from primary document", "currency", currency)
	}

	if sec, ok := p.Secondary[currency]; ok {
		if v, err := sec.Fetch(ctx); err != nil {
			p.log().Warn("rates: secondary source failed", "source", sec.Name(), "currency", currency, "err", err)
		} else if v > 0 {
			r := rates.Rate{Currency: currency, Value: v, FetchedAt: time.Now(), Source: rates.SourceSecondary}
			p.Cache.Set(currency, r)
			return r
		}
	}

	if r, age, ok := p.Cache.GetStale(currency); ok && r.Value > 0 {
		p.log().Warn("rates: serving stale rate", "currency", currency, "age", age.Truncate(time.Second))
		r.Source = rates.SourceStale
		return r
	}

	v, known := p.Fallback[currency]
	if !known || v <= 0 {
		v = 1.0
	}
	p.log().Warn("rates: using fallback rate", "currency", currency, "rate", v)
	return rates.Rate{Currency: currency, Value: v, Source: rates.SourceFallback}
}

// Snapshot reports every cached rate without touching the network, stale
// entries included.
func (p *Provider) Snapshot(currencies []string) []rates.Rate {
	out := make([]rates.Rate, 0, len(currencies))
	for _, cur := range currencies {
		if r, age, ok := p.Cache.GetStale(cur); ok {
			if age >= p.Cache.TTL() {
				r.Source = rates.SourceStale
			}
			out = append(out, r)
		}
	}
	return out
}
