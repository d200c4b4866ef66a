// Package pricing turns a reference price into the final listing price:
// currency conversion through USD, layered markups, clamp, round.
package pricing

import (
	"context"
	"math"

	"github.com/tontt4/steamsync/internal/domain/listing"
)

// RateFunc returns units of currency per 1 USD, always positive per the
// rate provider's contract.
type RateFunc func(ctx context.Context, currency string) float64

// Compute converts sourcePrice from sourceCurrency into the account
// currency and applies the markup chain. Rules:
//   - sourcePrice <= 0 (the "no price" sentinel included) yields
//     settings.MinPrice: an unpriceable item keeps a visible floor price
//     instead of a stale one;
//   - a non-positive rate, which the provider's contract rules out but is
//     guarded anyway, yields 0 as an explicit computation-failure sentinel;
//   - markups apply in fixed order: currency markup percent, then profit
//     margin percent, then the absolute fixed markup;
//   - the result is clamped to [MinPrice, MaxPrice] and then rounded
//     half-up to 2 decimals. Rounding last keeps the materiality
//     comparison in the synchronizer stable.
//
// The function is deterministic for fixed rates and never panics; an
// unexpected panic inside the rate callback degrades to MinPrice.
func Compute(ctx context.Context, s listing.Settings, sourcePrice float64, sourceCurrency string, rate RateFunc) (out float64) {
	defer func() {
		if recover() != nil {
			out = s.MinPrice
		}
	}()

	if sourcePrice <= 0 {
		return s.MinPrice
	}

	base := sourcePrice
	if sourceCurrency != s.AccountCurrency {
		srcRate := rate(ctx, sourceCurrency)
		if srcRate <= 0 {
			return 0
		}
		if s.AccountCurrency == "USD" {
			base = sourcePrice / srcRate
		} else {
			accRate := rate(ctx, s.AccountCurrency)
			if accRate <= 0 {
				return 0
			}
			base = (sourcePrice / srcRate) * accRate
		}
	}

	withCurrencyMarkup := base * (1 + s.CurrencyMarkup/100)
	final := withCurrencyMarkup*(1+s.ProfitMargin/100) + s.FixedMarkup

	final = Clamp(final, s.MinPrice, s.MaxPrice)
	return Round2(final)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds half-up to currency minor-unit precision.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
