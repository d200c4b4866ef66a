// Package syncer reconciles one tracked item against its remote lot:
// fetch the reference price, compute the target price, write it to the
// lot only when the difference is material.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tontt4/steamsync/internal/domain/catalog"
	"github.com/tontt4/steamsync/internal/domain/listing"
	"github.com/tontt4/steamsync/internal/usecase/pricing"
)

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeUpdated
)

var (
	// ErrNoPrice: no positive reference price after the retry budget.
	// Recoverable, the item is left untouched.
	ErrNoPrice = errors.New("syncer: no reference price")
	// ErrListingGone: the remote lot no longer exists. The item has been
	// pruned from the store by the time this is returned.
	ErrListingGone = errors.New("syncer: remote lot gone")
	// ErrRemoteUnavailable: account API failed, item untouched.
	ErrRemoteUnavailable = errors.New("syncer: account api unavailable")
)

// Rates is the one method the syncer needs from the rate provider.
type Rates interface {
	Rate(ctx context.Context, currency string) float64
}

type Syncer struct {
	Items    listing.ItemRepo
	Settings listing.SettingsRepo
	Catalog  catalog.PriceSource
	Gateway  listing.Gateway
	Rates    Rates

	Retries    int           // reference-price attempts, default 3
	RetryDelay time.Duration // between attempts
	Epsilon    float64       // materiality threshold, default 0.01
	Logger     *slog.Logger

	now func() time.Time
}

func (s *Syncer) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Syncer) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Syncer) retries() int {
	if s.Retries > 0 {
		return s.Retries
	}
	return 3
}

func (s *Syncer) epsilon() float64 {
	if s.Epsilon > 0 {
		return s.Epsilon
	}
	return 0.01
}

// Sync runs one reconciliation pass for the item. Re-running it with
// unchanged upstream data issues no second remote write: a sub-threshold
// difference is reported as OutcomeUnchanged without touching the lot.
func (s *Syncer) Sync(ctx context.Context, it listing.Item) (Outcome, error) {
	if err := it.Validate(); err != nil {
		return OutcomeUnchanged, fmt.Errorf("%w: %v", ErrNoPrice, err)
	}
	ref, ok := catalog.ParseRef(it.SteamID)
	if !ok {
		return OutcomeUnchanged, fmt.Errorf("%w: bad steam id %q", ErrNoPrice, it.SteamID)
	}

	srcPrice, err := s.referencePrice(ctx, ref, it.SourceCurrency)
	if err != nil {
		return OutcomeUnchanged, err
	}

	settings := s.Settings.Get()
	newPrice := pricing.Compute(ctx, settings, srcPrice, it.SourceCurrency, s.Rates.Rate)
	if newPrice <= 0 {
		return OutcomeUnchanged, fmt.Errorf("%w: computation failed for lot %s", ErrNoPrice, it.ID)
	}
	// the item's own bounds are the final authority
	newPrice = pricing.Round2(pricing.Clamp(newPrice, it.MinPrice, it.MaxPrice))

	fields, err := s.Gateway.GetFields(ctx, it.ID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			s.prune(it.ID)
			return OutcomeUnchanged, fmt.Errorf("%w: %v", ErrListingGone, err)
		}
		return OutcomeUnchanged, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	diff := newPrice - fields.Price
	if diff < 0 {
		diff = -diff
	}
	if diff < s.epsilon() {
		s.log().Debug("syncer: price unchanged", "lot", it.ID, "price", fields.Price)
		return OutcomeUnchanged, nil
	}

	fields.Price = newPrice
	if err := s.Gateway.SaveFields(ctx, fields); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			s.prune(it.ID)
			return OutcomeUnchanged, fmt.Errorf("%w: %v", ErrListingGone, err)
		}
		return OutcomeUnchanged, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	s.Items.UpdateResult(it.ID, srcPrice, newPrice, s.clock())
	s.log().Info("syncer: lot updated",
		"lot", it.ID, "source", srcPrice, "currency", it.SourceCurrency, "price", newPrice)
	return OutcomeUpdated, nil
}

// referencePrice retries the catalog fetch a few times and stops at the
// first positive price. A clean "free item" answer is not retried.
func (s *Syncer) referencePrice(ctx context.Context, ref catalog.Ref, currency string) (float64, error) {
	var lastErr error
	for attempt := 0; attempt < s.retries(); attempt++ {
		if attempt > 0 && s.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return 0, fmt.Errorf("%w: %v", ErrNoPrice, ctx.Err())
			case <-time.After(s.RetryDelay):
			}
		}
		p, err := s.Catalog.Price(ctx, ref, currency)
		if err != nil {
			lastErr = err
			continue
		}
		if p > 0 {
			return p, nil
		}
		// exists but free/unavailable: retrying will not change that
		return 0, fmt.Errorf("%w: %s has no store price", ErrNoPrice, ref.String())
	}
	return 0, fmt.Errorf("%w: %s: %v", ErrNoPrice, ref.String(), lastErr)
}

// prune drops the local record; Delete mirrors the store to disk itself.
func (s *Syncer) prune(id string) {
	s.Items.Delete(id)
	s.log().Warn("syncer: lot gone remotely, pruned", "lot", id)
}
