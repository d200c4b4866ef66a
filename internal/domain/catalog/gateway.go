package catalog

import "context"

// PriceSource resolves the reference price of a catalog entry in the given
// store currency. A nil error with price 0 means the entry exists but has
// no price (free or unavailable); a non-nil error means the fetch failed
// and may be retried.
type PriceSource interface {
	Price(ctx context.Context, ref Ref, currency string) (float64, error)
}

// NameSource resolves the display name of a catalog entry, best effort.
type NameSource interface {
	Name(ctx context.Context, ref Ref) string
}
