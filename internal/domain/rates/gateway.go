package rates

import "context"

// PrimarySource returns rates for all currencies in one call.
type PrimarySource interface {
	Name() string
	FetchAll(ctx context.Context) (map[string]float64, error)
}

// SecondarySource covers a single currency, usually a national bank feed.
type SecondarySource interface {
	Name() string
	Currency() string
	Fetch(ctx context.Context) (float64, error)
}
