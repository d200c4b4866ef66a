package rates

import "time"

// Source tells where a rate came from, in decreasing order of trust.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	SourceStale     Source = "stale-cache"
	SourceFallback  Source = "fallback"
)

// Rate is units of Currency per 1 USD. Value is always positive.
type Rate struct {
	Currency  string    `json:"currency"`
	Value     float64   `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
	Source    Source    `json:"source"`
}

// Fallback is the hardcoded last line of defense so that pricing never
// blocks on network failure.
func Fallback() map[string]float64 {
	return map[string]float64{
		"UAH": 41.82,
		"RUB": 78.42,
		"KZT": 519.86,
		"EUR": 0.85,
		"USD": 1.0,
	}
}
