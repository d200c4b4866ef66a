package listing

// Item is a marketplace lot under automated price management. ID is the
// remote lot id; SteamID points at the catalog entry the reference price
// comes from ("730" for apps, "sub_12345" for packages).
type Item struct {
	ID               string  `json:"id"`
	SteamID          string  `json:"steam_id"`
	SourceCurrency   string  `json:"steam_currency"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	Enabled          bool    `json:"enabled"`
	LastSourcePrice  float64 `json:"last_steam_price"`
	LastListingPrice float64 `json:"last_price"`
	LastUpdateAt     int64   `json:"last_update"` // unix seconds, 0 = never
}

// Fields is the mutable part of a remote lot as the account API exposes it.
type Fields struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
	Title string  `json:"title,omitempty"`
}

// Settings apply to every tracked item unless the item's own min/max
// narrows the clamp bounds.
type Settings struct {
	AccountCurrency string  `json:"currency"`
	UpdateInterval  int     `json:"update_interval"` // seconds
	CurrencyMarkup  float64 `json:"currency_markup"` // percent on the exchange rate
	ProfitMargin    float64 `json:"profit_margin"`   // percent
	FixedMarkup     float64 `json:"fixed_markup"`    // absolute, in account currency
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
}

func DefaultSettings() Settings {
	return Settings{
		AccountCurrency: "USD",
		UpdateInterval:  21600, // 6h
		CurrencyMarkup:  3.0,
		ProfitMargin:    5.0,
		FixedMarkup:     0.5,
		MinPrice:        1.0,
		MaxPrice:        5000.0,
	}
}

func (s Settings) Validate() error {
	if s.AccountCurrency == "" {
		return ErrInvalid("currency is empty")
	}
	if s.UpdateInterval <= 0 {
		return ErrInvalid("update_interval must be positive")
	}
	if s.MinPrice <= 0 || s.MaxPrice < s.MinPrice {
		return ErrInvalid("price bounds: need 0 < min_price <= max_price")
	}
	if s.CurrencyMarkup < 0 || s.ProfitMargin < 0 || s.FixedMarkup < 0 {
		return ErrInvalid("markups must be non-negative")
	}
	return nil
}

// Validate rejects items that would fail at fetch/update time anyway.
func (it Item) Validate() error {
	if !digitsOnly(it.ID) {
		return ErrInvalid("lot id must be digits only")
	}
	if it.SourceCurrency == "" {
		return ErrInvalid("steam_currency is empty")
	}
	if it.MinPrice <= 0 || it.MaxPrice < it.MinPrice {
		return ErrInvalid("price bounds: need 0 < min_price <= max_price")
	}
	return nil
}

type ErrInvalid string

func (e ErrInvalid) Error() string { return "listing: " + string(e) }

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
