package listing

import "time"

// ItemRepo is the in-memory authoritative map of tracked items. Mutations
// are mirrored to disk by the implementation; a failed mirror is logged,
// never surfaced.
type ItemRepo interface {
	List() []Item
	Get(id string) (Item, bool)
	Put(it Item)
	Delete(id string)
	// UpdateResult records a successful sync: last seen source price,
	// the price written to the lot, and when.
	UpdateResult(id string, sourcePrice, listingPrice float64, at time.Time)
	Len() int
	Save()
}

type SettingsRepo interface {
	Get() Settings
	Replace(s Settings)
}
