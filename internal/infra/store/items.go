package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/tontt4/steamsync/internal/domain/listing"
)

// Items is the tracked-item store: an in-memory map mirrored to one JSON
// file on every mutation. The lock covers map access only, never I/O on
// remote services.
type Items struct {
	mu   sync.RWMutex
	wmu  sync.Mutex // serializes mirrors so an older snapshot never lands last
	path string
	log  *slog.Logger
	m    map[string]listing.Item
}

// itemRecord is the persisted shape, including legacy aliases from older
// deployments so old files load without manual migration.
type itemRecord struct {
	SteamID         string      `json:"steam_id,omitempty"`
	LegacySteamApp  json.Number `json:"steam_app_id,omitempty"`
	SourceCurrency  string      `json:"steam_currency,omitempty"`
	MinPrice        *float64    `json:"min_price,omitempty"`
	LegacyMin       *float64    `json:"min,omitempty"`
	MaxPrice        *float64    `json:"max_price,omitempty"`
	LegacyMax       *float64    `json:"max,omitempty"`
	Enabled         *bool       `json:"enabled,omitempty"`
	LegacyOn        *bool       `json:"on,omitempty"`
	LastSourcePrice float64     `json:"last_steam_price,omitempty"`
	LastPrice       float64     `json:"last_price,omitempty"`
	LastUpdate      int64       `json:"last_update,omitempty"`
}

// OpenItems loads the store from path. Missing or corrupt file means an
// empty store with a warning, never an error: the file is a mirror, not
// the source of truth. defaults fill fields older records lack.
func OpenItems(path string, defaults listing.Settings, log *slog.Logger) *Items {
	if log == nil {
		log = slog.Default()
	}
	s := &Items{path: path, log: log, m: make(map[string]listing.Item)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("store: cannot read items file, starting empty", "path", path, "err", err)
		}
		return s
	}

	var doc map[string]itemRecord
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn("store: corrupt items file, starting empty", "path", path, "err", err)
		return s
	}

	for id, rec := range doc {
		if id == "" || id == "0" {
			continue
		}
		s.m[id] = normalize(id, rec, defaults)
	}
	log.Info("store: items loaded", "path", path, "count", len(s.m))
	return s
}

func normalize(id string, rec itemRecord, defaults listing.Settings) listing.Item {
	it := listing.Item{
		ID:               id,
		SteamID:          rec.SteamID,
		SourceCurrency:   rec.SourceCurrency,
		MinPrice:         defaults.MinPrice,
		MaxPrice:         defaults.MaxPrice,
		Enabled:          true,
		LastSourcePrice:  rec.LastSourcePrice,
		LastListingPrice: rec.LastPrice,
		LastUpdateAt:     rec.LastUpdate,
	}
	if it.SteamID == "" && rec.LegacySteamApp != "" {
		it.SteamID = rec.LegacySteamApp.String()
	}
	if it.SourceCurrency == "" {
		it.SourceCurrency = "UAH"
	}
	switch {
	case rec.MinPrice != nil:
		it.MinPrice = *rec.MinPrice
	case rec.LegacyMin != nil:
		it.MinPrice = *rec.LegacyMin
	}
	switch {
	case rec.MaxPrice != nil:
		it.MaxPrice = *rec.MaxPrice
	case rec.LegacyMax != nil:
		it.MaxPrice = *rec.LegacyMax
	}
	switch {
	case rec.Enabled != nil:
		it.Enabled = *rec.Enabled
	case rec.LegacyOn != nil:
		it.Enabled = *rec.LegacyOn
	}
	return it
}

func (s *Items) List() []listing.Item {
	s.mu.RLock()
	out := make([]listing.Item, 0, len(s.m))
	for _, it := range s.m {
		out = append(out, it)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Items) Get(id string) (listing.Item, bool) {
	s.mu.RLock()
	it, ok := s.m[id]
	s.mu.RUnlock()
	return it, ok
}

func (s *Items) Put(it listing.Item) {
	s.mu.Lock()
	s.m[it.ID] = it
	s.mu.Unlock()
	s.Save()
}

func (s *Items) Delete(id string) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
	s.Save()
}

func (s *Items) UpdateResult(id string, sourcePrice, listingPrice float64, at time.Time) {
	s.mu.Lock()
	if it, ok := s.m[id]; ok {
		it.LastSourcePrice = sourcePrice
		it.LastListingPrice = listingPrice
		it.LastUpdateAt = at.Unix()
		s.m[id] = it
	}
	s.mu.Unlock()
	s.Save()
}

func (s *Items) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Save mirrors the map to disk. Failure is a warning, not an error: the
// in-memory state stays authoritative for the running process. The write
// lock is taken before the snapshot, so concurrent saves land on disk in
// snapshot order.
func (s *Items) Save() {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.RLock()
	doc := make(map[string]itemRecord, len(s.m))
	for id, it := range s.m {
		min, max, en := it.MinPrice, it.MaxPrice, it.Enabled
		doc[id] = itemRecord{
			SteamID:         it.SteamID,
			SourceCurrency:  it.SourceCurrency,
			MinPrice:        &min,
			MaxPrice:        &max,
			Enabled:         &en,
			LastSourcePrice: it.LastSourcePrice,
			LastPrice:       it.LastListingPrice,
			LastUpdate:      it.LastUpdateAt,
		}
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Warn("store: cannot marshal items", "err", err)
		return
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		s.log.Warn("store: items persist failed, memory stays authoritative", "path", s.path, "err", err)
	}
}
