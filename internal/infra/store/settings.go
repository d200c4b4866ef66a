package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/tontt4/steamsync/internal/domain/listing"
)

// SettingsStore holds the global settings with the same mirror discipline
// as Items: replace-then-persist, readers never observe a torn value.
type SettingsStore struct {
	mu   sync.RWMutex
	wmu  sync.Mutex
	path string
	log  *slog.Logger
	s    listing.Settings
}

func OpenSettings(path string, log *slog.Logger) *SettingsStore {
	if log == nil {
		log = slog.Default()
	}
	st := &SettingsStore{path: path, log: log, s: listing.DefaultSettings()}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("store: cannot read settings, using defaults", "path", path, "err", err)
		}
		return st
	}

	loaded := listing.DefaultSettings()
	if err := json.Unmarshal(raw, &loaded); err != nil {
		log.Warn("store: corrupt settings file, using defaults", "path", path, "err", err)
		return st
	}
	if err := loaded.Validate(); err != nil {
		log.Warn("store: persisted settings invalid, using defaults", "path", path, "err", err)
		return st
	}
	st.s = loaded
	return st
}

func (st *SettingsStore) Get() listing.Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

func (st *SettingsStore) Replace(s listing.Settings) {
	st.mu.Lock()
	st.s = s
	st.mu.Unlock()

	st.wmu.Lock()
	defer st.wmu.Unlock()
	data, err := json.MarshalIndent(st.Get(), "", "  ")
	if err != nil {
		st.log.Warn("store: cannot marshal settings", "err", err)
		return
	}
	if err := writeFileAtomic(st.path, data); err != nil {
		st.log.Warn("store: settings persist failed", "path", st.path, "err", err)
	}
}
