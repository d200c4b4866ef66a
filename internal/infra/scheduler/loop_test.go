package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tontt4/steamsync/internal/domain/listing"
	"github.com/tontt4/steamsync/internal/usecase/syncer"
)

type fakeItems struct {
	items []listing.Item
	saves int
}

func (f *fakeItems) List() []listing.Item { return f.items }
func (f *fakeItems) Save()                { f.saves++ }

type fakeSettings struct{ s listing.Settings }

func (f *fakeSettings) Get() listing.Settings      { return f.s }
func (f *fakeSettings) Replace(s listing.Settings) { f.s = s }

type countingSync struct {
	calls map[string]int
	out   syncer.Outcome
	err   error
}

func (c *countingSync) Sync(_ context.Context, it listing.Item) (syncer.Outcome, error) {
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[it.ID]++
	return c.out, c.err
}

func hourlySettings() listing.Settings {
	s := listing.DefaultSettings()
	s.UpdateInterval = 3600
	return s
}

func TestPass_ProcessesDueItemsOnce(t *testing.T) {
	items := &fakeItems{items: []listing.Item{
		{ID: "1", SteamID: "730", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: true},
		{ID: "2", SteamID: "570", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: true},
	}}
	sy := &countingSync{out: syncer.OutcomeUpdated}

	now := time.Unix(1700000000, 0)
	l := &Loop{
		Items:    items,
		Settings: &fakeSettings{s: hourlySettings()},
		Syncer:   sy,
		Now:      func() time.Time { return now },
	}

	if n := l.Pass(context.Background()); n != 2 {
		t.Fatalf("processed = %d, want 2", n)
	}
	if sy.calls["1"] != 1 || sy.calls["2"] != 1 {
		t.Fatalf("calls = %v, want each item once", sy.calls)
	}
	if items.saves != 1 {
		t.Fatalf("saves = %d, want 1 after a pass with work", items.saves)
	}

	// Nothing is due again until the interval elapses.
	now = now.Add(30 * time.Minute)
	if n := l.Pass(context.Background()); n != 0 {
		t.Fatalf("processed = %d on early pass, want 0", n)
	}
	if items.saves != 1 {
		t.Fatalf("saves = %d, want no save on an idle pass", items.saves)
	}

	now = now.Add(31 * time.Minute)
	if n := l.Pass(context.Background()); n != 2 {
		t.Fatalf("processed = %d after interval, want 2", n)
	}
}

func TestPass_SkipsDisabled(t *testing.T) {
	items := &fakeItems{items: []listing.Item{
		{ID: "1", SteamID: "730", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: false},
		{ID: "2", SteamID: "570", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: true},
	}}
	sy := &countingSync{out: syncer.OutcomeUnchanged}
	l := &Loop{Items: items, Settings: &fakeSettings{s: hourlySettings()}, Syncer: sy}

	if n := l.Pass(context.Background()); n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}
	if sy.calls["1"] != 0 {
		t.Fatal("disabled item was synced")
	}
}

func TestPass_FailedItemNotRetriedUntilNextInterval(t *testing.T) {
	items := &fakeItems{items: []listing.Item{
		{ID: "1", SteamID: "730", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: true},
	}}
	sy := &countingSync{err: errors.New("store down")}

	now := time.Unix(1700000000, 0)
	l := &Loop{
		Items:    items,
		Settings: &fakeSettings{s: hourlySettings()},
		Syncer:   sy,
		Now:      func() time.Time { return now },
	}

	l.Pass(context.Background())
	now = now.Add(time.Minute)
	l.Pass(context.Background())
	if sy.calls["1"] != 1 {
		t.Fatalf("calls = %d, want failure to still advance the item's clock", sy.calls["1"])
	}

	_, processed, _, failed := l.LastPass()
	if processed != 0 || failed != 0 {
		t.Fatalf("last pass = %d processed / %d failed, want idle", processed, failed)
	}
}

func TestPass_StopsOnCancel(t *testing.T) {
	items := &fakeItems{items: []listing.Item{
		{ID: "1", SteamID: "730", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: true},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sy := &countingSync{}
	l := &Loop{Items: items, Settings: &fakeSettings{s: hourlySettings()}, Syncer: sy}
	if n := l.Pass(ctx); n != 0 {
		t.Fatalf("processed = %d with cancelled ctx, want 0", n)
	}
}

func TestLastPass_Recorded(t *testing.T) {
	items := &fakeItems{items: []listing.Item{
		{ID: "1", SteamID: "730", SourceCurrency: "UAH", MinPrice: 1, MaxPrice: 10, Enabled: true},
	}}
	sy := &countingSync{out: syncer.OutcomeUpdated}
	now := time.Unix(1700000000, 0)
	l := &Loop{
		Items:    items,
		Settings: &fakeSettings{s: hourlySettings()},
		Syncer:   sy,
		Now:      func() time.Time { return now },
	}
	l.Pass(context.Background())

	at, processed, updated, failed := l.LastPass()
	if !at.Equal(now) || processed != 1 || updated != 1 || failed != 0 {
		t.Fatalf("LastPass = %v / %d / %d / %d", at, processed, updated, failed)
	}
}
