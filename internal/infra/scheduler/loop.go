// Package scheduler runs the background reconciliation loop: wake on a
// fixed period, sync whichever tracked items are due, persist, sleep.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tontt4/steamsync/internal/domain/listing"
	"github.com/tontt4/steamsync/internal/usecase/syncer"
)

// ItemSource is what the loop needs from the store.
type ItemSource interface {
	List() []listing.Item
	Save()
}

// Sync is the per-item reconciliation entry point.
type Sync interface {
	Sync(ctx context.Context, it listing.Item) (syncer.Outcome, error)
}

type Loop struct {
	Items    ItemSource
	Settings listing.SettingsRepo
	Syncer   Sync

	WakePeriod time.Duration // default 60s
	ItemDelay  time.Duration // pacing between due items
	Logger     *slog.Logger
	Now        func() time.Time // test hook

	running int32

	mu        sync.Mutex
	lastCheck map[string]time.Time // per-item, rebuilt empty on start
	lastPass  passInfo
}

type passInfo struct {
	At        time.Time
	Processed int
	Updated   int
	Failed    int
}

func (l *Loop) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Start launches the loop goroutine. It exits when ctx is cancelled.
func (l *Loop) Start(ctx context.Context) {
	wake := l.WakePeriod
	if wake <= 0 {
		wake = time.Minute
	}

	t := time.NewTicker(wake)
	go func() {
		defer t.Stop()
		l.log().Info("scheduler: started", "wake", wake)
		for {
			select {
			case <-ctx.Done():
				l.log().Info("scheduler: stopped")
				return
			case <-t.C:
				if !atomic.CompareAndSwapInt32(&l.running, 0, 1) {
					// previous pass still going, skip this wake
					continue
				}
				func() {
					defer atomic.StoreInt32(&l.running, 0)
					l.Pass(ctx)
				}()
			}
		}
	}()
}

// Pass processes every enabled item whose last check is at least the
// global update interval ago. lastCheck advances before the sync so a
// slow or failing item is not immediately re-processed on the next wake.
// Returns the number of items processed.
func (l *Loop) Pass(ctx context.Context) int {
	interval := time.Duration(l.Settings.Get().UpdateInterval) * time.Second
	processed, updated, failed := 0, 0, 0

	for _, it := range l.Items.List() {
		if ctx.Err() != nil {
			break
		}
		if !it.Enabled {
			continue
		}
		now := l.now()
		if now.Sub(l.checkedAt(it.ID)) < interval {
			continue
		}
		l.setCheckedAt(it.ID, now)

		if processed > 0 && l.ItemDelay > 0 {
			select {
			case <-ctx.Done():
				return processed
			case <-time.After(l.ItemDelay):
			}
		}
		processed++

		out, err := l.Syncer.Sync(ctx, it)
		switch {
		case err != nil:
			failed++
			l.log().Warn("scheduler: sync failed", "lot", it.ID, "err", err)
		case out == syncer.OutcomeUpdated:
			updated++
		}
	}

	if processed > 0 {
		l.Items.Save()
		l.log().Info("scheduler: pass done", "processed", processed, "updated", updated, "failed", failed)
	}

	l.mu.Lock()
	l.lastPass = passInfo{At: l.now(), Processed: processed, Updated: updated, Failed: failed}
	l.mu.Unlock()
	return processed
}

func (l *Loop) checkedAt(id string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCheck[id]
}

func (l *Loop) setCheckedAt(id string, t time.Time) {
	l.mu.Lock()
	if l.lastCheck == nil {
		l.lastCheck = make(map[string]time.Time)
	}
	l.lastCheck[id] = t
	l.mu.Unlock()
}

// LastPass reports the most recent pass for the stats surface.
func (l *Loop) LastPass() (at time.Time, processed, updated, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.lastPass
	return p.At, p.Processed, p.Updated, p.Failed
}
