// Package storeping probes that the persistence directory is writable, so
// /health degrades before a sync pass silently loses its mirror.
package storeping

import (
	"context"
	"os"
	"path/filepath"
)

type DirPing struct {
	Dir string
}

func (DirPing) Name() string { return "store" }

func (p DirPing) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	probe := filepath.Join(p.Dir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
