// Package store persists the tracked-item map and the global settings as
// JSON documents. Memory is authoritative; a failed disk mirror is logged
// and the process carries on.
package store

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultDataDir resolves the agent's data directory under the XDG data
// home, creating it if needed.
func DefaultDataDir() (string, error) {
	p, err := xdg.DataFile("steamsync/.keep")
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// writeFileAtomic replaces path via a temp file in the same directory so a
// crash mid-write never corrupts the previous good copy.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
