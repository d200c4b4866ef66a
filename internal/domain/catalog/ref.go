package catalog

import "strings"

const bundlePrefix = "sub_"

// Ref points at a store catalog entry: an app ("730") or a package
// ("sub_12345"). The raw form is what operators type and what gets
// persisted on the item.
type Ref struct {
	ID     string
	Bundle bool
}

// ParseRef validates the raw identifier. App ids are digits only; package
// ids are "sub_" followed by digits. ok=false means no request should be
// made for this ref at all.
func ParseRef(raw string) (Ref, bool) {
	if id, found := strings.CutPrefix(raw, bundlePrefix); found {
		if !digits(id) {
			return Ref{}, false
		}
		return Ref{ID: id, Bundle: true}, true
	}
	if !digits(raw) {
		return Ref{}, false
	}
	return Ref{ID: raw}, true
}

func (r Ref) String() string {
	if r.Bundle {
		return bundlePrefix + r.ID
	}
	return r.ID
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
