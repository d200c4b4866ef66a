package listing

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Gateway when the remote lot no longer exists.
// The synchronizer prunes the local record on this error.
var ErrNotFound = errors.New("listing: lot not found")

type Gateway interface {
	GetFields(ctx context.Context, id string) (Fields, error)
	SaveFields(ctx context.Context, f Fields) error
}
