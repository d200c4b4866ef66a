package health

import "context"

type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Pinger is a named dependency check with a short deadline.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}
