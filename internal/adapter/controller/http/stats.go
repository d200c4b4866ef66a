package httpctrl

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tontt4/steamsync/internal/domain/listing"
	"github.com/tontt4/steamsync/internal/domain/rates"
)

// RateSnapshot reports cached rates without network I/O.
type RateSnapshot interface {
	Snapshot(currencies []string) []rates.Rate
}

// PassInfo is the scheduler's last-pass summary.
type PassInfo interface {
	LastPass() (at time.Time, processed, updated, failed int)
}

type StatsController struct {
	Items      listing.ItemRepo
	Rates      RateSnapshot
	Loop       PassInfo
	Currencies []string
}

func NewStatsController(items listing.ItemRepo, r RateSnapshot, loop PassInfo, currencies []string) *StatsController {
	return &StatsController{Items: items, Rates: r, Loop: loop, Currencies: currencies}
}

func (c *StatsController) Register(r *gin.Engine, auth gin.HandlerFunc) {
	r.GET("/stats", auth, c.get)
}

func (c *StatsController) get(ctx *gin.Context) {
	items := c.Items.List()
	enabled := 0
	var lastUpdate int64
	for _, it := range items {
		if it.Enabled {
			enabled++
		}
		if it.LastUpdateAt > lastUpdate {
			lastUpdate = it.LastUpdateAt
		}
	}

	out := gin.H{
		"items":         gin.H{"total": len(items), "enabled": enabled},
		"rates":         c.Rates.Snapshot(c.Currencies),
		"lastLotUpdate": lastUpdate,
	}
	if c.Loop != nil {
		at, processed, updated, failed := c.Loop.LastPass()
		out["lastPass"] = gin.H{
			"at": at, "processed": processed, "updated": updated, "failed": failed,
		}
	}
	ctx.JSON(http.StatusOK, out)
}
