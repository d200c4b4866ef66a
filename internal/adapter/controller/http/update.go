package httpctrl

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tontt4/steamsync/internal/domain/listing"
	"github.com/tontt4/steamsync/internal/usecase/syncer"
)

type UpdateController struct {
	Syncer    *syncer.Syncer
	Items     listing.ItemRepo
	ItemDelay time.Duration
	Timeout   time.Duration // budget for a full manual pass
}

func NewUpdateController(s *syncer.Syncer, items listing.ItemRepo, itemDelay time.Duration) *UpdateController {
	return &UpdateController{Syncer: s, Items: items, ItemDelay: itemDelay, Timeout: 10 * time.Minute}
}

func (c *UpdateController) Register(r *gin.Engine, auth gin.HandlerFunc) {
	r.POST("/update", auth, c.updateAll)
	r.POST("/items/:id/update", auth, c.updateOne)
}

// updateAll kicks a full pass in the background and returns immediately;
// the pass shares the store's locking with the scheduler, last writer
// wins per item.
func (c *UpdateController) updateAll(ctx *gin.Context) {
	go func() {
		cctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		c.Syncer.RunAll(cctx, c.ItemDelay)
	}()
	ctx.JSON(http.StatusAccepted, gin.H{"started": true})
}

func (c *UpdateController) updateOne(ctx *gin.Context) {
	it, ok := c.Items.Get(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}

	out, err := c.Syncer.Sync(ctx.Request.Context(), it)
	switch {
	case err == nil && out == syncer.OutcomeUpdated:
		ctx.JSON(http.StatusOK, gin.H{"id": it.ID, "result": "updated"})
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"id": it.ID, "result": "unchanged"})
	case errors.Is(err, syncer.ErrListingGone):
		ctx.JSON(http.StatusGone, gin.H{"id": it.ID, "result": "pruned", "error": err.Error()})
	case errors.Is(err, syncer.ErrNoPrice):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"id": it.ID, "error": err.Error()})
	default:
		ctx.JSON(http.StatusBadGateway, gin.H{"id": it.ID, "error": err.Error()})
	}
}
