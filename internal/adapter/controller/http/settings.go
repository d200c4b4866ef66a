package httpctrl

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tontt4/steamsync/internal/domain/listing"
)

type SettingsController struct {
	Settings listing.SettingsRepo
}

func NewSettingsController(s listing.SettingsRepo) *SettingsController {
	return &SettingsController{Settings: s}
}

func (c *SettingsController) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/settings", auth)
	g.GET("", c.get)
	g.PUT("", c.put)
}

func (c *SettingsController) get(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.Settings.Get())
}

// put replaces the whole settings document; partial updates start from GET.
func (c *SettingsController) put(ctx *gin.Context) {
	s := c.Settings.Get()
	if err := ctx.ShouldBindJSON(&s); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Settings.Replace(s)
	ctx.JSON(http.StatusOK, s)
}
