package httpctrl

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tontt4/steamsync/internal/domain/catalog"
	"github.com/tontt4/steamsync/internal/domain/listing"
)

type ItemsController struct {
	Items    listing.ItemRepo
	Settings listing.SettingsRepo
	Names    catalog.NameSource // optional, enriches GET responses
}

func NewItemsController(items listing.ItemRepo, settings listing.SettingsRepo, names catalog.NameSource) *ItemsController {
	return &ItemsController{Items: items, Settings: settings, Names: names}
}

func (c *ItemsController) Register(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/items", auth)
	g.GET("", c.list)
	g.POST("", c.create)
	g.GET("/:id", c.get)
	g.PATCH("/:id", c.patch)
	g.DELETE("/:id", c.delete)
	g.POST("/:id/toggle", c.toggle)
}

type itemView struct {
	listing.Item
	Name string `json:"name,omitempty"`
}

func (c *ItemsController) view(ctx *gin.Context, it listing.Item) itemView {
	v := itemView{Item: it}
	if c.Names != nil {
		if ref, ok := catalog.ParseRef(it.SteamID); ok {
			v.Name = c.Names.Name(ctx.Request.Context(), ref)
		}
	}
	return v
}

func (c *ItemsController) list(ctx *gin.Context) {
	items := c.Items.List()
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, c.view(ctx, it))
	}
	ctx.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

func (c *ItemsController) get(ctx *gin.Context) {
	it, ok := c.Items.Get(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}
	ctx.JSON(http.StatusOK, c.view(ctx, it))
}

type createReq struct {
	ID             string   `json:"id" binding:"required"`
	SteamID        string   `json:"steam_id" binding:"required"`
	SourceCurrency string   `json:"steam_currency"`
	MinPrice       *float64 `json:"min_price"`
	MaxPrice       *float64 `json:"max_price"`
	Enabled        *bool    `json:"enabled"`
}

func (c *ItemsController) create(ctx *gin.Context) {
	var req createReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := catalog.ParseRef(req.SteamID); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "bad steam id: want digits or sub_<digits>"})
		return
	}
	if _, exists := c.Items.Get(req.ID); exists {
		ctx.JSON(http.StatusConflict, gin.H{"error": "lot already tracked"})
		return
	}

	defaults := c.Settings.Get()
	it := listing.Item{
		ID:             req.ID,
		SteamID:        req.SteamID,
		SourceCurrency: "UAH",
		MinPrice:       defaults.MinPrice,
		MaxPrice:       defaults.MaxPrice,
		Enabled:        true,
	}
	if req.SourceCurrency != "" {
		it.SourceCurrency = req.SourceCurrency
	}
	if req.MinPrice != nil {
		it.MinPrice = *req.MinPrice
	}
	if req.MaxPrice != nil {
		it.MaxPrice = *req.MaxPrice
	}
	if req.Enabled != nil {
		it.Enabled = *req.Enabled
	}
	if err := it.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Items.Put(it)
	ctx.JSON(http.StatusCreated, c.view(ctx, it))
}

type patchReq struct {
	SteamID        *string  `json:"steam_id"`
	SourceCurrency *string  `json:"steam_currency"`
	MinPrice       *float64 `json:"min_price"`
	MaxPrice       *float64 `json:"max_price"`
	Enabled        *bool    `json:"enabled"`
}

func (c *ItemsController) patch(ctx *gin.Context) {
	it, ok := c.Items.Get(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}
	var req patchReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SteamID != nil {
		if _, ok := catalog.ParseRef(*req.SteamID); !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "bad steam id: want digits or sub_<digits>"})
			return
		}
		it.SteamID = *req.SteamID
	}
	if req.SourceCurrency != nil {
		it.SourceCurrency = *req.SourceCurrency
	}
	if req.MinPrice != nil {
		it.MinPrice = *req.MinPrice
	}
	if req.MaxPrice != nil {
		it.MaxPrice = *req.MaxPrice
	}
	if req.Enabled != nil {
		it.Enabled = *req.Enabled
	}
	if err := it.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Items.Put(it)
	ctx.JSON(http.StatusOK, c.view(ctx, it))
}

func (c *ItemsController) delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, ok := c.Items.Get(id); !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}
	c.Items.Delete(id)
	ctx.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (c *ItemsController) toggle(ctx *gin.Context) {
	it, ok := c.Items.Get(ctx.Param("id"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}
	it.Enabled = !it.Enabled
	c.Items.Put(it)
	ctx.JSON(http.StatusOK, gin.H{"id": it.ID, "enabled": it.Enabled})
}
