package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	httpctrl "github.com/tontt4/steamsync/internal/adapter/controller/http"
	"github.com/tontt4/steamsync/internal/adapter/gateway/funpay"
	"github.com/tontt4/steamsync/internal/adapter/gateway/natbank"
	"github.com/tontt4/steamsync/internal/adapter/gateway/openexchange"
	"github.com/tontt4/steamsync/internal/adapter/gateway/steamstore"
	"github.com/tontt4/steamsync/internal/adapter/gateway/storeping"
	"github.com/tontt4/steamsync/internal/config"
	healthdom "github.com/tontt4/steamsync/internal/domain/health"
	"github.com/tontt4/steamsync/internal/domain/rates"
	httpinfra "github.com/tontt4/steamsync/internal/infra/http"
	"github.com/tontt4/steamsync/internal/infra/http/mw/adminauth"
	"github.com/tontt4/steamsync/internal/infra/scheduler"
	"github.com/tontt4/steamsync/internal/infra/store"
	healthuc "github.com/tontt4/steamsync/internal/usecase/health"
	ratesuc "github.com/tontt4/steamsync/internal/usecase/rates"
	"github.com/tontt4/steamsync/internal/usecase/syncer"
)

// trackedCurrencies are the store currencies operators can pick plus the
// account side; the stats surface reports rates for these.
var trackedCurrencies = []string{"UAH", "RUB", "EUR", "KZT", "USD"}

// App is the composed object graph. Shutdown responsibilities stay with
// cmd/agent: cancel the loop's context, then Flush.
type App struct {
	Router   *gin.Engine
	Loop     *scheduler.Loop
	Items    *store.Items
	Settings *store.SettingsStore
	Syncer   *syncer.Syncer
}

func Build(cfg config.Config, log *slog.Logger) (*App, error) {
	settings := store.OpenSettings(cfg.SettingsPath, log)
	items := store.OpenItems(cfg.ItemsPath, settings.Get(), log)

	primary := openexchange.NewWithBaseURL(cfg.RatesBaseURL)
	provider := ratesuc.New(
		primary,
		[]rates.SecondarySource{
			natbank.NewNBUWithBaseURL(cfg.NBUBaseURL),
			natbank.NewCBRWithBaseURL(cfg.CBRBaseURL),
		},
		cfg.RateTTL,
		log,
	)

	steam := steamstore.New(steamstore.Config{
		BaseURL:  cfg.SteamBaseURL,
		CacheTTL: cfg.CacheTTL,
		Delay:    cfg.SteamDelay,
		Logger:   log,
	})

	account := funpay.New(funpay.Config{BaseURL: cfg.FunPayBaseURL, Token: cfg.FunPayToken})

	sync := &syncer.Syncer{
		Items:      items,
		Settings:   settings,
		Catalog:    steam,
		Gateway:    account,
		Rates:      provider,
		Retries:    cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Epsilon:    cfg.PriceEps,
		Logger:     log,
	}

	loop := &scheduler.Loop{
		Items:      items,
		Settings:   settings,
		Syncer:     sync,
		WakePeriod: cfg.WakePeriod,
		ItemDelay:  cfg.ItemDelay,
		Logger:     log,
	}

	build := config.NewBuildInfo()
	readiness := &healthuc.ReadinessInteractor{
		Pingers: []healthdom.Pinger{
			storeping.DirPing{Dir: cfg.DataDir},
			primary,
		},
		Version:   build.Version,
		Commit:    build.Commit,
		BuildTime: build.BuildTime,
		StartedAt: build.StartedAt,
		Timeout:   2 * time.Second,
	}

	router := httpinfra.NewRouter(log)
	auth := adminauth.New(cfg.AdminAPIKey).Handler()

	httpctrl.NewHealthController(readiness).Register(router)
	httpctrl.NewItemsController(items, settings, steam).Register(router, auth)
	httpctrl.NewSettingsController(settings).Register(router, auth)
	httpctrl.NewUpdateController(sync, items, cfg.ItemDelay).Register(router, auth)
	httpctrl.NewStatsController(items, provider, loop, trackedCurrencies).Register(router, auth)

	return &App{
		Router:   router,
		Loop:     loop,
		Items:    items,
		Settings: settings,
		Syncer:   sync,
	}, nil
}

// Flush writes the final state of both stores, for shutdown.
func (a *App) Flush() {
	a.Items.Save()
	a.Settings.Replace(a.Settings.Get())
}
