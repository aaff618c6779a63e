package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/obralabs/sentinela/modules/api"
	"github.com/obralabs/sentinela/pkg/billing"
	"github.com/obralabs/sentinela/pkg/config"
	"github.com/obralabs/sentinela/pkg/geocoder"
	"github.com/obralabs/sentinela/pkg/httpserver"
	"github.com/obralabs/sentinela/pkg/logger"
	"github.com/obralabs/sentinela/pkg/pg"
	pkgredis "github.com/obralabs/sentinela/pkg/redis"
	"github.com/obralabs/sentinela/svc/apr"
	svcbilling "github.com/obralabs/sentinela/svc/billing"
	"github.com/obralabs/sentinela/svc/inspection"
	"github.com/obralabs/sentinela/svc/profile"
	"github.com/obralabs/sentinela/svc/project"
	"github.com/obralabs/sentinela/svc/reporting"
)

type appConfig struct {
	// BaseURL is the public origin of the web app, used as the fallback
	// redirect target for hosted billing flows.
	BaseURL     string        `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	MRRCacheTTL time.Duration `env:"MRR_CACHE_TTL" envDefault:"10m"`
}

func main() {
	ctx := context.Background()

	var (
		appCfg    appConfig
		httpCfg   httpserver.Config
		pgCfg     pg.Config
		redisCfg  pkgredis.Config
		stripeCfg billing.StripeConfig
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&stripeCfg)

	log := logger.New(
		logger.WithLevel(appCfg.LogLevel),
		logger.WithAttr(slog.String("app", "sentinela")),
	)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.ErrorContext(ctx, "failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	cache, err := pkgredis.Connect(ctx, redisCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer cache.Close()

	provider, err := billing.NewStripeProvider(stripeCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to configure billing provider", slog.Any("error", err))
		os.Exit(1)
	}

	profiles := profile.NewPGStore(pool)
	projects := project.NewPGStore(pool)
	inspections := inspection.NewPGStore(pool)
	aprs := apr.NewPGStore(pool)

	// The geocoder is optional: without a token the coordinate backfill
	// endpoint reports unavailable and everything else still works.
	var gc project.Geocoder
	var geoCfg geocoder.Config
	if err := config.Load(&geoCfg); err == nil {
		client, err := geocoder.New(geoCfg)
		if err != nil {
			log.Warn("geocoder disabled", slog.Any("error", err))
		} else {
			gc = client
		}
	} else {
		log.Warn("geocoder disabled", slog.Any("error", err))
	}

	billingSvc := svcbilling.NewService(provider, profiles, log)
	projectSvc := project.NewService(projects, gc, log)
	reportingSvc := reporting.NewService(provider, profiles.Count,
		reporting.WithCache(cache, appCfg.MRRCacheTTL),
		reporting.WithPlatformCounters(
			projects.Count,
			inspections.Count,
			aprs.Count,
			projectLocations(projects),
		),
		reporting.WithLogger(log),
	)

	router := api.Router(api.RouterOptions{
		Billing:     billingSvc,
		Reporting:   reportingSvc,
		Projects:    projectSvc,
		Inspections: inspections,
		APRs:        aprs,
		BaseURL:     appCfg.BaseURL,
		Logger:      log,
	})

	srv := httpserver.New(
		httpserver.WithAddr(httpCfg.Addr),
		httpserver.WithReadTimeout(httpCfg.ReadTimeout),
		httpserver.WithWriteTimeout(httpCfg.WriteTimeout),
		httpserver.WithIdleTimeout(httpCfg.IdleTimeout),
		httpserver.WithShutdownTimeout(httpCfg.ShutdownTimeout),
		httpserver.WithLogger(log),
	)
	if err := srv.Run(ctx, router); err != nil {
		log.ErrorContext(ctx, "server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// projectLocations adapts the project store to the reporting service's
// location source.
func projectLocations(store project.Store) reporting.LocationsFunc {
	return func(ctx context.Context, limit int) ([]reporting.Location, error) {
		locations, err := store.ListLocations(ctx, limit)
		if err != nil {
			return nil, err
		}
		out := make([]reporting.Location, 0, len(locations))
		for _, l := range locations {
			out = append(out, reporting.Location{
				ID:      l.ID.String(),
				Name:    l.Name,
				Address: l.Address,
				Status:  string(l.Status),
				Lat:     l.Lat,
				Lng:     l.Lng,
			})
		}
		return out, nil
	}
}
