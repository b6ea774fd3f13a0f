package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/JPrier/JobSearch/internal/cache"
	cacheredis "github.com/JPrier/JobSearch/internal/cache/redis"
	"github.com/JPrier/JobSearch/internal/config"
	"github.com/JPrier/JobSearch/internal/events"
	"github.com/JPrier/JobSearch/internal/export"
	"github.com/JPrier/JobSearch/internal/filter"
	"github.com/JPrier/JobSearch/internal/notify"
	"github.com/JPrier/JobSearch/internal/pipeline"
	"github.com/JPrier/JobSearch/internal/score"
	"github.com/JPrier/JobSearch/internal/source"
	"github.com/JPrier/JobSearch/internal/telemetry"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

func newCache(cfg *config.Config) cache.Cache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return cacheredis.New(cache.Options{
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		DefaultTTL:    cfg.Redis.TTL,
	})
}

func newBoards(cfg *config.Config, client *http.Client, logger *zap.Logger) ([]source.Board, error) {
	return source.Select(cfg.Boards, source.Registry(client, logger))
}

func newFetcher(boards []source.Board, c cache.Cache, cfg *config.Config, logger *zap.Logger) *source.Fetcher {
	return source.NewFetcher(boards, c, cfg.Redis.TTL, cfg.FetchWorkers, logger)
}

func newTitleFilter(cfg *config.Config) *filter.Title {
	return filter.NewTitle(cfg.IncludePattern, cfg.ExcludePattern)
}

func newLocationFilter(cfg *config.Config) *filter.Location {
	return filter.NewLocation(cfg.RemoteOnly)
}

func newExporter(cfg *config.Config, logger *zap.Logger) *export.CSVWriter {
	return export.NewCSVWriter(cfg.OutputDir, cfg.DropColumns, logger)
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if !cfg.NATS.Enabled {
		return nil, nil
	}
	return events.NewPublisher(logger, cfg)
}

func newNotifier(cfg *config.Config) (*notify.Notifier, error) {
	if !cfg.Telegram.Enabled {
		return nil, nil
	}
	return notify.NewNotifier(cfg)
}

func run(
	p *pipeline.Pipeline,
	cfg *config.Config,
	logger *zap.Logger,
	publisher events.Publisher,
	c cache.Cache,
	lc fx.Lifecycle,
	sd fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx := context.Background()

				var cleanup func()
				if cfg.Telemetry.Enabled {
					var err error
					cleanup, err = telemetry.InitTracer(ctx, "jobsearch", cfg.Telemetry.CollectorURL, logger)
					if err != nil {
						logger.Warn("failed to init tracer, continuing without telemetry", zap.Error(err))
					}
				}

				path, err := p.Run(ctx)
				if err != nil {
					logger.Error("pipeline run failed", zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
					return
				}
				logger.Info("pipeline run complete", zap.String("export", path))

				if cleanup != nil {
					cleanup()
				}
				_ = sd.Shutdown()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			if publisher != nil {
				publisher.Close()
			}
			if c != nil {
				return c.Close()
			}
			return nil
		},
	})
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	app := fx.New(
		fx.Provide(
			func() (*config.Config, error) { return config.Load(*configPath) },
			newLogger,
			newHTTPClient,
			newCache,
			newBoards,
			newFetcher,
			newTitleFilter,
			newLocationFilter,
			score.New,
			newExporter,
			newPublisher,
			newNotifier,
			pipeline.New,
		),
		fx.Invoke(run),
	)

	app.Run()
}
