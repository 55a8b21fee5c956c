// Command feedrec 启动 Feed 推荐服务。
//
// 配置来自 config.yaml（或 FEEDREC_CONFIG 指定的文件）与 FEEDREC_* 环境变量，见 config 包。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rushteam/feedrec/api"
	"github.com/rushteam/feedrec/catalog"
	"github.com/rushteam/feedrec/config"
	"github.com/rushteam/feedrec/config/builders"
	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/engine"
	"github.com/rushteam/feedrec/feedback"
	"github.com/rushteam/feedrec/ledger"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/pkg/logging"
	"github.com/rushteam/feedrec/service"
	"github.com/rushteam/feedrec/simulate"
	"github.com/rushteam/feedrec/store"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		boot := logging.New(logging.DefaultConfig())
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("feedrec exited with error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("feedrec stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backends, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.close(log)

	cat := catalog.NewMemoryCatalog()
	if cfg.Catalog.Path != "" {
		items, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		if err := cat.Upsert(items...); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Catalog.Path).Int("count", len(items)).Msg("catalog loaded")
	}

	if err := config.ValidateStages(cfg.Feed.Stages); err != nil {
		return err
	}
	stages, err := config.DefaultFactory().BuildNodes(cfg.Feed.Stages)
	if err != nil {
		return err
	}
	if cfg.Feed.BlacklistKey != "" {
		stages = append([]pipeline.Node{builders.NewStoreBlacklistNode(backends.trending, cfg.Feed.BlacklistKey)}, stages...)
	}

	eng := engine.New(backends.ledger,
		engine.WithConfig(cfg.ScoringConfig()),
		engine.WithLogger(logging.Component(log, "engine")),
		engine.WithStages(stages...),
	)
	users := service.NewUserManager(logging.Component(log, "users"))
	svc := service.NewFeedService(eng, users, cat, backends.trending, logging.Component(log, "feed"))
	if cfg.Feed.TrendingKey != "" {
		svc.TrendingKey = cfg.Feed.TrendingKey
	}
	svc.BlacklistKey = cfg.Feed.BlacklistKey
	collector, err := openFeedback(cfg.Feedback, logging.Component(log, "feedback"))
	if err != nil {
		return err
	}
	if collector != nil {
		defer func() {
			if err := collector.Close(); err != nil {
				log.Warn().Err(err).Msg("close feedback collector failed")
			}
		}()
		svc.Feedback = collector
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(api.NewHandler(svc, logging.Component(log, "api"))),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("ledger", cfg.Ledger.Backend).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Simulate.Enabled {
		g.Go(func() error {
			return runSimulation(gctx, cfg.Simulate, svc, cat, logging.Component(log, "simulate"))
		})
	}
	return g.Wait()
}

type backends struct {
	ledger   core.InteractionLedger
	trending core.KeyValueStore
	closers  []func() error
}

func (b *backends) close(log zerolog.Logger) {
	for _, c := range b.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close backend failed")
		}
	}
}

// openBackends 按 ledger.backend 创建账本与热门榜单存储。
func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	if cfg.Ledger.Backend == config.BackendRedis {
		r := cfg.Redis
		l, err := ledger.DialRedisLedger(ctx, r.Addr, r.Password, r.DB, cfg.Ledger.KeyPrefix)
		if err != nil {
			return nil, err
		}
		kv, err := store.DialRedisStore(ctx, r.Addr, r.Password, r.DB)
		if err != nil {
			_ = l.Close()
			return nil, err
		}
		log.Info().Str("addr", r.Addr).Int("db", r.DB).Msg("redis backends connected")
		return &backends{ledger: l, trending: kv, closers: []func() error{l.Close, kv.Close}}, nil
	}

	kv := store.NewMemoryStore()
	return &backends{ledger: ledger.NewMemoryLedger(), trending: kv, closers: []func() error{kv.Close}}, nil
}

// openFeedback 按 feedback.backend 创建事件采集器，none 时返回 nil。
func openFeedback(cfg config.FeedbackConfig, log zerolog.Logger) (feedback.Collector, error) {
	switch cfg.Backend {
	case config.FeedbackKafka:
		c, err := feedback.NewKafkaCollector(feedback.KafkaConfig{
			Brokers:         cfg.Brokers,
			Topic:           cfg.Topic,
			ClientID:        cfg.ClientID,
			BatchSize:       cfg.BatchSize,
			FlushInterval:   cfg.FlushInterval,
			Compression:     cfg.Compression,
			MaxBuffered:     cfg.MaxBuffered,
			DeliveryTimeout: cfg.DeliveryTimeout,
			CloseTimeout:    cfg.CloseTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("kafka feedback enabled")
		return c, nil
	case config.FeedbackMemory:
		return feedback.NewMemoryCollector(), nil
	default:
		return nil, nil
	}
}

// runSimulation 注册默认人设并在后台生成交互；完成或被取消都不影响服务运行。
func runSimulation(ctx context.Context, cfg config.SimulateConfig, svc *service.FeedService, cat *catalog.MemoryCatalog, log zerolog.Logger) error {
	sim := &simulate.Simulator{
		Personas: simulate.DefaultPersonas(),
		Catalog:  cat,
		Recorder: svc,
		Seed:     cfg.Seed,
		Logger:   log,
	}
	if cfg.RatePerSecond > 0 {
		sim.Limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	if err := sim.Register(svc.Users); err != nil {
		return err
	}

	report, err := sim.Run(ctx, cfg.Rounds)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("simulation failed")
		return nil
	}
	log.Info().
		Int("rounds", report.Rounds).
		Int("views", report.Views).
		Int("likes", report.Likes).
		Int("saves", report.Saves).
		Msg("simulation finished")
	return nil
}
