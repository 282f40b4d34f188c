package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authcore/internal/config"
	httpx "github.com/dropDatabas3/authcore/internal/http"
	"github.com/dropDatabas3/authcore/internal/http/router"
	"github.com/dropDatabas3/authcore/internal/oauth2"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/rate"
	"github.com/dropDatabas3/authcore/internal/store"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "config.yaml", "ruta al archivo de configuración")
	flag.Parse()

	// .env opcional; las env vars pisan al YAML.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// El logger todavía no existe; stderr directo.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "authcore",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg)
	if err != nil {
		log.Error("store init failed", logger.Driver(cfg.Storage.Driver), logger.Err(err))
		return err
	}
	defer func() { _ = st.Close() }()
	log.Info("store ready", logger.Driver(cfg.Storage.Driver))

	services := oauth2.NewServices(oauth2.Deps{
		Store:      st,
		Issuer:     cfg.OAuth.Issuer,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
		CodeTTL:    cfg.CodeTTL(),
	})

	metricsHandler, err := httpx.RegisterMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics registration failed", logger.Err(err))
		return err
	}

	handler := router.New(router.Deps{
		Services:       &services,
		Store:          st,
		MetricsHandler: metricsHandler,
		RateLimiter:    buildRateLimiter(cfg),
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", logger.Err(err))
		return err
	}
	log.Info("bye")
	return nil
}

// buildRateLimiter arma el limiter según config: compartido via redis cuando
// el storage ya es redis, local en los demás drivers. nil = deshabilitado.
func buildRateLimiter(cfg *config.Config) rate.Limiter {
	max := cfg.Server.RateLimit.Max
	if max <= 0 {
		return nil
	}
	window := cfg.RateLimitWindow()

	if cfg.Storage.Driver == "redis" && cfg.Storage.Redis.Addr != "" {
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		return rate.NewRedisLimiter(client, cfg.Storage.Redis.Prefix+"rl:", max, window)
	}
	return rate.NewLocalLimiter(max, window)
}
