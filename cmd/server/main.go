package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"wingscafe/backend/internal/config"
	"wingscafe/backend/internal/httpapi"
	"wingscafe/backend/internal/service"
	"wingscafe/backend/internal/store"
	"wingscafe/backend/internal/store/memory"
	pgstore "wingscafe/backend/internal/store/postgres"
	"wingscafe/backend/internal/store/redisstore"
)

func main() {
	app := &cli.App{
		Name:  "server",
		Usage: "Wings Cafe inventory and sales ledger backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the JSON API (default)",
				Action: serve,
			},
			{
				Name:   "verify",
				Usage:  "load the ledger, audit product totals against sales and exit non-zero on mismatch",
				Action: verify,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

type backend struct {
	cfg     config.Config
	svc     *service.Service
	closers []func() error
}

func (rt *backend) close() {
	for _, closeFn := range rt.closers {
		if err := closeFn(); err != nil {
			log.WithError(err).Warn("close error")
		}
	}
}

// boot loads configuration, opens the snapshot store and loads the ledger.
func boot(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	opts, err := validateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := configureLogging(cfg); err != nil {
		return nil, err
	}

	kv, closers, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt := &backend{cfg: cfg, closers: closers}

	rt.svc = service.New(kv, opts)
	if err := rt.svc.Load(ctx); err != nil {
		rt.close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return rt, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.KV, []func() error, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
		}
		log.Info("snapshot store: postgres")
		return pg, []func() error{pg.Close}, nil
	}

	if cfg.RedisAddr != "" {
		rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("redis unavailable and REDIS_ADDR is set: %w", err)
		}
		log.WithField("prefix", cfg.RedisKeyPrefix).Info("snapshot store: redis")
		return rs, []func() error{rs.Close}, nil
	}

	log.Warn("snapshot store: in-memory, nothing will survive a restart")
	mem := memory.New()
	return mem, []func() error{mem.Close}, nil
}

func serve(c *cli.Context) error {
	bootCtx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	rt, err := boot(bootCtx)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.SeedDemo {
		if _, err := rt.svc.SeedDemo(bootCtx); err != nil {
			return err
		}
	}

	api := httpapi.New(rt.svc, rt.cfg.AllowedOrigin)
	server := &http.Server{
		Addr:              rt.cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", rt.cfg.Address()).Info("cafe backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown error")
	}
	log.Info("server stopped")
	return nil
}

func verify(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	rt, err := boot(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	report := rt.svc.Reconcile(ctx)
	for _, d := range report.Discrepancies {
		log.WithFields(log.Fields{
			"product_id": d.ProductID,
			"product":    d.ProductName,
			"field":      d.Field,
			"recorded":   d.Recorded,
			"expected":   d.Expected,
		}).Error("ledger discrepancy")
	}
	for _, id := range report.OrphanSaleIDs {
		log.WithField("sale_id", id).Warn("sale references a deleted product")
	}

	if !report.Consistent {
		return cli.Exit(fmt.Sprintf("ledger inconsistent: %d discrepancies", len(report.Discrepancies)), 1)
	}
	log.WithFields(log.Fields{
		"products": report.Products,
		"sales":    report.Sales,
	}).Info("ledger consistent")
	return nil
}

func validateConfig(cfg config.Config) (service.Options, error) {
	pricing, err := service.ParsePricingPolicy(cfg.PricingPolicy)
	if err != nil {
		return service.Options{}, err
	}
	deletion, err := service.ParseDeletePolicy(cfg.ProductDeletePolicy)
	if err != nil {
		return service.Options{}, err
	}
	if cfg.LowStockThreshold < 0 {
		return service.Options{}, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	if cfg.RedisDB < 0 {
		return service.Options{}, fmt.Errorf("REDIS_DB must not be negative")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return service.Options{}, fmt.Errorf("PORT must be set")
	}
	return service.Options{
		Pricing:           pricing,
		Deletion:          deletion,
		LowStockThreshold: cfg.LowStockThreshold,
	}, nil
}

func configureLogging(cfg config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q, want text or json", cfg.LogFormat)
	}
	return nil
}
