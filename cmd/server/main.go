package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tarotfutura/futura/internal/auth"
	"github.com/tarotfutura/futura/internal/config"
	"github.com/tarotfutura/futura/internal/database"
	"github.com/tarotfutura/futura/internal/handler/health"
	"github.com/tarotfutura/futura/internal/horoscope"
	"github.com/tarotfutura/futura/internal/migrations"
	"github.com/tarotfutura/futura/internal/oracle"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/personality"
	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/server"
	"github.com/tarotfutura/futura/internal/tarot"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return err
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Oracle ---
	client, err := newOracle(ctx, cfg.Oracle)
	if err != nil {
		return fmt.Errorf("configuring oracle: %w", err)
	}
	logger.Info("oracle configured", "backend", cfg.Oracle.Backend, "model", cfg.Oracle.Model)

	personalities, err := personality.Load()
	if err != nil {
		return fmt.Errorf("loading personality data: %w", err)
	}

	store := server.NewSQLiteStore(db)
	paypal := payment.NewPayPal(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.Secret,
		&http.Client{Timeout: cfg.PayPal.Timeout})

	revealer := tarot.NewRevealer(cfg.RevealInterval)
	defer revealer.Stop()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:       store,
		Tokens:      auth.NewVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.Audience),
		Interpreter: reading.NewInterpreter(client, cfg.Oracle.Timeout, logger),
		Unlocker: payment.NewUnlocker(store, paypal, payment.UnlockerConfig{
			Price:    payment.Price{Amount: cfg.Premium.Price, Currency: cfg.Premium.Currency},
			Provider: "paypal",
			Timeout:  cfg.PayPal.Timeout,
		}, logger),
		Horoscopes:  horoscope.NewService(store, client, cfg.Oracle.Timeout, logger),
		Personality: personalities,
		Drawer:      tarot.NewDrawer(),
		Revealer:    revealer,
		Broker:      server.NewBroker(),
		Checks: map[string]health.Checker{
			"sqlite": database.Checker{DB: db},
		},
		SPADir: cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		revealer.Stop()
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func newOracle(ctx context.Context, cfg config.OracleConfig) (oracle.Client, error) {
	switch cfg.Backend {
	case "gemini":
		g, err := oracle.NewGemini(ctx, cfg.APIKey, strings.TrimPrefix(cfg.Model, "google/"))
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return oracle.NewGateway(cfg.URL, cfg.APIKey, cfg.Model, &http.Client{Timeout: cfg.Timeout}), nil
	}
}
