package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buyback/cmd"
	"buyback/internal/pkg/logger"
	"buyback/internal/pkg/tracing"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load(".env")

	configs, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(configs.LogLevel)
	defer func() { _ = log.Sync() }()

	if err = run(configs, log); err != nil {
		log.Fatal("buyback stopped", zap.Error(err))
	}
}

func run(configs cmd.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init("buyback", configs.TracingEnabled, nil)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Warn("closing connections", zap.Error(closeErr))
		}
	}()

	e, err := app.CreateServer().NewEcho()
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		jobManager.StopAll()
		return errors.Join(e.Shutdown(shutdownCtx), shutdownTracing(shutdownCtx))
	})

	return g.Wait()
}
