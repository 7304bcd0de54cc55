package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YusovID/service-requests/internal/config"
	"github.com/YusovID/service-requests/internal/repository/postgres"
	"github.com/YusovID/service-requests/internal/service"
	myhttp "github.com/YusovID/service-requests/internal/transport/http"
	"github.com/YusovID/service-requests/internal/workflow/camunda"
	"github.com/YusovID/service-requests/pkg/logger/sl"
	"github.com/YusovID/service-requests/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting service-requests", slog.String("env", cfg.Env))

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	requests := postgres.NewRequestRepository(db.DB(), log)
	users := postgres.NewUserRepository(db.DB(), log)
	groups := postgres.NewModeratorGroupRepository(db.DB(), log)
	catalog := postgres.NewCatalogRepository(db.DB(), log)
	repairs := postgres.NewRepairRepository(db.DB(), log)

	var notifier service.WorkflowNotifier
	if cfg.Workflow.Enabled {
		notifier = camunda.NewClient(cfg.Workflow, log)
		log.Info("workflow engine notifications enabled", slog.String("base_url", cfg.Workflow.BaseURL))
	} else {
		log.Warn("workflow engine notifications disabled")
	}

	workflow := service.NewRequestWorkflowService(
		db.DB(),
		db.DB(),
		log,
		requests,
		requests,
		users,
		service.NewModeratorGroupResolver(groups, log),
		notifier,
		cfg.Workflow.Timeout,
		cfg.Pagination,
	)
	defer workflow.Wait()

	catalogService := service.NewCatalogService(db.DB(), log, catalog, groups, users, cfg.Catalog.CacheTTL)

	repairService := service.NewRepairService(db.DB(), db.DB(), log, repairs, cfg.Pagination)

	srv := myhttp.NewServer(log, workflow, catalogService, repairService)
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errChan := make(chan error, 1)

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- fmt.Errorf("error listening and serving: %w", err)
	}
}
