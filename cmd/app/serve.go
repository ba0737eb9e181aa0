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

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricedesk/configs"
	"pricedesk/internal/adapter"
	"pricedesk/internal/database"
	deliveryhttp "pricedesk/internal/delivery/http"
	"pricedesk/internal/domain"
	"pricedesk/internal/infra"
	"pricedesk/internal/repository"
	"pricedesk/internal/service"
	"pricedesk/internal/usecase"
	"pricedesk/pkg/log"
)

const (
	schemaTimeout   = 2 * time.Minute
	snapshotTimeout = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and ops API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg); err != nil {
			log.Error("pricedesk stopped with error", zap.Error(err))
			return err
		}
		return nil
	},
}

func serve(ctx context.Context, cfg *configs.Config) error {
	snapshots, closeStore, err := newSnapshotRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	resolver := service.NewItemResolver(nil)
	schemaSource := adapter.NewSteamSchemaClient(cfg.Schema.URL, cfg.Schema.SteamAPIKey, schemaTimeout)
	schemaService := service.NewSchemaService(schemaSource, resolver)

	var (
		backend domain.Backend
		stream  *adapter.EventStream
	)
	switch cfg.Backend.Kind {
	case configs.BackendRemote:
		remote := adapter.NewRemoteBackend(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout)
		if cfg.Backend.EventsURL != "" {
			stream = adapter.NewEventStream(cfg.Backend.EventsURL, cfg.Backend.APIKey, remote.Publish)
		}
		backend = remote
	default:
		backend = adapter.NewLocalBackend(resolver, snapshots)
	}

	backend.OnListings(func(listings []domain.Listing) {
		saveCtx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := snapshots.Save(saveCtx, listings); err != nil {
			log.Warn("failed to save listing snapshot", zap.Error(err))
		}
	})

	log.Info("starting pricedesk",
		zap.String("version", version),
		zap.String("env", cfg.Server.Env),
		zap.String("backend", backend.Kind()),
		zap.String("snapshot_store", cfg.Snapshot.Store),
	)

	// Schema and backend come up together; the UI needs both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loadCtx, cancel := context.WithTimeout(gctx, schemaTimeout)
		defer cancel()
		_, err := schemaService.Reload(loadCtx)
		return err
	})
	g.Go(func() error {
		initCtx, cancel := context.WithTimeout(gctx, cfg.Backend.Timeout)
		defer cancel()
		if err := backend.Init(initCtx); err != nil {
			return fmt.Errorf("failed to initialise %s backend: %w", backend.Kind(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if stream != nil {
		stream.Start(ctx)
		defer stream.Stop()
	}

	scheduler := infra.NewScheduler(schemaService, cfg.Schema.RefreshCron, schemaTimeout)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start schema scheduler: %w", err)
	}
	defer scheduler.Stop()

	templates, err := deliveryhttp.ParseTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	webHandler := deliveryhttp.NewWebHandler(
		templates,
		usecase.NewListingSync(backend),
		resolver,
		cfg.Marketplace.Host,
		cfg.Backend.Timeout,
	)
	deliveryhttp.SetupRoutes(e, webHandler)

	webSrv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	opsSrv := &http.Server{
		Addr: ":" + cfg.Server.OpsPort,
		Handler: deliveryhttp.NewOpsRouter(deliveryhttp.OpsConfig{
			Version:     version,
			BackendKind: backend.Kind(),
			Schema:      resolver,
			Refresher:   scheduler,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: schemaTimeout + 15*time.Second,
	}

	servers, sctx := errgroup.WithContext(ctx)
	for name, srv := range map[string]*http.Server{"web": webSrv, "ops": opsSrv} {
		name, srv := name, srv
		servers.Go(func() error {
			log.Info("listening", zap.String("server", name), zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}
	servers.Go(func() error {
		<-sctx.Done()
		log.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(webSrv.Shutdown(shutdownCtx), opsSrv.Shutdown(shutdownCtx))
	})

	if cfg.Server.OpenBrowser {
		openBrowser("http://localhost:" + cfg.Server.Port + "/home")
	}

	if err := servers.Wait(); err != nil {
		return err
	}
	log.Info("server exited gracefully")
	return nil
}

func newSnapshotRepository(ctx context.Context, cfg *configs.Config) (domain.SnapshotRepository, func(), error) {
	if cfg.Snapshot.Store != configs.SnapshotPostgres {
		return repository.NewFileSnapshotRepository(cfg.Snapshot.Path), func() {}, nil
	}

	pool, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewSnapshotRepository(pool), pool.Close, nil
}
