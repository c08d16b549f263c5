package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cafe-media/internal/broker"
	kafka_impl "cafe-media/internal/broker/kafka"
	"cafe-media/internal/config"
	photo_h "cafe-media/internal/http-server/handler/photo"
	"cafe-media/internal/http-server/router"
	minio_repo "cafe-media/internal/repository/photo/cloud/minio"
	postgres_repo "cafe-media/internal/repository/photo/db/postgres"
	memory_repo "cafe-media/internal/repository/photo/memory"
	media_uc "cafe-media/internal/usecase/media"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// App is the development backend: the photo REST API over MinIO, Postgres
// (or memory) and Kafka (or the log).
type App struct {
	cfg       *config.Config
	server    *http.Server
	logger    *zlog.Zerolog
	db        *dbpg.DB
	publisher broker.Publisher
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	fileRepo, err := minio_repo.NewMinIORepository(cfg, retries, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	var publisher broker.Publisher = broker.NewLogPublisher(logger)
	if cfg.UseKafka() {
		publisher = kafka_impl.NewProducerClient(cfg)
	}

	var (
		db           *dbpg.DB
		mediaUsecase *media_uc.MediaUsecase
	)

	if cfg.UsePostgres() {
		dbOpts := &dbpg.Options{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}

		db, err = dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		photoRepo := postgres_repo.NewPhotosRepository(db, retries)
		mediaUsecase = media_uc.NewMediaUsecase(photoRepo, fileRepo, publisher, logger, cfg.Minio.PresignExpiry, cfg.Upload.MaxUploadSize)
	} else {
		logger.Warn().Msg("No database configured, photos are kept in memory")
		photoRepo := memory_repo.NewPhotosRepository()
		mediaUsecase = media_uc.NewMediaUsecase(photoRepo, fileRepo, publisher, logger, cfg.Minio.PresignExpiry, cfg.Upload.MaxUploadSize)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      NewHandler(mediaUsecase, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:       cfg,
		server:    server,
		logger:    logger,
		db:        db,
		publisher: publisher,
	}, nil
}

// NewHandler wires the REST API around an already built media usecase.
func NewHandler(mediaUsecase *media_uc.MediaUsecase, logger *zlog.Zerolog) http.Handler {
	h := &router.Handler{
		PhotoHandler: photo_h.NewPhotoHandler(mediaUsecase, logger),
	}
	return router.SetupRouter(h, logger)
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.close()
		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) close() {
	if a.db != nil && a.db.Master != nil {
		if err := a.db.Master.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database")
		}
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close event publisher")
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
