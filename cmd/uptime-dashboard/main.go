package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application
	applicationPort "github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/internal/application/usecase"

	// Domain
	"github.com/dreschagin/uptime-dashboard/internal/domain/repository"
	"github.com/dreschagin/uptime-dashboard/internal/domain/service"

	// Infrastructure
	"github.com/dreschagin/uptime-dashboard/internal/infrastructure/backend"
	redisCache "github.com/dreschagin/uptime-dashboard/internal/infrastructure/cache/redis"
	natsInfra "github.com/dreschagin/uptime-dashboard/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/uptime-dashboard/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/uptime-dashboard/internal/infrastructure/observability/cloudwatch"
	"github.com/dreschagin/uptime-dashboard/internal/infrastructure/observability/metrics"
	dynamodbRepo "github.com/dreschagin/uptime-dashboard/internal/infrastructure/persistence/dynamodb"
	"github.com/dreschagin/uptime-dashboard/internal/infrastructure/persistence/postgres"
	s3storage "github.com/dreschagin/uptime-dashboard/internal/infrastructure/storage/s3"

	// Interfaces
	httpInterface "github.com/dreschagin/uptime-dashboard/internal/interfaces/http"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/handler"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/uptime-dashboard/pkg/config"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Uptime Dashboard", "backend", cfg.Backend.BaseURL)

	catalog, err := config.LoadSiteCatalog(cfg.Dashboard.SitesFile)
	if err != nil {
		log.Error("Failed to load site catalog", err, "path", cfg.Dashboard.SitesFile)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	readiness := map[string]handler.ReadinessCheck{}

	// 3. Prometheus
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// 4. CloudWatch
	var metricsPublisher *cloudwatch.MetricsPublisher
	if cfg.CloudWatch.MetricsEnabled {
		metricsPublisher, err = cloudwatch.NewMetricsPublisher(ctx, cloudwatch.MetricsPublisherConfig{
			Namespace:         cfg.CloudWatch.MetricsNamespace,
			Region:            cfg.CloudWatch.Region,
			Endpoint:          cfg.CloudWatch.Endpoint,
			AccessKeyID:       cfg.CloudWatch.AccessKeyID,
			SecretAccessKey:   cfg.CloudWatch.SecretAccessKey,
			DefaultDimensions: cfg.CloudWatch.MetricsDimensions,
			BufferSize:        cfg.CloudWatch.MetricsBufferSize,
			FlushInterval:     cfg.CloudWatch.MetricsFlushInterval,
			StorageResolution: cfg.CloudWatch.MetricsStorageResolution,
		}, log)
		if err != nil {
			log.Error("Failed to initialize CloudWatch metrics publisher", err)
			os.Exit(1)
		}
		log.Info("CloudWatch metrics publisher initialized", "namespace", cfg.CloudWatch.MetricsNamespace)
	} else {
		log.Warn("CloudWatch metrics publishing is disabled")
	}

	var logsPublisher *cloudwatch.LogsPublisher
	if cfg.CloudWatch.LogsEnabled {
		logsPublisher, err = cloudwatch.NewLogsPublisher(ctx, cloudwatch.LogsPublisherConfig{
			LogGroupName:    cfg.CloudWatch.LogGroupName,
			LogStreamName:   cfg.CloudWatch.LogStreamName,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			BufferSize:      cfg.CloudWatch.LogsBufferSize,
			FlushInterval:   cfg.CloudWatch.LogsFlushInterval,
			AutoCreate:      true,
		})
		if err != nil {
			log.Error("Failed to initialize CloudWatch logs publisher", err)
			os.Exit(1)
		}
		log.SetLogPublisher(logsPublisher)
		log.Info("CloudWatch logs publisher initialized", "group", cfg.CloudWatch.LogGroupName)
	} else {
		log.Warn("CloudWatch logs publishing is disabled")
	}

	// 5. NATS
	var eventPublisher applicationPort.EventPublisher
	if cfg.NATS.Enabled {
		publisherImpl, initErr := natsInfra.NewNATSPublisher(cfg.NATS.URL, log)
		if initErr != nil {
			log.Warn("Failed to connect to NATS, continuing without event publishing", "error", initErr.Error())
		} else {
			eventPublisher = publisherImpl
			defer eventPublisher.Close()
			log.Info("NATS event publisher initialized", "url", cfg.NATS.URL)
		}
	} else {
		log.Warn("NATS event publishing is disabled")
	}

	// 6. Backend and history cache
	backendClient, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	if err != nil {
		log.Error("Invalid backend configuration", err)
		os.Exit(1)
	}
	readiness["backend"] = func(ctx context.Context) error {
		_, err := backendClient.FetchHealth(ctx)
		return err
	}

	var history repository.HistoryRepository = backendClient
	if cfg.Redis.Enabled {
		cache, initErr := redisCache.NewRedisCache(redisCache.Options{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			TTL:          cfg.Redis.TTL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if initErr != nil {
			log.Warn("Failed to connect to Redis, history cache disabled", "error", initErr.Error())
		} else {
			defer cache.Close()
			history = usecase.NewCachedHistorySource(backendClient, cache, log)
			readiness["redis"] = cache.Ping
			log.Info("Redis history cache enabled", "ttl", cfg.Redis.TTL.String())
		}
	}

	// 7. Incident archive
	var archiveUC *usecase.ArchiveIncidentsUseCase
	var listArchiveUC *usecase.ListArchivedIncidentsUseCase
	if cfg.Database.Enabled {
		db, openErr := sql.Open("postgres", cfg.Database.DSN())
		if openErr != nil {
			log.Error("Failed to open database", openErr)
			os.Exit(1)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

		archive := postgres.NewPostgresIncidentArchive(db)
		schemaCtx, schemaCancel := context.WithTimeout(ctx, 10*time.Second)
		err = archive.EnsureSchema(schemaCtx)
		schemaCancel()
		if err != nil {
			log.Error("Failed to prepare incident archive", err)
			os.Exit(1)
		}

		archiveUC = usecase.NewArchiveIncidentsUseCase(archive, log)
		listArchiveUC = usecase.NewListArchivedIncidentsUseCase(archive, usecase.ListArchivedIncidentsConfig{})
		readiness["postgres"] = archive.Ping
		log.Info("Incident archive connected", "host", cfg.Database.Host)
	} else {
		log.Warn("Incident archive is disabled")
	}

	// 8. Reports
	var reportStorage applicationPort.ReportStorage
	if cfg.S3.Enabled {
		storageImpl, initErr := s3storage.NewReportStorage(ctx, s3storage.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
			URLMode:         s3storage.URLMode(cfg.S3.URLMode),
			PresignedTTL:    cfg.S3.PresignedTTL,
		})
		if initErr != nil {
			log.Error("Failed to initialize report storage", initErr)
			os.Exit(1)
		}
		reportStorage = storageImpl
	} else {
		log.Warn("S3 report storage is disabled")
	}

	var reportIndex applicationPort.ReportMetadataRepository
	if cfg.Dynamo.Enabled {
		repoImpl, initErr := dynamodbRepo.NewReportMetadataRepository(ctx, dynamodbRepo.Config{
			TableName:       cfg.Dynamo.TableReports,
			Region:          cfg.Dynamo.Region,
			Endpoint:        cfg.Dynamo.Endpoint,
			AccessKeyID:     cfg.Dynamo.AccessKeyID,
			SecretAccessKey: cfg.Dynamo.SecretAccessKey,
			StrongReads:     cfg.Dynamo.StrongReads,
		})
		if initErr != nil {
			log.Error("Failed to initialize report index", initErr)
			os.Exit(1)
		}
		reportIndex = repoImpl
		log.Info("Report index initialized", "table", cfg.Dynamo.TableReports)
	} else if reportStorage != nil {
		log.Warn("DynamoDB report index is disabled, listing reports from S3")
	}

	// 9. Use cases
	hub := wsInfra.NewHub(log)
	appMetrics.RegisterClientGauge(hub.ClientCount)

	hooks := usecase.LoadDashboardHooks{
		Archive:  archiveUC,
		Events:   eventPublisher,
		Notifier: hub,
		Recorder: appMetrics,
	}
	if metricsPublisher != nil {
		hooks.Metrics = metricsPublisher
	}

	builder := usecase.NewDashboardViewBuilder(service.NewIncidentRanker(cfg.Dashboard.AlertLimit))
	sessions := session.NewStore(cfg.Dashboard.SessionIdleTTL)

	loadUC := usecase.NewLoadDashboardUseCase(history, builder, hooks, log)
	viewUC := usecase.NewGetDashboardViewUseCase(builder)
	filtersUC := usecase.NewUpdateAlertFiltersUseCase(builder, hub, log)
	correlateUC := usecase.NewCorrelateSegmentUseCase(builder, cfg.Dashboard.HighlightTTL, eventPublisher, hub, log)
	// the status wall always polls live
	statusWallUC := usecase.NewRefreshStatusWallUseCase(backendClient, eventPublisher, hub, log)

	exportUC := usecase.NewExportDashboardReportUseCase(reportStorage, reportIndex, builder, usecase.ExportDashboardReportConfig{
		KeyPrefix:     cfg.S3.KeyPrefix,
		RetentionDays: cfg.Reports.RetentionDays,
	}, log)
	listReportsUC := usecase.NewListDashboardReportsUseCase(reportStorage, reportIndex, usecase.ListDashboardReportsConfig{
		KeyPrefix:           cfg.S3.KeyPrefix,
		FallbackToS3OnError: cfg.Reports.MetadataFallbackToS3,
	}, log)

	// 10. HTTP
	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	handlers := httpInterface.Handlers{
		Dashboard:  handler.NewDashboardAPIHandler(loadUC, viewUC, filtersUC, correlateUC, log),
		StatusWall: handler.NewStatusWallHandler(statusWallUC),
		Sites:      handler.NewSitesHandler(catalog),
		WebSocket:  handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, log),
		Auth:       handler.NewAuthAPIHandler(authConfig, log, appMetrics.AuthFailures.Inc),
		Health:     handler.NewHealthHandler(readiness, 3*time.Second),
	}
	if reportStorage != nil {
		handlers.Reports = handler.NewReportAPIHandler(exportUC, listReportsUC, log)
	}
	if listArchiveUC != nil {
		handlers.Archive = handler.NewArchiveAPIHandler(listArchiveUC, log)
	}

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx)
	}

	router := httpInterface.NewRouter(handlers, sessions, limiter, appMetrics, registry, cfg.Security, log)

	// 11. Background loops
	go hub.Run(ctx)
	go sessions.Run(ctx, time.Minute)
	go statusWallUC.Run(ctx, cfg.Backend.StatusPollInterval)
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				appMetrics.Sessions.Set(float64(sessions.Len()))
			case <-ctx.Done():
				return
			}
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 12. Graceful shutdown
	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}
	cancel()

	if metricsPublisher != nil {
		if err := metricsPublisher.Close(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch metrics", err)
		}
	}

	log.Info("Server stopped gracefully")

	if logsPublisher != nil {
		log.SetLogPublisher(nil)
		if err := logsPublisher.Close(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush CloudWatch logs: %v\n", err)
		}
	}
}
