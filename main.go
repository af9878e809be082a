package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"torchlight-intake/config"
	"torchlight-intake/internal/archive"
	"torchlight-intake/internal/dispatcher"
	"torchlight-intake/internal/envHelper"
	"torchlight-intake/internal/logging"
	"torchlight-intake/internal/pdf"
	"torchlight-intake/internal/server"
	"torchlight-intake/internal/store"
	"torchlight-intake/internal/submission"
)

const engineHealthInterval = time.Minute

func main() {
	// Load environment variables
	envHelper.LoadEnv()
	cfg := config.Load()

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "torchlight-intake")
	if err != nil {
		log.Fatal("Error creating logger:", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := submission.Dependencies{}
	routerCfg := server.RouterConfig{Logger: logger}

	// Database
	var db *store.Store
	if cfg.Store.Configured() {
		dialect, err := store.ParseDialect(cfg.Store.Driver)
		if err != nil {
			logger.Fatal("invalid database configuration", zap.Error(err))
		}
		db, err = store.Open(cfg.Store.DataSourceName(), store.Options{
			Dialect: dialect,
			Table:   cfg.Store.Table,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("error opening database", zap.Error(err))
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.Ping(pingCtx); err != nil {
			// submissions still get exported while the database is down
			logger.Warn("database ping failed", zap.String("kind", store.KindOf(err).String()), zap.Error(err))
		} else {
			logger.Info("database pinged successfully", zap.String("driver", dialect.String()), zap.String("table", cfg.Store.Table))
		}
		cancel()

		deps.Store = submission.Configured[submission.Repository](db)
		routerCfg.Records = submission.Configured[server.Records](db)
	} else {
		logger.Warn("database not configured, submissions will not be saved")
	}

	// PDF export
	var exporter *pdf.Exporter
	if cfg.Export.Enabled {
		execPath := pdf.ResolveExecPath(cfg.Export.ChromePath, cfg.Export.ChromeFallbackPath)
		logger.Info("pdf export enabled", zap.String("exec_path", execPath))
		exporter = pdf.NewExporter(pdf.NewChromeEngine(execPath), pdf.Options{
			LaunchTimeout: cfg.Export.LaunchTimeout,
			RenderTimeout: cfg.Export.RenderTimeout,
			MaxConcurrent: cfg.Export.MaxConcurrent,
			Logger:        logger,
		})
		deps.Exporter = submission.Configured[submission.Exporter](exporter)

		healthy := &atomic.Bool{}
		routerCfg.PDFEngineHealthy = healthy
		go pdf.WatchEngineHealth(ctx, exporter, healthy, engineHealthInterval, logger)
	} else {
		logger.Warn("pdf export disabled")
	}

	// Queue and archive
	if cfg.Queue.Enabled() || cfg.Archive.Enabled() {
		sess, err := newAWSSession(cfg.AWS)
		if err != nil {
			logger.Fatal("error creating AWS session", zap.Error(err))
		}

		var arch *archive.Archive
		if cfg.Archive.Enabled() {
			arch = archive.New(s3.New(sess), cfg.Archive.Bucket, cfg.Archive.Prefix)
			routerCfg.Archive = submission.Configured[server.DocumentArchive](arch)
		}

		if cfg.Queue.Enabled() {
			sqsSvc := sqs.New(sess)
			deps.Notifier = submission.Configured[submission.Notifier](dispatcher.NewPublisher(sqsSvc, cfg.Queue.QueueURL))

			if arch != nil && db != nil && exporter != nil {
				startWorkers(ctx, cfg, sqsSvc, db, exporter, arch, logger)
			} else {
				logger.Warn("archive workers not started: they need the database, pdf export and AWS_BUCKET")
			}
		}
	}

	routerCfg.Service = submission.NewService(deps, submission.Options{
		PersistTimeout:  cfg.Store.WriteTimeout,
		ExportTimeout:   cfg.Export.SubmitTimeout,
		GenerateTimeout: cfg.Export.GenerateTimeout,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}

func newAWSSession(cfg config.AWSConfig) (*session.Session, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	return session.NewSession(awsCfg)
}

func startWorkers(ctx context.Context, cfg config.AppConfig, sqsSvc *sqs.SQS, db *store.Store, exporter *pdf.Exporter, arch *archive.Archive, logger *zap.Logger) {
	// Create a channel for communication between dispatcher and workers
	messageQueue := make(chan *sqs.Message, 10)

	go dispatcher.Dispatcher(ctx, sqsSvc, cfg.Queue, messageQueue, logger)
	go func() {
		err := dispatcher.RunPool(ctx, cfg.Worker.Count, messageQueue, func(id int) *dispatcher.Worker {
			return &dispatcher.Worker{
				ID:         id,
				SQS:        sqsSvc,
				QueueURL:   cfg.Queue.QueueURL,
				Records:    db,
				Exporter:   exporter,
				Archive:    arch,
				RetryDelay: 30,
				Logger:     logger,
			}
		})
		if err != nil {
			logger.Error("worker pool stopped", zap.Error(err))
		}
	}()
}
