package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/dhis2sync"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/qamisdata/inspections_backend/qamissync"
	"github.com/qamisdata/inspections_backend/scheduler"
	"github.com/qamisdata/inspections_backend/schoolimport"
	"github.com/qamisdata/inspections_backend/utils"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before dependencies are ready; app endpoints
	// return 503 until the database is connected.
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	r.Use(cors.New(corsConfig))

	qamisClient := qamissync.NewClient(config.GetQamisConfig())
	worker := qamissync.NewWorker(qamisClient)
	elements := dhis2sync.LoadElementMapFromEnv()
	exporter := dhis2sync.NewExporter(dhis2sync.NewClient(config.GetDHIS2Config()), elements)
	sched := scheduler.New(worker, exporter)

	api := r.Group("/api")
	{
		api.GET("/inspections", qamissync.ListInspectionsHandler())
		api.GET("/inspections/:name", qamissync.GetInspectionHandler())
		api.POST("/inspections/sync", qamissync.TriggerIngestionHandler(worker))
		api.POST("/inspections/export", dhis2sync.TriggerExportHandler(exporter))
		api.POST("/inspections/:name/export", dhis2sync.ExportInspectionHandler(exporter))
		api.POST("/schools/upload", schoolimport.UploadSchoolsHandler())
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Process-now pass: anything approved but unexported when the last
	// instance stopped is pushed before the first cron tick.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Minute)
	go func() {
		defer cancelStartup()
		if err := exporter.RunChecklistExportSweep(startupCtx); err != nil {
			config.LogError(logger, "main", "main", "startup export sweep failed", nil, err)
		}
	}()

	if err := sched.Start(); err != nil {
		logger.WithFields(logrus.Fields{"field": "scheduler"}).Fatal("failed to start scheduler: " + err.Error())
	}

	logger.WithFields(logrus.Fields{"port": port}).Info("integration service started")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop the scheduler first so no new runs start while draining.
	cancelStartup()
	stopCtx := sched.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.WithFields(logrus.Fields{"field": "scheduler"}).Warn("scheduled runs still in flight at shutdown deadline")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
