package main // Entry point of the import API and queue consumer

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-reconciliation/internal/config"
	"github.com/iliyamo/booking-reconciliation/internal/database"
	"github.com/iliyamo/booking-reconciliation/internal/handler"
	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/lock"
	"github.com/iliyamo/booking-reconciliation/internal/middleware"
	"github.com/iliyamo/booking-reconciliation/internal/queue"
	"github.com/iliyamo/booking-reconciliation/internal/repository"
	"github.com/iliyamo/booking-reconciliation/internal/router"
	"github.com/iliyamo/booking-reconciliation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env loaded: %v", err)
	}
	cfg := config.Load()
	importCfg := config.LoadImportConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if importCfg.MigrationsPath != "" {
		if err := database.RunMigrations(db, importCfg.MigrationsPath); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		log.Printf("migrations applied from %s", importCfg.MigrationsPath)
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	svc := &importer.Service{
		Store:         repository.NewStore(db),
		Manager:       importer.NewManager(importer.Options{FeeKeywords: importCfg.FeeKeywords}),
		Locker:        lock.New(rdb, importCfg),
		Publisher:     &service.Publisher{URL: cfg.RabbitURL, Queue: importCfg.ImportedQueue},
		DefaultSource: importCfg.Source,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ConsumerOn {
		consumer := &queue.Consumer{
			URL:      cfg.RabbitURL,
			Queue:    importCfg.ImportQueue,
			Importer: svc,
			Audit:    queue.NewAuditLog(cfg.AuditDir),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("import-consumer: stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, db)
	router.RegisterImports(e, handler.NewImportHandler(svc, repository.NewBookingRepo(db)), router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewResponseCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
