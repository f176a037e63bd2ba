package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/orderdetail"
	"github.com/jhoicas/stock-engine/internal/application/validation"
	"github.com/jhoicas/stock-engine/internal/infrastructure/audit"
	"github.com/jhoicas/stock-engine/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-engine/internal/interfaces/http"
	"github.com/jhoicas/stock-engine/internal/worker"
	"github.com/jhoicas/stock-engine/pkg/config"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	// Auditoría: Redis si está configurado, si no solo log.
	var auditSink inventory.AuditSink = audit.NewLogSink(log)
	if cfg.Redis.URL != "" {
		rdb, err := audit.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, auditoría solo a log")
		} else {
			defer rdb.Close()
			auditSink = audit.NewRedisSink(rdb, cfg.Redis.AuditQueue)
		}
	}

	stockRepo := postgres.NewWarehouseStockRepository(pool)
	ledgerRepo := postgres.NewStockLedgerRepository(pool)
	alertRepo := postgres.NewLowStockAlertRepository(pool)
	transferRepo := postgres.NewStockTransferRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	orderDetailRepo := postgres.NewOrderDetailRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	alertSvc := alert.NewService(alertRepo, stockRepo, productRepo, auditSink, alert.Config{
		DefaultThreshold: cfg.Inventory.DefaultLowStockThreshold,
		CatalogPageSize:  cfg.Inventory.CatalogPageSize,
	}, log)
	inventorySvc := inventory.NewService(txRunner, stockRepo, ledgerRepo, transferRepo, productRepo, warehouseRepo, alertSvc, auditSink, log)
	validationSvc := validation.NewService(stockRepo, log)
	binder := orderdetail.NewBinder(txRunner, inventorySvc, validationSvc, alertSvc, auditSink,
		orderRepo, orderDetailRepo, productRepo, warehouseRepo, supplierRepo, stockRepo, log)

	var sweeperDone <-chan struct{}
	if cfg.Inventory.AlertSweepEnabled {
		sweeperDone = worker.StartAlertSweeper(ctx, worker.AlertSweeperConfig{
			Alerts:   alertSvc,
			Interval: cfg.Inventory.AlertSweepInterval,
			Log:      log,
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.HTTP.SwaggerFile,
		Path:     "docs",
		Title:    "Stock Engine API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory:  inventorySvc,
		Validation: validationSvc,
		Alerts:     alertSvc,
		Binder:     binder,
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	if sweeperDone != nil {
		<-sweeperDone
	}

	log.Info().Msg("aplicación detenida")
}
