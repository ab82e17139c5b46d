package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-outlets-api/internal/application/inventory"
	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/application/sales"
	"github.com/jhoicas/stock-outlets-api/internal/domain/repository"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/events"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/idempotency"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-outlets-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/stock-outlets-api/internal/interfaces/http"
	"github.com/jhoicas/stock-outlets-api/migrations"
	"github.com/jhoicas/stock-outlets-api/pkg/config"
	"github.com/jhoicas/stock-outlets-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// backend transacciones + repositorios de lectura del driver elegido.
type backend struct {
	inventoryTx inventory.TxRunner
	salesTx     sales.SalesTxRunner
	ledger      repository.LedgerRepository
	catalog     repository.CatalogRepository
	intakes     repository.IntakeRepository
	requests    repository.StockRequestRepository
	dispatches  repository.DispatchRepository
	sales       repository.SaleRepository
	revenue     repository.RevenueRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	tp, err := metrics.InitTracer(ctx, cfg.Tracing, cfg.App.Name, log.Component("tracing"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("cierre del tracer")
			}
		}()
	}

	be, err := openBackend(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer be.close()

	// Colaboradores opcionales
	var objectStorage ports.ObjectStorage
	if cfg.Storage.Driver == "gcs" {
		gcs, err := storage.NewGCS(ctx, cfg.Storage, log.Component("storage"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Cloud Storage")
		}
		defer closeQuietly(log, "storage", gcs)
		objectStorage = gcs
	}

	var publisher ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka, log.Component("events"))
		defer closeQuietly(log, "kafka", kp)
		publisher = kp
	} else {
		publisher = events.NewLogPublisher(log.Component("events"))
	}

	deps := httpRouter.RouterDeps{JWTSecret: cfg.JWT.Secret}
	if cfg.Redis.Addr != "" {
		store, err := idempotency.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer closeQuietly(log, "redis", store)
		deps.Idempotency = store
	}

	notes := infrapdf.NewDeliveryNoteGenerator(cfg.App.Name)
	ucLog := log.Zerolog()
	deps.IntakeUC = inventory.NewIntakeUseCase(be.inventoryTx, be.intakes, publisher, ucLog)
	deps.RequestUC = inventory.NewRequestUseCase(be.inventoryTx, be.requests, publisher, ucLog)
	deps.DispatchUC = inventory.NewDispatchUseCase(be.inventoryTx, be.dispatches, be.catalog, objectStorage, notes, publisher, ucLog)
	deps.StockUC = inventory.NewStockQueryUseCase(be.ledger, be.catalog)
	deps.ReplenishmentUC = inventory.NewReplenishmentUseCase(be.ledger, be.catalog, be.requests, be.dispatches)
	deps.SaleUC = sales.NewSaleUseCase(be.salesTx, be.sales, be.revenue, objectStorage, publisher, ucLog)
	deps.ProductUC = sales.NewProductQueryUseCase(be.catalog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB << 20,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	if tp != nil {
		app.Use(httpRouter.TracingMiddleware())
	}
	if cfg.Metrics.Enabled {
		app.Use(httpRouter.MetricsMiddleware())
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Outlets API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownWait)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openBackend abre PostgreSQL (con migraciones goose si AutoMigrate) o el store en memoria.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if cfg.Store.Driver == "memory" {
		store := memory.NewStore()
		if cfg.Store.CatalogFile != "" {
			if err := store.LoadCatalogFile(cfg.Store.CatalogFile); err != nil {
				return nil, err
			}
		}
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		return &backend{
			inventoryTx: store,
			salesTx:     store,
			ledger:      store.Ledger(),
			catalog:     store.Catalog(),
			intakes:     store.Intakes(),
			requests:    store.Requests(),
			dispatches:  store.Dispatches(),
			sales:       store.Sales(),
			revenue:     store.Revenue(),
			close:       func() {},
		}, nil
	}

	if cfg.Store.AutoMigrate {
		if err := migrations.Up(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool, cfg.Ledger, log)
	return &backend{
		inventoryTx: txRunner,
		salesTx:     txRunner,
		ledger:      postgres.NewLedgerRepository(pool),
		catalog:     postgres.NewCatalogRepository(pool),
		intakes:     postgres.NewIntakeRepository(pool),
		requests:    postgres.NewStockRequestRepository(pool),
		dispatches:  postgres.NewDispatchRepository(pool),
		sales:       postgres.NewSaleRepository(pool),
		revenue:     postgres.NewRevenueRepository(pool),
		close:       pool.Close,
	}, nil
}

func closeQuietly(log *logger.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("resource", name).Msg("cierre de recurso")
	}
}
