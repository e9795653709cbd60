package routes

import (
	"context"
	"log"
	"time"

	_ "mis_invoicing/docs"
	"mis_invoicing/internal/adapter/http/handlers"
	"mis_invoicing/internal/adapter/persistence/repository"
	"mis_invoicing/internal/adapter/persistence/sqlstore"
	"mis_invoicing/internal/config"
	"mis_invoicing/internal/infrastructure/database"
	"mis_invoicing/internal/infrastructure/events"
	"mis_invoicing/internal/infrastructure/locking"
	"mis_invoicing/internal/infrastructure/payments"
	"mis_invoicing/internal/usecase"
	"mis_invoicing/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const startupTimeout = 30 * time.Second

// Run will start the server
func Run() {
	cfg := config.Load()

	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes(cfg)

	err := router.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

// stores groups the repositories of the selected storage backend.
type stores struct {
	clients     interfaces.IClientRepository
	estimates   interfaces.IEstimateRepository
	invoices    interfaces.IInvoiceRepository
	payments    interfaces.IPaymentRepository
	conversions interfaces.IConversionStore
}

func openStores(ctx context.Context, cfg config.Config) stores {
	switch cfg.StorageDriver {
	case config.StoragePostgres, config.StorageSQLite:
		db, err := database.ConnectSQL(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to %s: %v", cfg.StorageDriver, err)
		}
		if err := sqlstore.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}
		return stores{
			clients:     sqlstore.NewClientRepository(db),
			estimates:   sqlstore.NewEstimateRepository(db),
			invoices:    sqlstore.NewInvoiceRepository(db),
			payments:    sqlstore.NewPaymentRepository(db),
			conversions: sqlstore.NewConversionStore(db),
		}
	default:
		ddb, err := database.ConnectDynamoDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to DynamoDB: %v", err)
		}
		if cfg.CreateTables {
			if err := database.EnsureTables(ctx, ddb, database.InvoicingTables(cfg)); err != nil {
				log.Fatalf("Failed to create DynamoDB tables: %v", err)
			}
		}
		return stores{
			clients:     repository.NewClientDynamoRepository(ddb, cfg.ClientsTable),
			estimates:   repository.NewEstimateDynamoRepository(ddb, cfg.EstimatesTable),
			invoices:    repository.NewInvoiceDynamoRepository(ddb, cfg.InvoicesTable),
			payments:    repository.NewPaymentDynamoRepository(ddb, cfg.PaymentsTable),
			conversions: repository.NewConversionDynamoStore(ddb, cfg.EstimatesTable, cfg.InvoicesTable),
		}
	}
}

func newInvoiceLocker(ctx context.Context, cfg config.Config) interfaces.IInvoiceLocker {
	if cfg.RedisAddr == "" {
		return locking.NewKeyedLocker()
	}
	rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Printf("[routes] redis unavailable, falling back to in-process lock addr=%s err=%v", cfg.RedisAddr, err)
		return locking.NewKeyedLocker()
	}
	return locking.NewRedisLocker(rdb, cfg.LockTTL)
}

func newEventPublisher(cfg config.Config) interfaces.IInvoiceEventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.LogPublisher{}
	}
	p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.InvoiceEventsTopic)
	if err != nil {
		log.Printf("[routes] kafka unavailable, logging invoice events instead err=%v", err)
		return events.LogPublisher{}
	}
	return p
}

func newPaymentGateway(cfg config.Config) interfaces.IPaymentGateway {
	gw, err := payments.NewMercadoPagoGateway(payments.MercadoPagoOptions{
		AccessToken:     cfg.MercadoPagoAccessToken,
		MockMode:        cfg.PaymentGatewayMock,
		TestPayerEmail:  cfg.MercadoPagoTestPayerEmail,
		TestPayerUserID: cfg.MercadoPagoTestPayerUserID,
	})
	if err != nil {
		log.Printf("Mercado Pago gateway not configured: %v", err)
		return nil
	}
	return gw
}

func getRoutes(cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	policy, err := usecase.ParseDeletePolicy(cfg.DeletePolicy)
	if err != nil {
		log.Fatalf("Invalid DELETE_POLICY: %v", err)
	}

	s := openStores(ctx, cfg)
	numbers := usecase.NewTimestampNumberGenerator()
	reconciler := usecase.NewReconciler(s.invoices, s.payments, newInvoiceLocker(ctx, cfg), newEventPublisher(cfg))

	clientUseCase := usecase.NewClientUseCase(s.clients, s.estimates, s.invoices, s.payments, policy)
	estimateUseCase := usecase.NewEstimateUseCase(s.estimates, s.clients, s.invoices, s.payments, s.conversions, numbers, policy)
	invoiceUseCase := usecase.NewInvoiceUseCase(s.invoices, s.clients, s.payments, reconciler, numbers, policy)
	paymentUseCase := usecase.NewPaymentUseCase(s.payments, s.invoices, reconciler, newPaymentGateway(cfg))
	dashboardUseCase := usecase.NewDashboardUseCase(s.clients, s.estimates, s.invoices, s.payments)

	log.Printf("[routes] storage=%s delete_policy=%s redis=%t kafka=%t", cfg.StorageDriver, policy, cfg.RedisAddr != "", len(cfg.KafkaBrokers) > 0)

	// Public routes
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addClientRoutes(v1, handlers.NewClientHandler(clientUseCase))
	addEstimateRoutes(v1, handlers.NewEstimateHandler(estimateUseCase))
	addInvoiceRoutes(v1, handlers.NewInvoiceHandler(invoiceUseCase))
	addPaymentRoutes(v1, handlers.NewPaymentHandler(paymentUseCase))
	addDashboardRoutes(v1, handlers.NewDashboardHandler(dashboardUseCase))
}

func setMiddlewares() {
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
