package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/stockmanager/backend/docs"
	"github.com/stockmanager/backend/internal/alerts"
	"github.com/stockmanager/backend/internal/auth"
	"github.com/stockmanager/backend/internal/config"
	"github.com/stockmanager/backend/internal/db"
	apihttp "github.com/stockmanager/backend/internal/http"
	"github.com/stockmanager/backend/internal/http/handlers"
	rl "github.com/stockmanager/backend/internal/http/rate_limiter"
	"github.com/stockmanager/backend/internal/ledger"
	"github.com/stockmanager/backend/internal/logger"
	"github.com/stockmanager/backend/internal/pdf"
	"github.com/stockmanager/backend/internal/redissvc"
	"github.com/stockmanager/backend/internal/repo"
)

// @title Stock Manager API
// @version 1.0
// @description REST API for small-business inventory, sales and stock movements.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.New(cfg.App.Env)
	auth.Configure(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Minute)

	ctx := context.Background()

	rdb, err := redissvc.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to redis")
	}
	defer rdb.Close()

	database, err := db.Connect(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer database.Close()

	productRepo := repo.NewCachedProductRepository(repo.NewPostgresProductRepository(database), rdb)
	supplierRepo := repo.NewPostgresSupplierRepository(database)

	handlers.SetProductRepo(productRepo)
	handlers.SetSupplierRepo(supplierRepo)
	handlers.SetMovementRepo(repo.NewPostgresMovementRepository(database))
	handlers.SetSaleRepo(repo.NewPostgresSaleRepository(database))
	handlers.SetUserRepo(repo.NewPostgresUserRepository(database))
	handlers.SetIssueRepo(repo.NewPostgresIssueRepository(database))
	handlers.SetInvoiceRepo(repo.NewPostgresInvoiceRepository(database))
	handlers.SetCategoryRepo(repo.NewPostgresCategoryRepository(database))
	handlers.SetMetricsRepo(repo.NewPostgresMetricsRepository(database))
	handlers.SetRedis(rdb)

	alertService := alerts.NewService(cfg.SMTP, rdb)
	handlers.SetAlertService(alertService)

	ledgerService := ledger.NewService(
		repo.NewPostgresLedgerStore(database),
		productRepo,
		supplierRepo,
	).WithNotifier(alertService).WithCache(productRepo)
	handlers.SetLedgerService(ledgerService)

	handlers.SetRefreshStore(auth.NewRedisRefreshStore(rdb))
	handlers.SetInvoiceGenerator(pdf.NewInvoiceGenerator(cfg.App.Name))

	go rl.StartVisitorCleanupLoop()
	go alertService.StartDailySummary(24 * time.Hour)

	r := apihttp.NewRouter(cfg.App.ClientOrigin)
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("server running")
	if err := http.ListenAndServe(cfg.HTTP.Addr(), r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
