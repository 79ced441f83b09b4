package handlers

import (
	"github.com/redis/go-redis/v9"

	"github.com/stockmanager/backend/internal/alerts"
	"github.com/stockmanager/backend/internal/auth"
	"github.com/stockmanager/backend/internal/ledger"
	"github.com/stockmanager/backend/internal/pdf"
	"github.com/stockmanager/backend/internal/repo"
)

var (
	productRepo  repo.ProductRepository
	supplierRepo repo.SupplierRepository
	movementRepo repo.MovementRepository
	saleRepo     repo.SaleRepository
	userRepo     repo.UserRepository
	issueRepo    repo.IssueRepository
	invoiceRepo  repo.InvoiceRepository
	categoryRepo repo.CategoryRepository
	metricsRepo  repo.MetricsRepository

	ledgerService    *ledger.Service
	refreshStore     auth.RefreshStore
	alertService     *alerts.Service
	invoiceGenerator *pdf.InvoiceGenerator

	Rdb *redis.Client
)

func SetProductRepo(r repo.ProductRepository)   { productRepo = r }
func SetSupplierRepo(r repo.SupplierRepository) { supplierRepo = r }
func SetMovementRepo(r repo.MovementRepository) { movementRepo = r }
func SetSaleRepo(r repo.SaleRepository)         { saleRepo = r }
func SetUserRepo(r repo.UserRepository)         { userRepo = r }
func SetIssueRepo(r repo.IssueRepository)       { issueRepo = r }
func SetInvoiceRepo(r repo.InvoiceRepository)   { invoiceRepo = r }
func SetCategoryRepo(r repo.CategoryRepository) { categoryRepo = r }
func SetMetricsRepo(r repo.MetricsRepository)   { metricsRepo = r }

func SetLedgerService(s *ledger.Service)          { ledgerService = s }
func SetRefreshStore(s auth.RefreshStore)         { refreshStore = s }
func SetAlertService(s *alerts.Service)           { alertService = s }
func SetInvoiceGenerator(g *pdf.InvoiceGenerator) { invoiceGenerator = g }

func SetRedis(client *redis.Client) { Rdb = client }
