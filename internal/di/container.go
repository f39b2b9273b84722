// Package di wires the application's repositories, services, handlers and
// jobs into a single container.
package di

import (
	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/config"
	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/modules/accounts"
	"github.com/greenmangroup/options-tracker/internal/modules/cash_flows"
	"github.com/greenmangroup/options-tracker/internal/modules/commissions"
	"github.com/greenmangroup/options-tracker/internal/modules/cost_basis"
	"github.com/greenmangroup/options-tracker/internal/modules/imports"
	"github.com/greenmangroup/options-tracker/internal/modules/reports"
	"github.com/greenmangroup/options-tracker/internal/modules/tickers"
	"github.com/greenmangroup/options-tracker/internal/modules/trading"
	"github.com/greenmangroup/options-tracker/internal/reliability"
)

// Container holds all application dependencies. It is built once at startup
// and handed to the server and scheduler.
type Container struct {
	DB *database.DB

	AccountsRepo    *accounts.Repository
	AccountsHandler *accounts.Handler

	TickersRepo    *tickers.Repository
	TickersService *tickers.Service
	TickersHandler *tickers.Handler

	CommissionsRepo    *commissions.Repository
	Cascade            *commissions.Cascade
	CommissionsHandler *commissions.Handler

	CostBasisRepo    *cost_basis.Repository
	CostBasisService *cost_basis.Service
	CostBasisHandler *cost_basis.Handler

	CashFlowsRepo    *cash_flows.Repository
	CashFlowsHandler *cash_flows.Handler

	TradesRepo     *trading.Repository
	TradingService *trading.Service
	TradingHandler *trading.Handler

	ReportsService *reports.Service
	ReportsHandler *reports.Handler

	ImportsService *imports.Service
	ImportsHandler *imports.Handler

	BackupService *reliability.BackupService
	S3Client      *reliability.S3Client

	ExpireJob       *trading.ExpireJob
	RefreshNamesJob *tickers.RefreshNamesJob
	BackupJob       *reliability.BackupJob
}

// New builds the full dependency graph
func New(cfg *config.Config, db *database.DB, log zerolog.Logger) (*Container, error) {
	c := &Container{DB: db}

	c.AccountsRepo = accounts.NewRepository(db, log)
	c.AccountsHandler = accounts.NewHandler(c.AccountsRepo, log)

	c.TickersRepo = tickers.NewRepository(db, log)
	nameClient := tickers.NewAlphaVantageClient(cfg.AlphaVantageAPIKey, log)
	c.TickersService = tickers.NewService(c.TickersRepo, nameClient, log)
	c.TickersHandler = tickers.NewHandler(c.TickersRepo, c.TickersService, nameClient, log)

	c.CommissionsRepo = commissions.NewRepository(db, log)
	c.CostBasisRepo = cost_basis.NewRepository(db, log)
	c.CashFlowsRepo = cash_flows.NewRepository(db, log)
	c.TradesRepo = trading.NewRepository(db, log)

	c.TradingService = trading.NewService(db, c.TradesRepo, c.CostBasisRepo,
		c.CashFlowsRepo, c.TickersRepo, c.CommissionsRepo, log)
	c.TradingHandler = trading.NewHandler(c.TradingService, c.TradesRepo, log)

	c.Cascade = commissions.NewCascade(db, c.CommissionsRepo, c.TradesRepo, log)
	c.CommissionsHandler = commissions.NewHandler(c.CommissionsRepo, c.Cascade, log)

	c.CostBasisService = cost_basis.NewService(c.CostBasisRepo, log)
	c.CostBasisHandler = cost_basis.NewHandler(c.CostBasisService, log)

	c.CashFlowsHandler = cash_flows.NewHandler(c.CashFlowsRepo, log)

	c.ReportsService = reports.NewService(db, c.AccountsRepo, c.CashFlowsRepo, log)
	c.ReportsHandler = reports.NewHandler(c.ReportsService, log)

	c.ImportsService = imports.NewService(c.TradingService, log)
	c.ImportsHandler = imports.NewHandler(c.ImportsService, log)

	c.BackupService = reliability.NewBackupService(db, cfg.DataDir, log)
	if cfg.BackupBucket != "" {
		s3Client, err := reliability.NewS3Client(cfg.BackupBucket, cfg.BackupEndpoint,
			cfg.BackupRegion, cfg.BackupAccessKey, cfg.BackupSecretKey, log)
		if err != nil {
			log.Warn().Err(err).Msg("Cloud backup disabled")
		} else {
			c.S3Client = s3Client
		}
	}

	c.ExpireJob = trading.NewExpireJob(c.TradingService)
	c.RefreshNamesJob = tickers.NewRefreshNamesJob(c.TickersService)
	c.BackupJob = reliability.NewBackupJob(c.BackupService, c.S3Client, log)

	return c, nil
}
