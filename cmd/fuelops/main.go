package main

import (
	"fmt"
	"os"

	"github.com/nurpe/fuelops/internal/auth"
	"github.com/nurpe/fuelops/internal/config"
	"github.com/nurpe/fuelops/internal/db"
	"github.com/nurpe/fuelops/internal/excel"
	httphandler "github.com/nurpe/fuelops/internal/http"
	"github.com/nurpe/fuelops/internal/http/middleware"
	"github.com/nurpe/fuelops/internal/logger"
	"github.com/nurpe/fuelops/internal/pdf"
	"github.com/nurpe/fuelops/internal/reconcile"
	"github.com/nurpe/fuelops/internal/repository"
	"github.com/nurpe/fuelops/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	tankRepo := repository.NewTankRepository(database)
	auditRepo := repository.NewAuditRepository(database)
	readingRepo := repository.NewReadingRepository(database)
	purchaseRepo := repository.NewPurchaseRepository(database)
	creditRepo := repository.NewCreditRepository(database)
	receiptRepo := repository.NewReceiptRepository(database)
	priceRepo := repository.NewPriceRepository(database)
	reportRepo := repository.NewReportRepository(database)

	params := reconcile.Params{
		DefaultMargin:  cfg.Reports.DefaultMargin,
		BalanceEpsilon: cfg.Reports.BalanceEpsilon,
	}

	services := httphandler.Services{
		Tanks:     service.NewTankService(tankRepo, auditRepo),
		Readings:  service.NewReadingService(readingRepo, tankRepo, priceRepo, cfg.Readings.BulkMax),
		Sales:     service.NewSaleService(readingRepo, tankRepo, priceRepo),
		Purchases: service.NewPurchaseService(purchaseRepo, tankRepo),
		Credits:   service.NewCreditService(creditRepo, tankRepo, cfg.Reports.BalanceEpsilon),
		Receipts:  service.NewReceiptService(receiptRepo),
		Prices:    service.NewPriceService(priceRepo, tankRepo),
		Reports:   service.NewReportService(reportRepo, excel.NewGenerator(), pdf.NewGenerator(), params),
	}

	rateLimit, err := middleware.RateLimit(cfg.HTTP.RateLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rate limit")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(services, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, httphandler.RouterOptions{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      rateLimit,
		Log:            log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fuelops")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
