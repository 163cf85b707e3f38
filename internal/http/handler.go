package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fuelops/internal/http/middleware"
	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/service"
)

type Services struct {
	Tanks     *service.TankService
	Readings  *service.ReadingService
	Sales     *service.SaleService
	Purchases *service.PurchaseService
	Credits   *service.CreditService
	Receipts  *service.ReceiptService
	Prices    *service.PriceService
	Reports   *service.ReportService
}

type Handler struct {
	svc Services
	log zerolog.Logger
}

func NewHandler(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api")
	api.Use(authMiddleware)

	api.GET("/fuel-types", h.listFuelTypes)

	api.GET("/tanks", h.listTanks)
	api.POST("/tanks", h.createTank)
	api.PUT("/tanks/:id", h.updateTank)
	api.DELETE("/tanks/:id", h.deactivateTank)
	api.POST("/tanks/:id/validate-sale", h.validateSale)
	api.POST("/tanks/:id/validate-purchase", h.validatePurchase)

	api.GET("/pumps", h.listPumps)
	api.POST("/pumps", h.createPump)

	api.GET("/readings", h.listReadings)
	api.POST("/readings", h.recordReading)
	api.POST("/readings/bulk", h.recordReadingsBulk)
	api.POST("/sales", h.recordSale)

	api.GET("/purchases", h.listPurchases)
	api.POST("/purchases", h.createPurchase)
	api.GET("/purchases/:id", h.getPurchase)
	api.PUT("/purchases/:id/unload", h.unloadPurchase)

	api.GET("/clients", h.listClients)
	api.POST("/clients", h.createClient)
	api.GET("/clients/:id", h.getClient)
	api.PUT("/clients/:id", h.updateClient)

	api.GET("/credits", h.listCredits)
	api.POST("/credits", h.createCredit)
	api.PUT("/credits/:id/mark-paid", h.markCreditPaid)

	api.GET("/cash-receipts", h.listCashReceipts)
	api.POST("/cash-receipts", h.createCashReceipt)
	api.GET("/online-payments", h.listOnlinePayments)
	api.POST("/online-payments", h.createOnlinePayment)

	api.GET("/prices", h.activePrices)
	api.GET("/prices/history", h.priceHistory)
	api.POST("/prices/set", h.setPrices)

	api.GET("/reports/summary", h.summary)
	api.GET("/reports/summary/export", h.exportSummary)
	api.GET("/validation", h.validateDay)

	api.GET("/audit-logs", h.auditLogs)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) handleError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var violation *inventory.Violation
	var limit *service.CreditLimitError
	var method *service.PaymentMethodError
	var indexed *service.IndexedError
	switch {
	case errors.As(err, &violation):
		body["details"] = violation
	case errors.As(err, &limit):
		body["details"] = limit
	case errors.As(err, &method):
		body["details"] = gin.H{"given": method.Given, "allowed": model.PaymentMethods}
	}
	if errors.As(err, &indexed) {
		if details, ok := body["details"]; ok {
			body["details"] = gin.H{"index": indexed.Index, "violation": details}
		} else {
			body["details"] = gin.H{"index": indexed.Index}
		}
	}

	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, body)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoActiveTank):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInsufficientCapacity),
		errors.Is(err, service.ErrBelowCurrentLevel),
		errors.Is(err, service.ErrCreditLimitExceeded),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, body)
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseOptionalDate returns the zero time for an empty value.
func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}
