package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/service"
)

func (h *Handler) activePrices(c *gin.Context) {
	prices, err := h.svc.Prices.Active(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}

func (h *Handler) priceHistory(c *gin.Context) {
	fuelTypeID, err := optionalUUID(c.Query("fuelTypeId"))
	if err != nil {
		badRequest(c, "invalid fuelTypeId")
		return
	}
	prices, err := h.svc.Prices.History(c.Request.Context(), fuelTypeID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}

type setPricesRequest struct {
	Prices map[string]decimal.Decimal `json:"prices" binding:"required"`
	Date   string                     `json:"date"`
}

func (h *Handler) setPrices(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req setPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var date *time.Time
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			badRequest(c, "invalid date")
			return
		}
		date = &parsed
	}

	prices, err := h.svc.Prices.SetPrices(c.Request.Context(), service.SetPricesInput{
		Prices:    req.Prices,
		Date:      date,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}
