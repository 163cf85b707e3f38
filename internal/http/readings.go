package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/service"
)

type readingRequest struct {
	PumpID        string          `json:"pumpId" binding:"required"`
	Date          string          `json:"date" binding:"required"`
	OpeningLitres decimal.Decimal `json:"openingLitres"`
	ClosingLitres decimal.Decimal `json:"closingLitres"`
	PricePerLitre decimal.Decimal `json:"pricePerLitre"`
}

func (r readingRequest) toInput() (service.RecordReadingInput, string) {
	pumpID, err := uuid.Parse(strings.TrimSpace(r.PumpID))
	if err != nil {
		return service.RecordReadingInput{}, "invalid pumpId"
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return service.RecordReadingInput{}, "invalid date"
	}
	return service.RecordReadingInput{
		PumpID:        pumpID,
		Date:          date,
		OpeningLitres: r.OpeningLitres,
		ClosingLitres: r.ClosingLitres,
		PricePerLitre: r.PricePerLitre,
	}, ""
}

func (h *Handler) listReadings(c *gin.Context) {
	from, to, ok := rangeQuery(c)
	if !ok {
		return
	}
	pumpID, err := optionalUUID(c.Query("pumpId"))
	if err != nil {
		badRequest(c, "invalid pumpId")
		return
	}

	readings, err := h.svc.Readings.List(c.Request.Context(), from, to, pumpID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": readings})
}

func (h *Handler) recordReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, msg := req.toInput()
	if msg != "" {
		badRequest(c, msg)
		return
	}

	result, err := h.svc.Readings.Record(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": result})
}

type bulkReadingsRequest struct {
	Readings []readingRequest `json:"readings" binding:"required,dive"`
}

func (h *Handler) recordReadingsBulk(c *gin.Context) {
	var req bulkReadingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	inputs := make([]service.RecordReadingInput, 0, len(req.Readings))
	for i, r := range req.Readings {
		input, msg := r.toInput()
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg, "details": gin.H{"index": i}})
			return
		}
		inputs = append(inputs, input)
	}

	result, err := h.svc.Readings.RecordBulk(c.Request.Context(), inputs)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

type saleRequest struct {
	PumpID        string          `json:"pumpId" binding:"required"`
	Litres        decimal.Decimal `json:"litres"`
	PricePerLitre decimal.Decimal `json:"pricePerLitre"`
	Date          string          `json:"date"`
}

func (h *Handler) recordSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pumpID, err := uuid.Parse(strings.TrimSpace(req.PumpID))
	if err != nil {
		badRequest(c, "invalid pumpId")
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}

	result, err := h.svc.Sales.Record(c.Request.Context(), service.RecordSaleInput{
		PumpID:        pumpID,
		Litres:        req.Litres,
		PricePerLitre: req.PricePerLitre,
		Date:          date,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}
