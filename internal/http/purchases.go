package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/service"
)

type createPurchaseRequest struct {
	TankID   string          `json:"tankId" binding:"required"`
	Supplier string          `json:"supplier"`
	Litres   decimal.Decimal `json:"litres"`
	UnitCost decimal.Decimal `json:"unitCost"`
	Date     string          `json:"date" binding:"required"`
}

func (h *Handler) createPurchase(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tankID, err := uuid.Parse(strings.TrimSpace(req.TankID))
	if err != nil {
		badRequest(c, "invalid tankId")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}

	purchase, err := h.svc.Purchases.Create(c.Request.Context(), service.CreatePurchaseInput{
		TankID:   tankID,
		Supplier: req.Supplier,
		Litres:   req.Litres,
		UnitCost: req.UnitCost,
		Date:     date,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": purchase})
}

func (h *Handler) listPurchases(c *gin.Context) {
	var status *model.PurchaseStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := model.ParsePurchaseStatus(raw)
		if err != nil {
			badRequest(c, "invalid status")
			return
		}
		status = &parsed
	}
	purchases, err := h.svc.Purchases.List(c.Request.Context(), status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": purchases})
}

func (h *Handler) getPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	purchase, err := h.svc.Purchases.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": purchase})
}

func (h *Handler) unloadPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.svc.Purchases.Unload(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
