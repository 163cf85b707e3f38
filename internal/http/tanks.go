package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/service"
)

func (h *Handler) listFuelTypes(c *gin.Context) {
	types, err := h.svc.Tanks.ListFuelTypes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (h *Handler) listTanks(c *gin.Context) {
	includeInactive := strings.EqualFold(c.Query("includeInactive"), "true")
	tanks, err := h.svc.Tanks.ListTanks(c.Request.Context(), includeInactive)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tanks})
}

type createTankRequest struct {
	Name         string          `json:"name" binding:"required"`
	FuelTypeID   string          `json:"fuelTypeId" binding:"required"`
	CapacityLit  decimal.Decimal `json:"capacityLit"`
	CurrentLevel decimal.Decimal `json:"currentLevel"`
	AvgUnitCost  decimal.Decimal `json:"avgUnitCost"`
}

func (h *Handler) createTank(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createTankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	fuelTypeID, err := uuid.Parse(strings.TrimSpace(req.FuelTypeID))
	if err != nil {
		badRequest(c, "invalid fuelTypeId")
		return
	}

	tank, err := h.svc.Tanks.CreateTank(c.Request.Context(), service.CreateTankInput{
		Name:         req.Name,
		FuelTypeID:   fuelTypeID,
		CapacityLit:  req.CapacityLit,
		CurrentLevel: req.CurrentLevel,
		AvgUnitCost:  req.AvgUnitCost,
		Principal:    principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tank})
}

type updateTankRequest struct {
	Name         *string          `json:"name"`
	CapacityLit  *decimal.Decimal `json:"capacityLit"`
	CurrentLevel *decimal.Decimal `json:"currentLevel"`
	Reason       string           `json:"reason"`
}

func (h *Handler) updateTank(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateTankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tank, err := h.svc.Tanks.UpdateTank(c.Request.Context(), service.UpdateTankInput{
		ID:           id,
		Name:         req.Name,
		CapacityLit:  req.CapacityLit,
		CurrentLevel: req.CurrentLevel,
		Reason:       req.Reason,
		Principal:    principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tank})
}

func (h *Handler) deactivateTank(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	tank, err := h.svc.Tanks.DeactivateTank(c.Request.Context(), id, c.Query("reason"), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tank})
}

type litresRequest struct {
	Litres decimal.Decimal `json:"litres"`
}

func (h *Handler) validateSale(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req litresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.svc.Tanks.ValidateSale(c.Request.Context(), id, req.Litres)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) validatePurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req litresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.svc.Tanks.ValidatePurchase(c.Request.Context(), id, req.Litres)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) listPumps(c *gin.Context) {
	pumps, err := h.svc.Tanks.ListPumps(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pumps})
}

type createPumpRequest struct {
	Name       string `json:"name" binding:"required"`
	FuelTypeID string `json:"fuelTypeId" binding:"required"`
}

func (h *Handler) createPump(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createPumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	fuelTypeID, err := uuid.Parse(strings.TrimSpace(req.FuelTypeID))
	if err != nil {
		badRequest(c, "invalid fuelTypeId")
		return
	}
	pump, err := h.svc.Tanks.CreatePump(c.Request.Context(), req.Name, fuelTypeID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": pump})
}

func (h *Handler) auditLogs(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	logs, err := h.svc.Tanks.AuditLogs(c.Request.Context(), c.Query("entityType"), limit, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
