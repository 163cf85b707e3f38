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

type createClientRequest struct {
	Name        string          `json:"name" binding:"required"`
	OwnerName   string          `json:"ownerName"`
	Phone       string          `json:"phone"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
}

func (h *Handler) createClient(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	client, err := h.svc.Credits.CreateClient(c.Request.Context(), service.CreateClientInput{
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": client})
}

func (h *Handler) listClients(c *gin.Context) {
	includeInactive := strings.EqualFold(c.Query("includeInactive"), "true")
	clients, err := h.svc.Credits.ListClients(c.Request.Context(), includeInactive)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": clients})
}

func (h *Handler) getClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.svc.Credits.GetClient(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": client})
}

type updateClientRequest struct {
	Name        *string          `json:"name"`
	OwnerName   *string          `json:"ownerName"`
	Phone       *string          `json:"phone"`
	CreditLimit *decimal.Decimal `json:"creditLimit"`
	IsActive    *bool            `json:"isActive"`
}

func (h *Handler) updateClient(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	client, err := h.svc.Credits.UpdateClient(c.Request.Context(), service.UpdateClientInput{
		ID:          id,
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
		IsActive:    req.IsActive,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": client})
}

type createCreditRequest struct {
	ClientID      string           `json:"clientId" binding:"required"`
	FuelTypeID    string           `json:"fuelTypeId" binding:"required"`
	Litres        decimal.Decimal  `json:"litres"`
	PricePerLitre decimal.Decimal  `json:"pricePerLitre"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	Date          string           `json:"date"`
	Note          string           `json:"note"`
}

func (h *Handler) createCredit(c *gin.Context) {
	var req createCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		badRequest(c, "invalid clientId")
		return
	}
	fuelTypeID, err := uuid.Parse(strings.TrimSpace(req.FuelTypeID))
	if err != nil {
		badRequest(c, "invalid fuelTypeId")
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}

	result, err := h.svc.Credits.CreateCredit(c.Request.Context(), service.CreateCreditInput{
		ClientID:      clientID,
		FuelTypeID:    fuelTypeID,
		Litres:        req.Litres,
		PricePerLitre: req.PricePerLitre,
		TotalAmount:   req.TotalAmount,
		CreditDate:    date,
		Note:          req.Note,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *Handler) listCredits(c *gin.Context) {
	clientID, err := optionalUUID(c.Query("clientId"))
	if err != nil {
		badRequest(c, "invalid clientId")
		return
	}
	var status *model.CreditStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := model.ParseCreditStatus(raw)
		if err != nil {
			badRequest(c, "invalid status")
			return
		}
		status = &parsed
	}
	credits, err := h.svc.Credits.ListCredits(c.Request.Context(), clientID, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": credits})
}

type markPaidRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

func (h *Handler) markCreditPaid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.svc.Credits.MarkPaid(c.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
