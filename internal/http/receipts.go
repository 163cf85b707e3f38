package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cashReceiptRequest struct {
	Date   string          `json:"date" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

func (h *Handler) createCashReceipt(c *gin.Context) {
	var req cashReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}
	receipt, err := h.svc.Receipts.RecordCash(c.Request.Context(), date, req.Amount, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": receipt})
}

func (h *Handler) listCashReceipts(c *gin.Context) {
	from, to, ok := rangeQuery(c)
	if !ok {
		return
	}
	receipts, err := h.svc.Receipts.ListCash(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipts})
}

type onlinePaymentRequest struct {
	Date      string          `json:"date" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Provider  string          `json:"provider"`
	Reference string          `json:"reference"`
}

func (h *Handler) createOnlinePayment(c *gin.Context) {
	var req onlinePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}
	payment, err := h.svc.Receipts.RecordOnline(c.Request.Context(), date, req.Amount, req.Provider, req.Reference)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

func (h *Handler) listOnlinePayments(c *gin.Context) {
	from, to, ok := rangeQuery(c)
	if !ok {
		return
	}
	payments, err := h.svc.Receipts.ListOnline(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}
