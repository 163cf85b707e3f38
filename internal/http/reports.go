package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/fuelops/internal/service"
)

func summaryQuery(c *gin.Context) (service.SummaryInput, bool) {
	var input service.SummaryInput
	var err error
	input.Period = c.Query("period")
	if input.Date, err = parseOptionalDate(c.Query("date")); err != nil {
		badRequest(c, "invalid date")
		return input, false
	}
	if input.From, err = parseOptionalDate(c.Query("from")); err != nil {
		badRequest(c, "invalid from")
		return input, false
	}
	if input.To, err = parseOptionalDate(c.Query("to")); err != nil {
		badRequest(c, "invalid to")
		return input, false
	}
	return input, true
}

func rangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		badRequest(c, "invalid from")
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		badRequest(c, "invalid to")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) summary(c *gin.Context) {
	input, ok := summaryQuery(c)
	if !ok {
		return
	}
	summary, err := h.svc.Reports.Summary(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *Handler) exportSummary(c *gin.Context) {
	input, ok := summaryQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.Reports.Export(c.Request.Context(), input, c.Query("format"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) validateDay(c *gin.Context) {
	date, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		badRequest(c, "invalid date")
		return
	}
	if date.IsZero() {
		date = time.Now()
	}
	result, err := h.svc.Reports.Validate(c.Request.Context(), date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
