package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

func ParsePeriod(raw string) (Period, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PeriodDay, nil
	}
	switch Period(raw) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return Period(raw), nil
	default:
		return "", fmt.Errorf("unknown period %q", raw)
	}
}

// Window is a range of calendar days, Start inclusive and End exclusive.
type Window struct {
	Period Period    `json:"period"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// LastDay is the final day included in the window.
func (w Window) LastDay() time.Time {
	return w.End.AddDate(0, 0, -1)
}

type CostSource string

const (
	CostSourcePurchase CostSource = "purchase"
	CostSourceMargin   CostSource = "margin"
)

// FuelSales is the raw per-fuel aggregate read from the store.
type FuelSales struct {
	FuelTypeID   uuid.UUID
	FuelTypeName string
	Litres       decimal.Decimal
	Revenue      decimal.Decimal
}

type FuelBreakdown struct {
	FuelTypeID   uuid.UUID       `json:"fuelTypeId"`
	FuelTypeName string          `json:"fuelTypeName"`
	LitresSold   decimal.Decimal `json:"litresSold"`
	Revenue      decimal.Decimal `json:"revenue"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	CostPerLitre decimal.Decimal `json:"costPerLitre"`
	CostSource   CostSource      `json:"costSource"`
	Profit       decimal.Decimal `json:"profit"`
}

// Totals are the money figures aggregated over a window.
type Totals struct {
	ReadingSales        decimal.Decimal `json:"readingSales"`
	DirectSales         decimal.Decimal `json:"directSales"`
	CashReceipts        decimal.Decimal `json:"cashReceipts"`
	OnlinePayments      decimal.Decimal `json:"onlinePayments"`
	CreditPayments      decimal.Decimal `json:"creditPayments"`
	OwnerCreditPayments decimal.Decimal `json:"ownerCreditPayments"`
	CreditSales         decimal.Decimal `json:"creditSales"`
}

type Summary struct {
	Window        Window          `json:"window"`
	Totals        Totals          `json:"totals"`
	GrossSales    decimal.Decimal `json:"grossSales"`
	TotalReceived decimal.Decimal `json:"totalReceived"`
	ExpectedTotal decimal.Decimal `json:"expectedTotal"`
	Difference    decimal.Decimal `json:"difference"`
	IsBalanced    bool            `json:"isBalanced"`
	Fuels         []FuelBreakdown `json:"fuels"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
}

type ValidationStatus string

const (
	ValidationBalanced ValidationStatus = "balanced"
	ValidationShort    ValidationStatus = "short"
	ValidationExcess   ValidationStatus = "excess"
)

type DayValidation struct {
	Date          time.Time        `json:"date"`
	Summary       Summary          `json:"summary"`
	Status        ValidationStatus `json:"status"`
	MissingPumps  []Pump           `json:"missingPumps"`
	ReadingsCount int64            `json:"readingsCount"`
}
