package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusUnloaded PurchaseStatus = "unloaded"
)

func ParsePurchaseStatus(raw string) (PurchaseStatus, error) {
	switch PurchaseStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case PurchaseStatusPending:
		return PurchaseStatusPending, nil
	case PurchaseStatusUnloaded:
		return PurchaseStatusUnloaded, nil
	default:
		return "", fmt.Errorf("unknown purchase status %q", raw)
	}
}

type Purchase struct {
	ID         uuid.UUID       `json:"id"`
	TankID     uuid.UUID       `json:"tankId"`
	Supplier   string          `json:"supplier"`
	Litres     decimal.Decimal `json:"litres"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	TotalCost  decimal.Decimal `json:"totalCost"`
	Status     PurchaseStatus  `json:"status"`
	Date       time.Time       `json:"date"`
	UnloadedAt *time.Time      `json:"unloadedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type UnloadResult struct {
	Purchase    Purchase        `json:"purchase"`
	TankLevel   decimal.Decimal `json:"tankLevel"`
	AvgUnitCost decimal.Decimal `json:"avgUnitCost"`
}
