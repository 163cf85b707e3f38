package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CashReceipt struct {
	ID        uuid.UUID       `json:"id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OnlinePayment struct {
	ID        uuid.UUID       `json:"id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Provider  string          `json:"provider"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"createdAt"`
}
