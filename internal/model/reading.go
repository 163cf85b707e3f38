package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyReading is unique per (PumpID, Date).
type DailyReading struct {
	ID            uuid.UUID       `json:"id"`
	PumpID        uuid.UUID       `json:"pumpId"`
	Date          time.Time       `json:"date"`
	OpeningLitres decimal.Decimal `json:"openingLitres"`
	ClosingLitres decimal.Decimal `json:"closingLitres"`
	FuelSold      decimal.Decimal `json:"fuelSold"`
	PricePerLitre decimal.Decimal `json:"pricePerLitre"`
	Revenue       decimal.Decimal `json:"revenue"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ReadingResult reports what a recorded reading did to its tank.
type ReadingResult struct {
	Reading   DailyReading    `json:"reading"`
	TankID    uuid.UUID       `json:"tankId"`
	NetDelta  decimal.Decimal `json:"netDelta"`
	TankLevel decimal.Decimal `json:"tankLevel"`
	Updated   bool            `json:"updated"`
}

type TankAdjustment struct {
	TankID     uuid.UUID       `json:"tankId"`
	FuelTypeID uuid.UUID       `json:"fuelTypeId"`
	NetDelta   decimal.Decimal `json:"netDelta"`
	TankLevel  decimal.Decimal `json:"tankLevel"`
}

type BulkReadingResult struct {
	Readings    []DailyReading   `json:"readings"`
	Adjustments []TankAdjustment `json:"adjustments"`
}

type Sale struct {
	ID            uuid.UUID       `json:"id"`
	PumpID        uuid.UUID       `json:"pumpId"`
	TankID        uuid.UUID       `json:"tankId"`
	FuelTypeID    uuid.UUID       `json:"fuelTypeId"`
	Date          time.Time       `json:"date"`
	Litres        decimal.Decimal `json:"litres"`
	PricePerLitre decimal.Decimal `json:"pricePerLitre"`
	Revenue       decimal.Decimal `json:"revenue"`
	CreatedAt     time.Time       `json:"createdAt"`
}
