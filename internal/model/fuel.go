package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FuelType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tank levels are kept in litres. CurrentLevel stays within [0, CapacityLit].
type Tank struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	FuelTypeID   uuid.UUID       `json:"fuelTypeId"`
	FuelTypeName string          `json:"fuelTypeName,omitempty" gorm:"->"`
	CapacityLit  decimal.Decimal `json:"capacityLit"`
	CurrentLevel decimal.Decimal `json:"currentLevel"`
	AvgUnitCost  decimal.Decimal `json:"avgUnitCost"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Pump struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	FuelTypeID   uuid.UUID `json:"fuelTypeId"`
	FuelTypeName string    `json:"fuelTypeName,omitempty" gorm:"->"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Price struct {
	ID           uuid.UUID       `json:"id"`
	FuelTypeID   uuid.UUID       `json:"fuelTypeId"`
	FuelTypeName string          `json:"fuelTypeName,omitempty" gorm:"->"`
	PerLitre     decimal.Decimal `json:"perLitre"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
}
