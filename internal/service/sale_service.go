package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
)

type SaleService struct {
	readings ReadingStore
	pumps    pumpResolver
}

func NewSaleService(readings ReadingStore, tanks TankStore, prices PriceLookup) *SaleService {
	return &SaleService{
		readings: readings,
		pumps:    pumpResolver{tanks: tanks, prices: prices},
	}
}

type RecordSaleInput struct {
	PumpID        uuid.UUID
	Litres        decimal.Decimal
	PricePerLitre decimal.Decimal
	Date          time.Time
}

type SaleResult struct {
	Sale      model.Sale      `json:"sale"`
	TankLevel decimal.Decimal `json:"tankLevel"`
}

// Record books a sale outside the daily meter readings and takes its litres
// from the pump's tank in the same transaction.
func (s *SaleService) Record(ctx context.Context, input RecordSaleInput) (*SaleResult, error) {
	if input.PumpID == uuid.Nil {
		return nil, invalid("pumpId is required")
	}
	if input.PricePerLitre.IsNegative() {
		return nil, invalid("pricePerLitre must not be negative")
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	pump, tank, err := s.pumps.resolve(ctx, input.PumpID)
	if err != nil {
		return nil, err
	}
	if _, err := inventory.CheckSale(*tank, input.Litres); err != nil {
		inventoryRejected(err)
		return nil, err
	}
	price, err := s.pumps.price(ctx, pump.FuelTypeID, input.PricePerLitre)
	if err != nil {
		return nil, err
	}

	sale, level, err := s.readings.CreateSale(ctx, model.Sale{
		PumpID:        pump.ID,
		TankID:        tank.ID,
		FuelTypeID:    pump.FuelTypeID,
		Date:          dateOnly(date),
		Litres:        input.Litres,
		PricePerLitre: price,
		Revenue:       input.Litres.Mul(price).Round(2),
	})
	if err != nil {
		return nil, tankConflict(err)
	}
	dispensed("sale", sale.Litres)
	return &SaleResult{Sale: *sale, TankLevel: level}, nil
}
