package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
	"github.com/nurpe/fuelops/internal/repository"
)

type ReadingStore interface {
	GetReading(ctx context.Context, pumpID uuid.UUID, date time.Time) (*model.DailyReading, error)
	ListReadings(ctx context.Context, from, to time.Time, pumpID *uuid.UUID) ([]model.DailyReading, error)
	Record(ctx context.Context, entry repository.ReadingEntry) (*model.ReadingResult, error)
	RecordBulk(ctx context.Context, entries []repository.ReadingEntry) (*model.BulkReadingResult, error)
	CreateSale(ctx context.Context, sale model.Sale) (*model.Sale, decimal.Decimal, error)
}

type PriceLookup interface {
	ActiveFor(ctx context.Context, fuelTypeID uuid.UUID) (*model.Price, error)
}

type ReadingService struct {
	readings ReadingStore
	pumps    pumpResolver
	bulkMax  int
}

func NewReadingService(readings ReadingStore, tanks TankStore, prices PriceLookup, bulkMax int) *ReadingService {
	if bulkMax <= 0 {
		bulkMax = 50
	}
	return &ReadingService{
		readings: readings,
		pumps:    pumpResolver{tanks: tanks, prices: prices},
		bulkMax:  bulkMax,
	}
}

type RecordReadingInput struct {
	PumpID        uuid.UUID
	Date          time.Time
	OpeningLitres decimal.Decimal
	ClosingLitres decimal.Decimal
	// PricePerLitre falls back to the active price when zero.
	PricePerLitre decimal.Decimal
}

func (s *ReadingService) List(ctx context.Context, from, to time.Time, pumpID *uuid.UUID) ([]model.DailyReading, error) {
	start, end, err := rangeDays(from, to)
	if err != nil {
		return nil, err
	}
	return s.readings.ListReadings(ctx, start, end, pumpID)
}

// Record stores the reading for (pump, date) and moves the tank by the change
// in fuel sold. Re-submitting a day only applies the difference.
func (s *ReadingService) Record(ctx context.Context, input RecordReadingInput) (*model.ReadingResult, error) {
	entry, target, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	delta, err := s.netDelta(ctx, entry.Reading)
	if err != nil {
		return nil, err
	}
	if _, err := inventory.CheckDelta(target, delta); err != nil {
		inventoryRejected(err)
		return nil, err
	}

	result, err := s.readings.Record(ctx, entry)
	if err != nil {
		return nil, tankConflict(err)
	}
	dispensed("reading", result.NetDelta)
	return result, nil
}

// RecordBulk validates every reading before writing any, then applies one
// net delta per fuel type in a single transaction.
func (s *ReadingService) RecordBulk(ctx context.Context, inputs []RecordReadingInput) (*model.BulkReadingResult, error) {
	if len(inputs) == 0 {
		return nil, invalid("readings must not be empty")
	}
	if len(inputs) > s.bulkMax {
		return nil, invalid("at most %d readings per request", s.bulkMax)
	}

	type key struct {
		pump uuid.UUID
		date time.Time
	}
	seen := make(map[key]int, len(inputs))
	entries := make([]repository.ReadingEntry, 0, len(inputs))
	tanks := make(map[uuid.UUID]model.Tank)
	deltas := make(map[uuid.UUID]decimal.Decimal)

	for i, input := range inputs {
		entry, target, err := s.prepare(ctx, input)
		if err != nil {
			return nil, indexed(i, err)
		}
		k := key{pump: entry.Reading.PumpID, date: entry.Reading.Date}
		if first, dup := seen[k]; dup {
			return nil, indexed(i, invalid("duplicates readings[%d] for the same pump and date", first))
		}
		seen[k] = i

		delta, err := s.netDelta(ctx, entry.Reading)
		if err != nil {
			return nil, indexed(i, err)
		}
		tanks[entry.FuelTypeID] = target
		deltas[entry.FuelTypeID] = deltas[entry.FuelTypeID].Add(delta)
		entries = append(entries, entry)
	}

	for fuelTypeID, delta := range deltas {
		if _, err := inventory.CheckDelta(tanks[fuelTypeID], delta); err != nil {
			inventoryRejected(err)
			return nil, err
		}
	}

	result, err := s.readings.RecordBulk(ctx, entries)
	if err != nil {
		return nil, tankConflict(err)
	}
	for _, adj := range result.Adjustments {
		dispensed("reading", adj.NetDelta)
	}
	return result, nil
}

func (s *ReadingService) prepare(ctx context.Context, input RecordReadingInput) (repository.ReadingEntry, model.Tank, error) {
	if input.PumpID == uuid.Nil {
		return repository.ReadingEntry{}, model.Tank{}, invalid("pumpId is required")
	}
	if input.Date.IsZero() {
		return repository.ReadingEntry{}, model.Tank{}, invalid("date is required")
	}
	if input.OpeningLitres.IsNegative() {
		return repository.ReadingEntry{}, model.Tank{}, invalid("openingLitres must not be negative")
	}
	if input.ClosingLitres.LessThan(input.OpeningLitres) {
		return repository.ReadingEntry{}, model.Tank{}, invalid("closingLitres must not be below openingLitres")
	}
	if input.PricePerLitre.IsNegative() {
		return repository.ReadingEntry{}, model.Tank{}, invalid("pricePerLitre must not be negative")
	}

	pump, tank, err := s.pumps.resolve(ctx, input.PumpID)
	if err != nil {
		return repository.ReadingEntry{}, model.Tank{}, err
	}
	price, err := s.pumps.price(ctx, pump.FuelTypeID, input.PricePerLitre)
	if err != nil {
		return repository.ReadingEntry{}, model.Tank{}, err
	}

	sold := input.ClosingLitres.Sub(input.OpeningLitres)
	return repository.ReadingEntry{
		Reading: model.DailyReading{
			PumpID:        pump.ID,
			Date:          dateOnly(input.Date),
			OpeningLitres: input.OpeningLitres,
			ClosingLitres: input.ClosingLitres,
			FuelSold:      sold,
			PricePerLitre: price,
			Revenue:       sold.Mul(price).Round(2),
		},
		TankID:     tank.ID,
		FuelTypeID: pump.FuelTypeID,
	}, *tank, nil
}

func (s *ReadingService) netDelta(ctx context.Context, reading model.DailyReading) (decimal.Decimal, error) {
	previous, err := s.readings.GetReading(ctx, reading.PumpID, reading.Date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reading.FuelSold, nil
		}
		return decimal.Zero, err
	}
	return reading.FuelSold.Sub(previous.FuelSold), nil
}

// pumpResolver finds the tank and selling price behind a pump.
type pumpResolver struct {
	tanks  TankStore
	prices PriceLookup
}

func (r pumpResolver) resolve(ctx context.Context, pumpID uuid.UUID) (*model.Pump, *model.Tank, error) {
	pump, err := r.tanks.GetPump(ctx, pumpID)
	if err != nil {
		return nil, nil, notFound(err, "pump")
	}
	if !pump.IsActive {
		return nil, nil, invalid("pump %s is inactive", pump.Name)
	}
	tank, err := r.tanks.ActiveTankForFuelType(ctx, pump.FuelTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActiveTank
		}
		return nil, nil, err
	}
	return pump, tank, nil
}

func (r pumpResolver) price(ctx context.Context, fuelTypeID uuid.UUID, given decimal.Decimal) (decimal.Decimal, error) {
	if given.IsPositive() {
		return given, nil
	}
	active, err := r.prices.ActiveFor(ctx, fuelTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, invalid("no active price for fuel type")
		}
		return decimal.Zero, err
	}
	return active.PerLitre, nil
}

func indexed(i int, err error) error {
	return &IndexedError{Index: i, Err: err}
}

// IndexedError points at the offending entry of a batch.
type IndexedError struct {
	Index int
	Err   error
}

func (e *IndexedError) Error() string {
	return "readings[" + strconv.Itoa(e.Index) + "]: " + e.Err.Error()
}

func (e *IndexedError) Unwrap() error {
	return e.Err
}
