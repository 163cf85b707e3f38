package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/model"
)

const readingColumns = `
	id,
	pump_id,
	date,
	opening_litres,
	closing_litres,
	fuel_sold,
	price_per_litre,
	revenue,
	created_at,
	updated_at
`

// ReadingEntry is a reading paired with the tank its pump draws from.
type ReadingEntry struct {
	Reading    model.DailyReading
	TankID     uuid.UUID
	FuelTypeID uuid.UUID
}

// TankConflict identifies the tank whose guarded update failed.
type TankConflict struct {
	TankID uuid.UUID
	Delta  decimal.Decimal
}

func (e *TankConflict) Error() string {
	return ErrConditionFailed.Error() + ": tank " + e.TankID.String()
}

func (e *TankConflict) Unwrap() error {
	return ErrConditionFailed
}

type ReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

func (r *ReadingRepository) GetReading(ctx context.Context, pumpID uuid.UUID, date time.Time) (*model.DailyReading, error) {
	var reading model.DailyReading
	if err := r.db.WithContext(ctx).Raw(`SELECT `+readingColumns+`
		FROM daily_readings
		WHERE pump_id = ? AND date = ?
		LIMIT 1
	`, pumpID, date).Scan(&reading).Error; err != nil {
		return nil, err
	}
	if reading.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &reading, nil
}

func (r *ReadingRepository) ListReadings(ctx context.Context, from, to time.Time, pumpID *uuid.UUID) ([]model.DailyReading, error) {
	query := `SELECT ` + readingColumns + `
		FROM daily_readings
		WHERE date >= ? AND date < ?
	`
	args := []interface{}{from, to}
	if pumpID != nil {
		query += " AND pump_id = ?"
		args = append(args, *pumpID)
	}
	query += " ORDER BY date ASC, pump_id ASC"

	var rows []model.DailyReading
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Record upserts one reading and moves the tank by the change in fuel sold
// relative to the stored reading, all in one transaction.
func (r *ReadingRepository) Record(ctx context.Context, entry ReadingEntry) (*model.ReadingResult, error) {
	var result model.ReadingResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saved, previous, existed, err := upsertReading(tx, entry.Reading)
		if err != nil {
			return err
		}
		delta := saved.FuelSold.Sub(previous)
		level, err := withdraw(tx, entry.TankID, delta)
		if err != nil {
			if err == ErrConditionFailed {
				return &TankConflict{TankID: entry.TankID, Delta: delta}
			}
			return err
		}
		result = model.ReadingResult{
			Reading:   *saved,
			TankID:    entry.TankID,
			NetDelta:  delta,
			TankLevel: level,
			Updated:   existed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordBulk upserts every entry and applies one net delta per tank. Tanks
// are updated in id order so concurrent batches lock rows consistently.
func (r *ReadingRepository) RecordBulk(ctx context.Context, entries []ReadingEntry) (*model.BulkReadingResult, error) {
	result := &model.BulkReadingResult{
		Readings: make([]model.DailyReading, 0, len(entries)),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deltas := make(map[uuid.UUID]*model.TankAdjustment)
		for _, entry := range entries {
			saved, previous, _, err := upsertReading(tx, entry.Reading)
			if err != nil {
				return err
			}
			result.Readings = append(result.Readings, *saved)

			adj, ok := deltas[entry.TankID]
			if !ok {
				adj = &model.TankAdjustment{TankID: entry.TankID, FuelTypeID: entry.FuelTypeID}
				deltas[entry.TankID] = adj
			}
			adj.NetDelta = adj.NetDelta.Add(saved.FuelSold.Sub(previous))
		}

		tankIDs := make([]uuid.UUID, 0, len(deltas))
		for id := range deltas {
			tankIDs = append(tankIDs, id)
		}
		sort.Slice(tankIDs, func(i, j int) bool {
			return tankIDs[i].String() < tankIDs[j].String()
		})

		result.Adjustments = make([]model.TankAdjustment, 0, len(tankIDs))
		for _, id := range tankIDs {
			adj := deltas[id]
			level, err := withdraw(tx, id, adj.NetDelta)
			if err != nil {
				if err == ErrConditionFailed {
					return &TankConflict{TankID: id, Delta: adj.NetDelta}
				}
				return err
			}
			adj.TankLevel = level
			result.Adjustments = append(result.Adjustments, *adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// upsertReading returns the stored row, the fuel sold it replaced and whether
// a row already existed. A fresh insert wins the unique index first, so a
// concurrent writer for the same (pump, date) waits and then sees this row.
func upsertReading(tx *gorm.DB, reading model.DailyReading) (*model.DailyReading, decimal.Decimal, bool, error) {
	var saved model.DailyReading
	res := tx.Raw(`
		INSERT INTO daily_readings (
			pump_id,
			date,
			opening_litres,
			closing_litres,
			fuel_sold,
			price_per_litre,
			revenue
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (pump_id, date) DO NOTHING
		RETURNING `+readingColumns,
		reading.PumpID,
		reading.Date,
		reading.OpeningLitres,
		reading.ClosingLitres,
		reading.FuelSold,
		reading.PricePerLitre,
		reading.Revenue,
	).Scan(&saved)
	if res.Error != nil {
		return nil, decimal.Zero, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &saved, decimal.Zero, false, nil
	}

	var previous model.DailyReading
	if err := tx.Raw(`SELECT `+readingColumns+`
		FROM daily_readings
		WHERE pump_id = ? AND date = ?
		FOR UPDATE
	`, reading.PumpID, reading.Date).Scan(&previous).Error; err != nil {
		return nil, decimal.Zero, false, err
	}
	if previous.ID == uuid.Nil {
		return nil, decimal.Zero, false, gorm.ErrRecordNotFound
	}

	if err := tx.Raw(`
		UPDATE daily_readings
		SET
			opening_litres = ?,
			closing_litres = ?,
			fuel_sold = ?,
			price_per_litre = ?,
			revenue = ?,
			updated_at = NOW()
		WHERE id = ?
		RETURNING `+readingColumns,
		reading.OpeningLitres,
		reading.ClosingLitres,
		reading.FuelSold,
		reading.PricePerLitre,
		reading.Revenue,
		previous.ID,
	).Scan(&saved).Error; err != nil {
		return nil, decimal.Zero, false, err
	}
	return &saved, previous.FuelSold, true, nil
}

// CreateSale stores a direct sale and takes its litres out of the tank.
func (r *ReadingRepository) CreateSale(ctx context.Context, sale model.Sale) (*model.Sale, decimal.Decimal, error) {
	var saved model.Sale
	var level decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		level, err = withdraw(tx, sale.TankID, sale.Litres)
		if err != nil {
			if err == ErrConditionFailed {
				return &TankConflict{TankID: sale.TankID, Delta: sale.Litres}
			}
			return err
		}
		return tx.Raw(`
			INSERT INTO sales (pump_id, tank_id, fuel_type_id, date, litres, price_per_litre, revenue)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id, pump_id, tank_id, fuel_type_id, date, litres, price_per_litre, revenue, created_at
		`, sale.PumpID, sale.TankID, sale.FuelTypeID, sale.Date, sale.Litres, sale.PricePerLitre, sale.Revenue).Scan(&saved).Error
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return &saved, level, nil
}
