package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Totals aggregates the money figures for [from, to). Reading revenue only
// counts forward meter movement. Settled credits are split by
// PaymentMethod.CountsAsReceived.
func (r *ReportRepository) Totals(ctx context.Context, from, to time.Time) (model.Totals, error) {
	var totals model.Totals
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COALESCE(SUM(GREATEST(closing_litres - opening_litres, 0) * price_per_litre), 0)
				FROM daily_readings
				WHERE date >= ? AND date < ?) AS reading_sales,
			(SELECT COALESCE(SUM(revenue), 0)
				FROM sales
				WHERE date >= ? AND date < ?) AS direct_sales,
			(SELECT COALESCE(SUM(amount), 0)
				FROM cash_receipts
				WHERE date >= ? AND date < ?) AS cash_receipts,
			(SELECT COALESCE(SUM(amount), 0)
				FROM online_payments
				WHERE date >= ? AND date < ?) AS online_payments,
			(SELECT COALESCE(SUM(total_amount), 0)
				FROM client_credits
				WHERE status = 'paid'
					AND payment_method IN ?
					AND paid_date >= ? AND paid_date < ?) AS credit_payments,
			(SELECT COALESCE(SUM(total_amount), 0)
				FROM client_credits
				WHERE status = 'paid'
					AND payment_method IN ?
					AND paid_date >= ? AND paid_date < ?) AS owner_credit_payments,
			(SELECT COALESCE(SUM(total_amount), 0)
				FROM client_credits
				WHERE credit_date >= ? AND credit_date < ?) AS credit_sales
	`,
		from, to,
		from, to,
		from, to,
		from, to,
		model.SettlementMethods(true), from, to,
		model.SettlementMethods(false), from, to,
		from, to,
	).Scan(&totals).Error
	return totals, err
}

// FuelSales returns litres and revenue per fuel type from readings and
// direct sales in [from, to).
func (r *ReportRepository) FuelSales(ctx context.Context, from, to time.Time) ([]model.FuelSales, error) {
	var rows []model.FuelSales
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			ft.id AS fuel_type_id,
			ft.name AS fuel_type_name,
			COALESCE(SUM(moved.litres), 0) AS litres,
			COALESCE(SUM(moved.revenue), 0) AS revenue
		FROM (
			SELECT
				p.fuel_type_id,
				GREATEST(dr.closing_litres - dr.opening_litres, 0) AS litres,
				GREATEST(dr.closing_litres - dr.opening_litres, 0) * dr.price_per_litre AS revenue
			FROM daily_readings dr
			JOIN pumps p ON p.id = dr.pump_id
			WHERE dr.date >= ? AND dr.date < ?
			UNION ALL
			SELECT s.fuel_type_id, s.litres, s.revenue
			FROM sales s
			WHERE s.date >= ? AND s.date < ?
		) moved
		JOIN fuel_types ft ON ft.id = moved.fuel_type_id
		GROUP BY ft.id, ft.name
		ORDER BY ft.name ASC
	`, from, to, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestPurchaseCosts maps each fuel type to the unit cost of its most recent
// purchase into an active tank.
func (r *ReportRepository) LatestPurchaseCosts(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		FuelTypeID uuid.UUID
		UnitCost   decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (t.fuel_type_id)
			t.fuel_type_id,
			pu.unit_cost
		FROM purchases pu
		JOIN tanks t ON t.id = pu.tank_id
		WHERE t.is_active
		ORDER BY t.fuel_type_id, pu.date DESC, pu.created_at DESC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.FuelTypeID] = row.UnitCost
	}
	return result, nil
}

func (r *ReportRepository) ActivePrices(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		FuelTypeID uuid.UUID
		PerLitre   decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT fuel_type_id, per_litre FROM prices WHERE is_active
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.FuelTypeID] = row.PerLitre
	}
	return result, nil
}

// PumpsWithoutReading lists active pumps that have no reading on date.
func (r *ReportRepository) PumpsWithoutReading(ctx context.Context, date time.Time) ([]model.Pump, error) {
	var rows []model.Pump
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.name, p.fuel_type_id, ft.name AS fuel_type_name, p.is_active, p.created_at
		FROM pumps p
		JOIN fuel_types ft ON ft.id = p.fuel_type_id
		WHERE p.is_active
			AND NOT EXISTS (
				SELECT 1 FROM daily_readings dr
				WHERE dr.pump_id = p.id AND dr.date = ?
			)
		ORDER BY p.name ASC
	`, date).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) CountReadings(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM daily_readings WHERE date >= ? AND date < ?
	`, from, to).Scan(&count).Error
	return count, err
}
