package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/inventory"
	"github.com/nurpe/fuelops/internal/model"
)

const purchaseColumns = `
	id,
	tank_id,
	supplier,
	litres,
	unit_cost,
	total_cost,
	status,
	date,
	unloaded_at,
	created_at
`

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, p model.Purchase) (*model.Purchase, error) {
	var saved model.Purchase
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO purchases (tank_id, supplier, litres, unit_cost, total_cost, status, date)
		VALUES (?, ?, ?, ?, ?, 'pending', ?)
		RETURNING `+purchaseColumns,
		p.TankID, p.Supplier, p.Litres, p.UnitCost, p.TotalCost, p.Date,
	).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PurchaseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return getPurchase(r.db.WithContext(ctx), id, false)
}

func (r *PurchaseRepository) List(ctx context.Context, status *model.PurchaseStatus) ([]model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases`
	args := []interface{}{}
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY date DESC, created_at DESC"

	var rows []model.Purchase
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Unload flips a pending purchase to unloaded and moves its litres into the
// tank, blending the average unit cost. Both rows are locked; a purchase
// already unloaded yields ErrAlreadyApplied and changes nothing.
func (r *PurchaseRepository) Unload(ctx context.Context, id uuid.UUID) (*model.UnloadResult, error) {
	var result model.UnloadResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		purchase, err := getPurchase(tx, id, true)
		if err != nil {
			return err
		}
		if purchase.Status == model.PurchaseStatusUnloaded {
			return ErrAlreadyApplied
		}

		tank, err := getTank(tx, purchase.TankID, true)
		if err != nil {
			return err
		}
		avg := inventory.BlendedCost(tank.AvgUnitCost, tank.CurrentLevel, purchase.UnitCost, purchase.Litres)

		var row struct {
			CurrentLevel decimal.Decimal
			AvgUnitCost  decimal.Decimal
		}
		res := tx.Raw(`
			UPDATE tanks
			SET
				current_level = current_level + ?,
				avg_unit_cost = ?,
				updated_at = NOW()
			WHERE id = ?
				AND is_active
				AND current_level + ? <= capacity_lit
			RETURNING current_level, avg_unit_cost
		`, purchase.Litres, avg, tank.ID, purchase.Litres).Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &TankConflict{TankID: tank.ID, Delta: purchase.Litres.Neg()}
		}

		var saved model.Purchase
		if err := tx.Raw(`
			UPDATE purchases
			SET status = 'unloaded', unloaded_at = NOW()
			WHERE id = ? AND status = 'pending'
			RETURNING `+purchaseColumns, id).Scan(&saved).Error; err != nil {
			return err
		}
		result = model.UnloadResult{
			Purchase:    saved,
			TankLevel:   row.CurrentLevel,
			AvgUnitCost: row.AvgUnitCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func getPurchase(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = ?`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var p model.Purchase
	if err := tx.Raw(query, id).Scan(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}
