package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/fuelops/internal/model"
)

const priceColumns = `
	p.id,
	p.fuel_type_id,
	ft.name AS fuel_type_name,
	p.per_litre,
	p.is_active,
	p.created_at
`

type PriceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

func (r *PriceRepository) Active(ctx context.Context) ([]model.Price, error) {
	var rows []model.Price
	if err := r.db.WithContext(ctx).Raw(`SELECT ` + priceColumns + `
		FROM prices p
		JOIN fuel_types ft ON ft.id = p.fuel_type_id
		WHERE p.is_active
		ORDER BY ft.name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveFor returns the active price of a fuel type.
func (r *PriceRepository) ActiveFor(ctx context.Context, fuelTypeID uuid.UUID) (*model.Price, error) {
	var price model.Price
	if err := r.db.WithContext(ctx).Raw(`SELECT `+priceColumns+`
		FROM prices p
		JOIN fuel_types ft ON ft.id = p.fuel_type_id
		WHERE p.fuel_type_id = ? AND p.is_active
		ORDER BY p.created_at DESC
		LIMIT 1
	`, fuelTypeID).Scan(&price).Error; err != nil {
		return nil, err
	}
	if price.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &price, nil
}

func (r *PriceRepository) History(ctx context.Context, fuelTypeID *uuid.UUID) ([]model.Price, error) {
	query := `SELECT ` + priceColumns + `
		FROM prices p
		JOIN fuel_types ft ON ft.id = p.fuel_type_id
	`
	args := []interface{}{}
	if fuelTypeID != nil {
		query += " WHERE p.fuel_type_id = ?"
		args = append(args, *fuelTypeID)
	}
	query += " ORDER BY p.created_at DESC"

	var rows []model.Price
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Replace deactivates every active price of the fuel type and inserts the new
// one as the only active row, with an audit entry, in a single transaction.
func (r *PriceRepository) Replace(
	ctx context.Context,
	fuelTypeID uuid.UUID,
	perLitre decimal.Decimal,
	effective time.Time,
	meta AuditMeta,
) (*model.Price, error) {
	var saved model.Price
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialises concurrent replacements for the same fuel type.
		var fuel insertedRow
		res := tx.Raw(`SELECT id FROM fuel_types WHERE id = ? FOR UPDATE`, fuelTypeID).Scan(&fuel)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var previous []model.Price
		if err := tx.Raw(`
			UPDATE prices
			SET is_active = FALSE
			WHERE fuel_type_id = ? AND is_active
			RETURNING id, fuel_type_id, per_litre, is_active, created_at
		`, fuelTypeID).Scan(&previous).Error; err != nil {
			return err
		}

		var row insertedRow
		if err := tx.Raw(`
			INSERT INTO prices (fuel_type_id, per_litre, is_active, created_at)
			VALUES (?, ?, TRUE, ?)
			RETURNING id
		`, fuelTypeID, perLitre, effective).Scan(&row).Error; err != nil {
			return err
		}
		if err := tx.Raw(`SELECT `+priceColumns+`
			FROM prices p
			JOIN fuel_types ft ON ft.id = p.fuel_type_id
			WHERE p.id = ?
		`, row.ID).Scan(&saved).Error; err != nil {
			return err
		}

		var old interface{}
		if len(previous) > 0 {
			old = previous
		}
		return writeAudit(tx, model.AuditActionPriceSet, "fuel_type", fuelTypeID, old, saved, meta)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
